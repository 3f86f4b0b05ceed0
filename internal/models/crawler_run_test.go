package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONMapScanValue(t *testing.T) {
	m := JSONMap{"yonhap": "timeout", "chosun": "status 503"}

	v, err := m.Value()
	require.NoError(t, err)

	var scanned JSONMap
	require.NoError(t, scanned.Scan(v))
	require.Equal(t, m, scanned)
}

func TestJSONMapScanNil(t *testing.T) {
	var m JSONMap
	require.NoError(t, m.Scan(nil))
	require.Nil(t, m)

	v, err := m.Value()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestJSONMapScanRejectsUnknownType(t *testing.T) {
	var m JSONMap
	require.Error(t, m.Scan(42))
}
