package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 5390, cfg.Server.Port)
	require.Equal(t, 5432, cfg.Database.Port)
	require.Equal(t, "gemini-1.5-flash", cfg.Translator.Model)
	require.Equal(t, 3, cfg.Translator.MaxAttempts)
	require.Equal(t, 10, cfg.Translator.BatchSize)
	require.Contains(t, cfg.Translator.KoreanSources, "yonhap")
	require.Equal(t, "2h", cfg.Scheduler.CrawlInterval)
	require.Equal(t, "Asia/Ho_Chi_Minh", cfg.Crawler.Timezone)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Translator.KoreanSources = []string{"custom"}
	ApplyDefaults(cfg)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, []string{"custom"}, cfg.Translator.KoreanSources)
}

func TestDurationAccessors(t *testing.T) {
	c := CrawlerConfig{RunTimeout: "90s", RequestTimeout: "bogus"}
	require.Equal(t, 90*time.Second, c.RunTimeoutDuration())
	require.Equal(t, 15*time.Second, c.RequestTimeoutDuration(), "unparsable values fall back to the default")
	require.Equal(t, 500*time.Millisecond, c.DetailDelayDuration())

	tr := TranslatorConfig{RetryDelay: "250ms"}
	require.Equal(t, 250*time.Millisecond, tr.RetryDelayDuration())
	require.Equal(t, 20*time.Second, tr.TimeoutDuration())

	wp := WordPressConfig{}
	require.Equal(t, 30*time.Second, wp.TimeoutDuration())
}

func TestLocationFallsBackToUTC(t *testing.T) {
	c := CrawlerConfig{Timezone: "Not/AZone"}
	require.Equal(t, time.UTC, c.Location())

	c = CrawlerConfig{Timezone: "Asia/Ho_Chi_Minh"}
	require.Equal(t, "Asia/Ho_Chi_Minh", c.Location().String())
}
