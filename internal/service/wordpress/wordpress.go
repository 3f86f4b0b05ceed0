package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
)

// Client talks to the WordPress REST v2 API. Every call carries the
// configured timeout; failures surface to the caller untouched.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *zap.Logger
}

func NewClient(cfg config.WordPressConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.AppPassword,
		client:   &http.Client{Timeout: cfg.TimeoutDuration()},
		logger:   logger,
	}
}

type PostRequest struct {
	Title           string
	Content         string
	Excerpt         string
	CategoryID      int
	FeaturedMediaID int
}

type PostResult struct {
	ID  int    `json:"id"`
	URL string `json:"link"`
}

type MediaResult struct {
	ID  int    `json:"id"`
	URL string `json:"source_url"`
}

// CreatePost publishes a new post and returns its id and public URL.
func (c *Client) CreatePost(ctx context.Context, req PostRequest) (*PostResult, error) {
	body := map[string]any{
		"title":   req.Title,
		"content": req.Content,
		"excerpt": req.Excerpt,
		"status":  "publish",
	}
	if req.CategoryID > 0 {
		body["categories"] = []int{req.CategoryID}
	}
	if req.FeaturedMediaID > 0 {
		body["featured_media"] = req.FeaturedMediaID
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal post body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/posts", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.username, c.password)

	var result PostResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &result, nil
}

// UploadMediaFromURL downloads the source image and uploads it as a media
// item. The multipart body comes from the standard library writer.
func (c *Client) UploadMediaFromURL(ctx context.Context, imageURL string) (*MediaResult, error) {
	data, contentType, err := c.download(ctx, imageURL)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}

	filename := path.Base(imageURL)
	if idx := strings.IndexAny(filename, "?#"); idx >= 0 {
		filename = filename[:idx]
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = "image.jpg"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/wp-json/wp/v2/media", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	if contentType != "" {
		httpReq.Header.Set("X-Upload-Content-Type", contentType)
	}
	httpReq.SetBasicAuth(c.username, c.password)

	var result MediaResult
	if err := c.do(httpReq, &result); err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}
	return &result, nil
}

// DeletePost removes a post permanently. Best effort on the caller side.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/wp-json/wp/v2/posts/%d?force=true", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.SetBasicAuth(c.username, c.password)

	if err := c.do(httpReq, nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("wordpress returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	// 10MB cap; anything larger is not a news thumbnail.
	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}
