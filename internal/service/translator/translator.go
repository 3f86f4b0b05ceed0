package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/pkg/util"
)

// Request carries one candidate into the LLM.
type Request struct {
	Title   string
	Summary string
	Content string
	Source  string
}

// Result is the structured contract the model must honor. Title is
// required; Category is validated and normalized by the caller.
type Result struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Client wraps the Gemini API for translation plus classification.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(ctx context.Context, cfg config.TranslatorConfig, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.TimeoutDuration(),
		logger:  logger,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// promptMaxChars keeps article bodies from blowing up the prompt.
const promptMaxChars = 6000

// Translate sends one article through the model and parses the JSON
// contract. A single call carries its own timeout; retries are the
// caller's concern.
func (c *Client) Translate(ctx context.Context, req Request) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"

	prompt := buildPrompt(req)
	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return ParseResponse(raw)
}

func buildPrompt(req Request) string {
	content := util.TruncateRunes(util.CleanText(req.Content), promptMaxChars, 1200)

	var categories []string
	for _, cat := range models.AllCategories() {
		categories = append(categories, string(cat))
	}

	var b strings.Builder
	b.WriteString("You are a professional news translator for a Korean-language news site serving the Korean community in Vietnam.\n")
	b.WriteString("Translate the following article into natural Korean. Keep proper nouns and brand names untranslated.\n")
	b.WriteString("Then classify it into exactly one category from this list: ")
	b.WriteString(strings.Join(categories, ", "))
	b.WriteString(".\n\n")
	b.WriteString("Respond with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"title": "<Korean title>", "summary": "<Korean summary, 2-3 sentences>", "content": "<Korean full text>", "category": "<one category>"}`)
	b.WriteString("\n\nARTICLE\n")
	fmt.Fprintf(&b, "Source: %s\nTitle: %s\n", req.Source, req.Title)
	if req.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", util.CleanText(req.Summary))
	}
	if content != "" {
		fmt.Fprintf(&b, "Body: %s\n", content)
	}
	return b.String()
}

// ParseResponse decodes the model output into a Result. The model
// occasionally wraps JSON in markdown fences or pads it with prose, so the
// parser extracts the outermost JSON object before decoding. A missing or
// empty title is a contract violation and an error.
func ParseResponse(raw string) (*Result, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var res Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, fmt.Errorf("failed to decode model response: %w", err)
	}

	res.Title = strings.TrimSpace(res.Title)
	if res.Title == "" {
		return nil, fmt.Errorf("model response missing required title field")
	}
	res.Summary = strings.TrimSpace(res.Summary)
	res.Content = strings.TrimSpace(res.Content)
	res.Category = strings.TrimSpace(res.Category)
	return &res, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
