// Package ai is a stateless client for an OpenAI-compatible chat completions
// endpoint (Groq by default). Every call is independent: conversational
// state, if any, is passed in whole by the caller.
//
// Failures come back as apperror.Transient errors. Callers decide which
// empty or fallback value to degrade to.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/fittrack/internal/apperror"
)

// Mode selects free-form text or a JSON object response.
type Mode int

const (
	ModeText Mode = iota
	ModeJSON
)

// Roles used in Message.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is one completion call. System is prepended to Messages as the
// system turn. Model falls back to the client's default when empty.
type Request struct {
	Purpose     string // metrics/log label, e.g. "diet_plan"
	Model       string
	System      string
	Messages    []Message
	Mode        Mode
	Temperature float64
	MaxTokens   int
}

// Completer is what the services depend on; *Client implements it and tests
// substitute fakes.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Observer receives one callback per completed call. May be nil.
type Observer interface {
	ObserveAI(purpose string, elapsed time.Duration, err error)
}

var (
	ErrEmptyResponse = errors.New("ai: empty completion")
	ErrNotJSONObject = errors.New("ai: completion is not a JSON object")
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to {BaseURL}/chat/completions.
type Client struct {
	baseURL  string
	model    string
	http     *http.Client
	observer Observer
	logger   *slog.Logger
}

// NewClient builds a Client. The API key is attached as a bearer token by
// an oauth2 static token source.
func NewClient(cfg Config, observer Observer, logger *slog.Logger) *Client {
	var hc *http.Client
	if cfg.APIKey != "" {
		hc = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIKey,
			TokenType:   "Bearer",
		}))
	} else {
		logger.Warn("AI API key not set; completions will fail and degrade to fallbacks")
		hc = &http.Client{}
	}
	hc.Timeout = cfg.Timeout

	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		model:    cfg.Model,
		http:     hc,
		observer: observer,
		logger:   logger,
	}
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends req and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	content, err := c.complete(ctx, req)
	if c.observer != nil {
		c.observer.ObserveAI(req.Purpose, time.Since(start), err)
	}
	if err != nil {
		c.logger.Warn("AI completion failed",
			slog.String("purpose", req.Purpose),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return "", apperror.Transient(req.Purpose, err)
	}
	c.logger.Debug("AI completion",
		slog.String("purpose", req.Purpose),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("chars", len(content)),
	)
	return content, nil
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.System})
	}
	messages = append(messages, req.Messages...)

	body := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Mode == ModeJSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	if req.Mode == ModeJSON && !strings.HasPrefix(content, "{") {
		return "", ErrNotJSONObject
	}
	return content, nil
}

// CompleteJSON runs req in JSON mode and decodes the object into v.
// A malformed object is reported as a transient failure like any other.
func CompleteJSON(ctx context.Context, c Completer, req Request, v any) error {
	req.Mode = ModeJSON
	content, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(content), v); err != nil {
		return apperror.Transient(req.Purpose, fmt.Errorf("decode %s object: %w", req.Purpose, err))
	}
	return nil
}
