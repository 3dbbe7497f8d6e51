package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"CompanyTracker/internal/config"
	"CompanyTracker/internal/ports"
	"CompanyTracker/internal/sentiment"
)

const systemPrompt = "You are a sentiment analysis expert. Analyze the text and respond with ONLY a JSON object containing 'label' (either 'POSITIVE', 'NEGATIVE', or 'NEUTRAL') and 'score' (a number between -1.0 and 1.0)."

// OpenAIAnalyzer classifies sentiment via an OpenAI-compatible chat
// completion API. Every transport, auth, or parse problem degrades to a
// neutral result; callers never see an error.
type OpenAIAnalyzer struct {
	endpoint   string
	model      string
	apiKey     string
	maxChars   int
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.SentimentAnalyzer = (*OpenAIAnalyzer)(nil)

// NewOpenAIAnalyzer builds a client from configuration. The API key
// must be present; availability is decided once at startup, not per
// call.
func NewOpenAIAnalyzer(cfg config.OpenAIConfig, logger *slog.Logger) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not set")
	}

	maxChars := cfg.MaxContentChars
	if maxChars <= 0 {
		maxChars = 3000
	}

	return &OpenAIAnalyzer{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		maxChars:   maxChars,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze sends a bounded prefix of text to the chat API and parses the
// structured reply out of the raw response.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, text string) sentiment.Result {
	if strings.TrimSpace(text) == "" {
		return sentiment.Neutral()
	}

	if len(text) > a.maxChars {
		text = text[:a.maxChars]
	}

	raw, err := a.complete(ctx, text)
	if err != nil {
		a.warn("sentiment request failed", err)
		return sentiment.Neutral()
	}

	if result, ok := parseStructured(raw); ok {
		return result
	}

	return sniffLabel(raw)
}

func (a *OpenAIAnalyzer) complete(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Analyze the sentiment of this text: " + text},
		},
		Temperature: 0,
		MaxTokens:   100,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("response contains no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}

// parseStructured locates the outermost brace pair in the raw reply and
// parses it as the {label, score} payload. The payload may be embedded
// in surrounding prose.
func parseStructured(raw string) (sentiment.Result, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return sentiment.Result{}, false
	}

	var result sentiment.Result
	if err := json.Unmarshal([]byte(raw[start:end+1]), &result); err != nil {
		return sentiment.Result{}, false
	}
	if result.Label == "" {
		return sentiment.Result{}, false
	}

	return sentiment.Normalize(result), true
}

// sniffLabel is the crude lexical fallback for replies that carry no
// parseable payload.
func sniffLabel(raw string) sentiment.Result {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, "positive"):
		return sentiment.Result{Label: sentiment.LabelPositive, Score: 0.7}
	case strings.Contains(lowered, "negative"):
		return sentiment.Result{Label: sentiment.LabelNegative, Score: -0.7}
	default:
		return sentiment.Neutral()
	}
}

func (a *OpenAIAnalyzer) warn(msg string, err error) {
	if a.logger != nil {
		a.logger.Warn(msg, "error", err)
	}
}
