// Package brain wraps the text-completion services that write chat replies.
package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmptyReply is returned when a provider answers with no text.
var ErrEmptyReply = errors.New("brain returned an empty reply")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn handed to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request: a system instruction plus the turn history,
// ending with the current user message.
type Request struct {
	SessionID string    `json:"session_id"`
	System    string    `json:"system"`
	History   []Message `json:"messages"`
	// Vehicle is the known vehicle rendered for display, if any.
	Vehicle string `json:"vehicle,omitempty"`
}

// LastUserMessage returns the content of the latest user turn.
func (r Request) LastUserMessage() string {
	for i := len(r.History) - 1; i >= 0; i-- {
		if r.History[i].Role == RoleUser {
			return r.History[i].Content
		}
	}
	return ""
}

type Response struct {
	Text string `json:"text"`
}

// Adapter produces one reply per request.
type Adapter interface {
	Complete(ctx context.Context, req Request) (Response, error)
	// Name labels the provider in logs and metrics.
	Name() string
}

// Config controls adapter construction.
type Config struct {
	Mode          string
	Timeout       time.Duration
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	RateLimit     float64
	RateBurst     int
	HTTPURL       string
}

func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		return newAutoAdapter(cfg), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai mode")
		}
		return NewOpenAIAdapter(openAIOptions(cfg)), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("brain HTTP url is required for http mode")
		}
		return NewHTTPAdapter(cfg.HTTPURL, cfg.Timeout), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain mode %q", cfg.Mode)
	}
}

// newAutoAdapter prefers OpenAI, then the HTTP endpoint. The mock answers only
// when neither is configured; it never stands in for a failing provider, so
// upstream errors reach the caller.
func newAutoAdapter(cfg Config) Adapter {
	var httpAdapter Adapter
	if strings.TrimSpace(cfg.HTTPURL) != "" {
		httpAdapter = NewHTTPAdapter(cfg.HTTPURL, cfg.Timeout)
	}
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		primary := NewOpenAIAdapter(openAIOptions(cfg))
		if httpAdapter != nil {
			return NewFallbackAdapter(primary, httpAdapter)
		}
		return primary
	}
	if httpAdapter != nil {
		return httpAdapter
	}
	return NewMockAdapter()
}

func openAIOptions(cfg Config) OpenAIOptions {
	return OpenAIOptions{
		APIKey:    cfg.OpenAIKey,
		BaseURL:   cfg.OpenAIBaseURL,
		Model:     cfg.OpenAIModel,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	}
}
