package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/antoniostano/fitbot/internal/reliability"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultMaxAttempts   = 3
	defaultRetryBase     = 250 * time.Millisecond
	defaultRetryCap      = 4 * time.Second
	defaultOpenAITimeout = 45 * time.Second
)

type OpenAIOptions struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// RateLimit is requests per second across all sessions; <= 0 disables limiting.
	RateLimit   float64
	RateBurst   int
	MaxAttempts int
	RetryBase   time.Duration
	RetryCap    time.Duration
}

// OpenAIAdapter calls the chat completions API with client-side rate limiting
// and retries on retryable statuses.
type OpenAIAdapter struct {
	client      *openai.Client
	model       string
	timeout     time.Duration
	limiter     *rate.Limiter
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

func NewOpenAIAdapter(opts OpenAIOptions) *OpenAIAdapter {
	cfg := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		cfg.BaseURL = strings.TrimRight(u, "/")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpenAITimeout
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}

	a := &OpenAIAdapter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		timeout:     timeout,
		limiter:     rate.NewLimiter(limit, burst),
		maxAttempts: opts.MaxAttempts,
		retryBase:   opts.RetryBase,
		retryCap:    opts.RetryCap,
	}
	if a.maxAttempts <= 0 {
		a.maxAttempts = defaultMaxAttempts
	}
	if a.retryBase <= 0 {
		a.retryBase = defaultRetryBase
	}
	if a.retryCap <= 0 {
		a.retryCap = defaultRetryCap
	}
	return a
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    toChatMessages(req),
		Temperature: 0.4,
	}

	var lastErr error
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, reliability.ExponentialBackoff(attempt-1, a.retryBase, a.retryCap)); err != nil {
				return Response{}, err
			}
		}
		if err := a.limiter.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("openai rate limiter: %w", err)
		}

		resp, err := a.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			if len(resp.Choices) == 0 {
				return Response{}, ErrEmptyReply
			}
			text := strings.TrimSpace(resp.Choices[0].Message.Content)
			if text == "" {
				return Response{}, ErrEmptyReply
			}
			return Response{Text: text}, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return Response{}, fmt.Errorf("openai chat completion: %w", lastErr)
}

func toChatMessages(req Request) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(req.History)+1)
	if s := strings.TrimSpace(req.System); s != "" {
		out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	for _, m := range req.History {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	return out
}

func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return reliability.IsRetryableHTTPStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode != 0 {
			return reliability.IsRetryableHTTPStatus(reqErr.HTTPStatusCode)
		}
	}
	return reliability.IsTransientNetError(err)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
