package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter provides deterministic local replies when no model is configured.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Name() string { return "mock" }

func (a *MockAdapter) Complete(ctx context.Context, req Request) (Response, error) {
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}
	return Response{Text: buildMockReply(req)}, nil
}

func buildMockReply(req Request) string {
	base := strings.TrimSpace(req.LastUserMessage())
	if base == "" {
		base = "your truck"
	}
	base = strings.TrimRight(base, ".!? ")
	if v := strings.TrimSpace(req.Vehicle); v != "" {
		return fmt.Sprintf("For your %s, here is what I would look at: %s. Check the fitment notes on each listing before you buy.", v, base)
	}
	return fmt.Sprintf("Here is what I would look at: %s. Check the fitment notes on each listing before you buy.", base)
}
