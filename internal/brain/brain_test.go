package brain

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testRequest() Request {
	return Request{
		SessionID: "s-1",
		System:    "You help truck owners pick parts.",
		History: []Message{
			{Role: RoleUser, Content: "best tonneau cover?"},
			{Role: RoleAssistant, Content: "What's the year, make, and model?"},
			{Role: RoleUser, Content: "2020 Ford F-150"},
		},
		Vehicle: "2020 Ford F-150",
	}
}

func TestMockAdapterEchoesWithVehicle(t *testing.T) {
	resp, err := NewMockAdapter().Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !strings.HasPrefix(resp.Text, "For your 2020 Ford F-150, here is what I would look at: 2020 Ford F-150.") {
		t.Fatalf("resp.Text = %q", resp.Text)
	}
}

func TestMockAdapterHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMockAdapter().Complete(ctx, testRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Complete() error = %v, want context.Canceled", err)
	}
}

func TestHTTPAdapterComplete(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"  The BAKFlip MX4 fits.  "}`))
	}))
	defer srv.Close()

	resp, err := NewHTTPAdapter(srv.URL, time.Second).Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "The BAKFlip MX4 fits." {
		t.Fatalf("resp.Text = %q, want %q", resp.Text, "The BAKFlip MX4 fits.")
	}
	if got.SessionID != "s-1" || len(got.History) != 3 || got.History[2].Content != "2020 Ford F-150" {
		t.Fatalf("upstream request = %+v", got)
	}
}

func TestHTTPAdapterPlainTextAndErrors(t *testing.T) {
	status := http.StatusOK
	body := "plain words"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()
	a := NewHTTPAdapter(srv.URL, time.Second)

	resp, err := a.Complete(context.Background(), testRequest())
	if err != nil || resp.Text != "plain words" {
		t.Fatalf("Complete() = %q, %v", resp.Text, err)
	}

	body = `{"text":""}`
	if _, err := a.Complete(context.Background(), testRequest()); !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("Complete() error = %v, want ErrEmptyReply", err)
	}

	status, body = http.StatusBadGateway, "upstream down"
	_, err = a.Complete(context.Background(), testRequest())
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusBadGateway {
		t.Fatalf("Complete() error = %v, want StatusError 502", err)
	}
}

func TestOpenAIAdapterRetriesRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"Try the BAKFlip MX4."},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	a := NewOpenAIAdapter(OpenAIOptions{
		APIKey:    "test",
		BaseURL:   srv.URL + "/v1",
		Timeout:   2 * time.Second,
		RetryBase: time.Millisecond,
		RetryCap:  5 * time.Millisecond,
	})
	resp, err := a.Complete(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "Try the BAKFlip MX4." {
		t.Fatalf("resp.Text = %q", resp.Text)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d, want 2", calls.Load())
	}
	msgs, _ := lastBody["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("messages = %d, want system + 3 turns", len(msgs))
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" {
		t.Fatalf("first message role = %v, want system", first["role"])
	}
}

func TestOpenAIAdapterDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	a := NewOpenAIAdapter(OpenAIOptions{APIKey: "bad", BaseURL: srv.URL + "/v1", RetryBase: time.Millisecond})
	if _, err := a.Complete(context.Background(), testRequest()); err == nil {
		t.Fatalf("Complete() error = nil, want error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

type stubAdapter struct {
	name string
	resp Response
	err  error
	hits int
}

func (s *stubAdapter) Name() string { return s.name }

func (s *stubAdapter) Complete(context.Context, Request) (Response, error) {
	s.hits++
	return s.resp, s.err
}

func TestFallbackAdapter(t *testing.T) {
	primary := &stubAdapter{name: "openai", err: errors.New("boom")}
	secondary := &stubAdapter{name: "mock", resp: Response{Text: "ok"}}
	a := NewFallbackAdapter(primary, secondary)

	resp, err := a.Complete(context.Background(), testRequest())
	if err != nil || resp.Text != "ok" {
		t.Fatalf("Complete() = %q, %v", resp.Text, err)
	}
	if a.Name() != "openai" {
		t.Fatalf("Name() = %q, want openai", a.Name())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary.err = context.Canceled
	secondary.hits = 0
	if _, err := a.Complete(ctx, testRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("Complete() error = %v, want context.Canceled", err)
	}
	if secondary.hits != 0 {
		t.Fatalf("secondary called after caller cancel")
	}

	secondary.err = errors.New("also down")
	if _, err := a.Complete(context.Background(), testRequest()); err == nil {
		t.Fatalf("Complete() error = nil, want combined error")
	}
}

func TestNewAdapterModes(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "openai"}); err == nil {
		t.Fatalf("openai without key: error = nil")
	}
	if _, err := NewAdapter(Config{Mode: "http"}); err == nil {
		t.Fatalf("http without url: error = nil")
	}
	if _, err := NewAdapter(Config{Mode: "carrier-pigeon"}); err == nil {
		t.Fatalf("unknown mode: error = nil")
	}

	a, err := NewAdapter(Config{})
	if err != nil {
		t.Fatalf("auto error = %v", err)
	}
	if _, ok := a.(*MockAdapter); !ok {
		t.Fatalf("auto with nothing configured = %T, want *MockAdapter", a)
	}

	a, _ = NewAdapter(Config{Mode: "auto", OpenAIKey: "k", HTTPURL: "http://brain.test"})
	fb, ok := a.(*FallbackAdapter)
	if !ok {
		t.Fatalf("auto with key = %T, want *FallbackAdapter", a)
	}
	if _, ok := fb.Primary().(*OpenAIAdapter); !ok {
		t.Fatalf("primary = %T, want *OpenAIAdapter", fb.Primary())
	}
	if _, ok := fb.Secondary().(*HTTPAdapter); !ok {
		t.Fatalf("secondary = %T, want *HTTPAdapter", fb.Secondary())
	}

	a, _ = NewAdapter(Config{Mode: "auto", OpenAIKey: "k"})
	if _, ok := a.(*OpenAIAdapter); !ok {
		t.Fatalf("auto with key only = %T, want *OpenAIAdapter", a)
	}
	a, _ = NewAdapter(Config{Mode: "auto", HTTPURL: "http://brain.test"})
	if _, ok := a.(*HTTPAdapter); !ok {
		t.Fatalf("auto with url only = %T, want *HTTPAdapter", a)
	}
}
