package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/antoniostano/fitbot/internal/chat"
	"github.com/antoniostano/fitbot/internal/config"
	"github.com/antoniostano/fitbot/internal/observability"
)

func TestBuildWiresMockService(t *testing.T) {
	cfg := config.Config{
		MetricsNamespace:    "test_app",
		SessionTTL:          time.Hour,
		SessionHistoryLimit: 8,
		FitmentAskCooldown:  time.Minute,
		LinkMaxItems:        4,
		MarketplaceDefault:  "US",
		BrainMode:           "mock",
	}
	metrics := observability.NewMetricsWithRegisterer(cfg.MetricsNamespace, prometheus.NewRegistry())
	res, err := BuildWithMetrics(context.Background(), cfg, zerolog.Nop(), metrics)
	if err != nil {
		t.Fatalf("BuildWithMetrics() error = %v", err)
	}
	t.Cleanup(func() {
		if err := res.Cleanup(); err != nil {
			t.Errorf("Cleanup() error = %v", err)
		}
	})

	if res.Brain != "mock" {
		t.Fatalf("Brain = %q, want %q", res.Brain, "mock")
	}
	if got := res.Sessions.HistoryLimit(); got != 8 {
		t.Fatalf("HistoryLimit() = %d, want 8", got)
	}

	resp, err := res.Chat.HandleTurn(context.Background(), chat.TurnRequest{SessionID: "s1", Message: "best floor mats for my truck"})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.Decision != chat.DecisionAsk {
		t.Fatalf("Decision = %q, want %q", resp.Decision, chat.DecisionAsk)
	}

	if got := testutil.ToFloat64(metrics.ActiveSessions); got != 1 {
		t.Fatalf("active_sessions = %v, want 1", got)
	}

	ts := httptest.NewServer(res.API.Router())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/v1/session/s1", nil)
	dr, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE /v1/session/s1 error = %v", err)
	}
	dr.Body.Close()
	if dr.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want %d", dr.StatusCode, http.StatusOK)
	}
	if got := testutil.ToFloat64(metrics.ActiveSessions); got != 0 {
		t.Fatalf("active_sessions after delete = %v, want 0", got)
	}

	hr, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz error = %v", err)
	}
	hr.Body.Close()
	if hr.StatusCode != http.StatusOK {
		t.Fatalf("GET /readyz status = %d, want %d", hr.StatusCode, http.StatusOK)
	}
}

func TestBuildRejectsUnknownBrainMode(t *testing.T) {
	cfg := config.Config{SessionTTL: time.Hour, BrainMode: "carrier-pigeon"}
	metrics := observability.NewMetricsWithRegisterer("test_app_bad", prometheus.NewRegistry())
	if _, err := BuildWithMetrics(context.Background(), cfg, zerolog.Nop(), metrics); err == nil {
		t.Fatalf("BuildWithMetrics() error = nil, want unsupported mode error")
	}
}
