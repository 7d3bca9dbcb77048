package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/antoniostano/fitbot/internal/affiliate"
	"github.com/antoniostano/fitbot/internal/chat"
	"github.com/antoniostano/fitbot/internal/config"
	"github.com/antoniostano/fitbot/internal/fitment"
	"github.com/antoniostano/fitbot/internal/memory"
	"github.com/antoniostano/fitbot/internal/observability"
	"github.com/antoniostano/fitbot/internal/session"
)

const (
	defaultTranscriptLimit = 50
	maxTranscriptLimit     = 200
)

type Server struct {
	cfg         config.Config
	chat        *chat.Service
	sessions    *session.Manager
	transcripts memory.Store
	metrics     *observability.Metrics
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

func New(cfg config.Config, chatService *chat.Service, sessions *session.Manager, transcripts memory.Store, metrics *observability.Metrics, log zerolog.Logger) *Server {
	return &Server{
		cfg:         cfg,
		chat:        chatService,
		sessions:    sessions,
		transcripts: transcripts,
		metrics:     metrics,
		log:         log.With().Str("component", "httpapi").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Only same-origin browser pages may open a chat socket unless configured otherwise.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})
	r.Get("/v1/perf/latency", s.handlePerfLatency)

	r.Post("/v1/chat", s.handleChat)
	r.Get("/v1/chat/ws", s.handleChatWS)
	r.Get("/v1/chat/{id}/transcript", s.handleTranscript)
	r.Get("/v1/session/{id}", s.handleGetSession)
	r.Delete("/v1/session/{id}", s.handleEndSession)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"session_store":    s.sessionStoreMode(),
		"transcript_store": s.transcriptMode(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.chat == nil || s.sessions == nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "chat service not configured")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":           "ready",
		"brain_provider":   s.chat.Provider(),
		"session_store":    s.sessionStoreMode(),
		"transcript_store": s.transcriptMode(),
	})
}

// handlePerfLatency reports the rolling per-stage turn latency window.
func (s *Server) handlePerfLatency(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.SnapshotTurnStages())
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Country   string `json:"country,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if s.chat == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "chat service not configured")
		return
	}
	id := strings.TrimSpace(req.SessionID)
	if id == "" {
		id = uuid.NewString()
	}

	resp, err := s.chat.HandleTurn(r.Context(), chat.TurnRequest{
		SessionID: id,
		Message:   req.Message,
		Country:   affiliate.CountryHint(req.Country, r.Header),
	})
	if err != nil {
		s.log.Error().Err(err).Str("session_id", id).Msg("chat turn failed")
		respondError(w, http.StatusServiceUnavailable, "turn_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

type sessionSnapshot struct {
	SessionID        string          `json:"session_id"`
	Vehicle          fitment.Profile `json:"vehicle"`
	Missing          []string        `json:"missing"`
	AskedFitmentOnce bool            `json:"asked_fitment_once"`
	Turns            int             `json:"turns"`
	PendingOffer     string          `json:"pending_offer,omitempty"`
	StartedAt        string          `json:"started_at"`
	LastActivityAt   string          `json:"last_activity_at"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	sess, err := s.sessions.Peek(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "session_store", err.Error())
		return
	}
	snap := sessionSnapshot{
		SessionID:        sess.ID,
		Vehicle:          sess.Vehicle,
		Missing:          sess.Vehicle.MissingCore(),
		AskedFitmentOnce: sess.AskedFitmentOnce,
		Turns:            len(sess.History),
		StartedAt:        sess.StartedAt.Format(time.RFC3339),
		LastActivityAt:   sess.LastActivityAt.Format(time.RFC3339),
	}
	if offer := sess.OpenOffer(s.sessions.Now()); offer != nil {
		snap.PendingOffer = offer.Type
	}
	if snap.Missing == nil {
		snap.Missing = []string{}
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	if err := s.sessions.End(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "session_store", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": id, "status": "ended"})
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_session_id", "missing session id")
		return
	}
	if s.transcripts == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "transcript store not configured")
		return
	}
	limit := defaultTranscriptLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxTranscriptLimit)
	}
	records, err := s.transcripts.RecentContext(r.Context(), id, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "transcript_store", err.Error())
		return
	}
	if records == nil {
		records = []memory.TurnRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"session_id": id, "turns": records})
}

func (s *Server) sessionStoreMode() string {
	if mode := strings.TrimSpace(s.cfg.SessionStore); mode != "" {
		return mode
	}
	return "memory"
}

func (s *Server) transcriptMode() string {
	if s.transcripts == nil {
		return "disabled"
	}
	return s.transcripts.Mode()
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
