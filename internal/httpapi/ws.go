package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/antoniostano/fitbot/internal/affiliate"
	"github.com/antoniostano/fitbot/internal/chat"
)

const (
	wsFrameMessage = "message"
	wsFrameReply   = "reply"
	wsFrameError   = "error"

	wsReadLimit    = 64 << 10
	wsIdleTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsQueueSize    = 32
)

type wsClientFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Country   string `json:"country,omitempty"`
}

type wsReplyFrame struct {
	Type string `json:"type"`
	chat.TurnResponse
}

type wsErrorFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Code      string `json:"code"`
	Detail    string `json:"detail"`
	Retryable bool   `json:"retryable"`
}

// handleChatWS carries chat turns over one socket. The session_id query
// parameter names the default session; frames may override it.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	if s.chat == nil {
		respondError(w, http.StatusNotImplemented, "unavailable", "chat service not configured")
		return
	}
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	headers := r.Header.Clone()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.ObserveSessionEvent("ws_connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	inbound := make(chan wsClientFrame, wsQueueSize)
	outbound := make(chan any, wsQueueSize)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		defer close(outbound)
		s.runChatConnection(ctx, sessionID, headers, inbound, outbound)
	}()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range outbound {
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				s.log.Debug().Err(err).Str("session_id", sessionID).Msg("websocket write failed")
				cancel()
				// Drain so the runner never blocks on a dead socket.
				for range outbound {
				}
				return
			}
			s.metrics.ObserveWSMessage("outbound", frameTypeOf(msg))
		}
	}()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
	})

readLoop:
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		var frame wsClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.queue(outbound, wsErrorFrame{
				Type:      wsFrameError,
				SessionID: sessionID,
				Code:      "invalid_client_message",
				Detail:    err.Error(),
			})
			continue
		}
		if frame.Type != "" && frame.Type != wsFrameMessage {
			s.queue(outbound, wsErrorFrame{
				Type:      wsFrameError,
				SessionID: sessionID,
				Code:      "unsupported_frame",
				Detail:    "unsupported frame type " + frame.Type,
			})
			continue
		}
		s.metrics.ObserveWSMessage("inbound", wsFrameMessage)
		select {
		case <-ctx.Done():
			break readLoop
		case inbound <- frame:
		}
	}

	cancel()
	close(inbound)
	<-runDone
	<-writerDone
	s.metrics.ObserveSessionEvent("ws_disconnected")
}

// runChatConnection consumes inbound until it is closed. It is the only
// goroutine that closes outbound, so it never returns early.
func (s *Server) runChatConnection(ctx context.Context, defaultID string, headers http.Header, inbound <-chan wsClientFrame, outbound chan<- any) {
	for frame := range inbound {
		if ctx.Err() != nil {
			continue
		}
		id := strings.TrimSpace(frame.SessionID)
		if id == "" {
			id = defaultID
		}
		resp, err := s.chat.HandleTurn(ctx, chat.TurnRequest{
			SessionID: id,
			Message:   frame.Message,
			Country:   affiliate.CountryHint(frame.Country, headers),
		})
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			continue
		}
		var out any = wsReplyFrame{Type: wsFrameReply, TurnResponse: resp}
		if err != nil {
			out = wsErrorFrame{Type: wsFrameError, SessionID: id, Code: "turn_failed", Detail: err.Error(), Retryable: true}
		}
		select {
		case <-ctx.Done():
		case outbound <- out:
		}
	}
}

// queue keeps socket writes on the writer goroutine and drops when it is saturated.
func (s *Server) queue(outbound chan<- any, msg any) {
	select {
	case outbound <- msg:
	default:
		s.metrics.ObserveWSMessage("dropped", frameTypeOf(msg))
	}
}

func frameTypeOf(v any) string {
	switch m := v.(type) {
	case wsReplyFrame:
		return m.Type
	case wsErrorFrame:
		return m.Type
	default:
		return "unknown"
	}
}
