// Package voicechat carries dialogue turns over a websocket so a voice client
// can stream transcripts and play back prompts.
package voicechat

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/meeting-assistant/internal/dialogue"
	"github.com/wolfman30/meeting-assistant/internal/observability/metrics"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// idleTimeout closes sockets that stop sending transcripts or pings.
const idleTimeout = 5 * time.Minute

// TurnHandler processes one transcript for a session.
type TurnHandler interface {
	HandleTurn(ctx context.Context, sessionID, transcript string) (*dialogue.Reply, error)
}

// InboundMessage is what the voice client sends.
type InboundMessage struct {
	Type string `json:"type"` // "transcript", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send back.
type OutboundMessage struct {
	Type      string          `json:"type"` // "session", "reply", "pong", "error"
	SessionID string          `json:"session_id,omitempty"`
	Reply     *dialogue.Reply `json:"reply,omitempty"`
	Text      string          `json:"text,omitempty"`
}

// Handler manages voice websocket connections.
type Handler struct {
	turns   TurnHandler
	metrics *metrics.TurnMetrics
	logger  *logging.Logger

	mu       sync.RWMutex
	sessions map[string]*websocket.Conn
}

func NewHandler(turns TurnHandler, m *metrics.TurnMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		turns:    turns,
		metrics:  m,
		logger:   logger,
		sessions: make(map[string]*websocket.Conn),
	}
}

// HandleWebSocket upgrades GET /voice/ws. The optional ?session= query
// resumes an existing dialogue session.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serve(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serve(conn *websocket.Conn, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := h.logger.WithSession(sessionID)

	if h.register(sessionID, conn) {
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", SessionID: sessionID, Text: "session already connected"})
		return
	}
	defer h.unregister(sessionID, conn)
	h.metrics.SocketOpened()
	defer h.metrics.SocketClosed()

	// The HTTP server's request deadlines still apply to the hijacked conn.
	_ = conn.SetWriteDeadline(time.Time{})
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	logger.Info("voicechat: connection opened")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			logger.Debug("voicechat: connection closed", "error", err)
			return
		}

		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		case "transcript":
		default:
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: "unknown message type"})
			continue
		}

		text := strings.TrimSpace(msg.Text)
		if text == "" {
			continue
		}

		reply, err := h.turns.HandleTurn(r.Context(), sessionID, text)
		if err != nil {
			logger.Error("voicechat: turn failed", "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", SessionID: sessionID, Text: "could not process transcript"})
			continue
		}
		if err := websocket.JSON.Send(conn, OutboundMessage{Type: "reply", SessionID: sessionID, Reply: reply}); err != nil {
			logger.Debug("voicechat: send failed", "error", err)
			return
		}
	}
}

// register records conn for the session and reports whether another
// connection already holds it.
func (h *Handler) register(sessionID string, conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.sessions[sessionID]; busy {
		return true
	}
	h.sessions[sessionID] = conn
	return false
}

func (h *Handler) unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[sessionID] == conn {
		delete(h.sessions, sessionID)
	}
}

// ActiveSessions reports how many sessions have a live connection.
func (h *Handler) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
