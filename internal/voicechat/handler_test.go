package voicechat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/meeting-assistant/internal/dialogue"
)

type fakeTurns struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeTurns) HandleTurn(ctx context.Context, sessionID, transcript string) (*dialogue.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, sessionID+"|"+transcript)
	if f.err != nil {
		return nil, f.err
	}
	return &dialogue.Reply{SessionID: sessionID, Status: dialogue.StatusAcknowledged, Intent: dialogue.IntentSetCustomer, Prompt: "ok"}, nil
}

func (f *fakeTurns) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func websocketMux(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/voice/ws", h.HandleWebSocket)
	return mux
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/voice/ws" + query
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func TestVoiceSocketTurn(t *testing.T) {
	turns := &fakeTurns{}
	h := NewHandler(turns, nil, nil)
	srv := httptest.NewServer(websocketMux(h))
	defer srv.Close()

	conn := dial(t, srv, "?session=s-1")

	hello := receive(t, conn)
	assert.Equal(t, "session", hello.Type)
	assert.Equal(t, "s-1", hello.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", receive(t, conn).Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "transcript", Text: " customer is Alice "}))
	reply := receive(t, conn)
	assert.Equal(t, "reply", reply.Type)
	require.NotNil(t, reply.Reply)
	assert.Equal(t, dialogue.StatusAcknowledged, reply.Reply.Status)
	assert.Equal(t, []string{"s-1|customer is Alice"}, turns.seen())
}

func TestVoiceSocketIssuesSession(t *testing.T) {
	h := NewHandler(&fakeTurns{}, nil, nil)
	srv := httptest.NewServer(websocketMux(h))
	defer srv.Close()

	conn := dial(t, srv, "")
	hello := receive(t, conn)
	assert.NotEmpty(t, hello.SessionID)
}

func TestVoiceSocketReportsTurnErrors(t *testing.T) {
	h := NewHandler(&fakeTurns{err: errors.New("redis down")}, nil, nil)
	srv := httptest.NewServer(websocketMux(h))
	defer srv.Close()

	conn := dial(t, srv, "?session=s-1")
	receive(t, conn)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "transcript", Text: "yes"}))
	msg := receive(t, conn)
	assert.Equal(t, "error", msg.Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "dance"}))
	assert.Equal(t, "unknown message type", receive(t, conn).Text)
}

func TestVoiceSocketRejectsSecondConnection(t *testing.T) {
	h := NewHandler(&fakeTurns{}, nil, nil)
	srv := httptest.NewServer(websocketMux(h))
	defer srv.Close()

	first := dial(t, srv, "?session=s-1")
	receive(t, first)

	second := dial(t, srv, "?session=s-1")
	msg := receive(t, second)
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, 1, h.ActiveSessions())
}
