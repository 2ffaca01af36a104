package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	httpmiddleware "github.com/wolfman30/meeting-assistant/internal/http/middleware"
	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Transcript string `json:"transcript" validate:"required,max=2000"`
	SessionID  string `json:"session_id" validate:"omitempty,max=128,printascii"`
}

// Handler wires HTTP requests to the dialogue engine.
type Handler struct {
	engine   *Engine
	validate *validator.Validate
	logger   *logging.Logger
}

func NewHandler(engine *Engine, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:   engine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// RequestError is a malformed turn request. Message is safe to show callers.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return "dialogue: " + e.Message }

// Turn validates req and runs it through the engine. headerSession is used
// when the body carries no session ID; a new one is minted when both are
// empty. It returns the session ID the turn ran under.
func (h *Handler) Turn(ctx context.Context, req ProcessRequest, headerSession string) (*Reply, string, error) {
	req.Transcript = strings.TrimSpace(req.Transcript)
	if req.SessionID == "" {
		req.SessionID = strings.TrimSpace(headerSession)
	}
	if err := h.validate.Struct(req); err != nil {
		h.logger.Warn("invalid process request", "error", err)
		return nil, "", &RequestError{Message: validationMessage(err)}
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	reply, err := h.engine.HandleTurn(ctx, req.SessionID, req.Transcript)
	if err != nil {
		h.logger.Error("failed to process turn", "session_id", req.SessionID, "error", err)
		return nil, req.SessionID, err
	}
	return reply, req.SessionID, nil
}

// Process handles POST /process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		h.logger.Warn("failed to decode process request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reply, sessionID, err := h.Turn(r.Context(), req, r.Header.Get(httpmiddleware.SessionHeader))
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		http.Error(w, reqErr.Message, http.StatusBadRequest)
		return
	case err != nil:
		http.Error(w, "Failed to process transcript", http.StatusInternalServerError)
		return
	}

	w.Header().Set(httpmiddleware.SessionHeader, sessionID)
	h.writeJSON(w, StatusCode(reply), reply)
}

// GetSession handles GET /sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	view, err := h.engine.Snapshot(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load session", "session_id", sessionID, "error", err)
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.engine.Reset(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to reset session", "session_id", sessionID, "error", err)
		http.Error(w, "Failed to reset session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StatusCode maps a reply to its HTTP status: 422 when the user must clarify.
func StatusCode(reply *Reply) int {
	if reply.NeedsClarification() {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Transcript":
		if fe.Tag() == "required" {
			return "transcript is required"
		}
		return "transcript is too long"
	case "SessionID":
		return "session_id is invalid"
	}
	return "Invalid request"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
