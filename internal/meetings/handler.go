package meetings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/meeting-assistant/pkg/logging"
)

// Handler serves the archive of confirmed meetings.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

type listResponse struct {
	SessionID string    `json:"session_id"`
	Meetings  []Details `json:"meetings"`
}

// Get handles GET /meetings/{meetingID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, m.Details())
}

// ICS handles GET /meetings/{meetingID}/ics.
func (h *Handler) ICS(w http.ResponseWriter, r *http.Request) {
	m, ok := h.load(w, r)
	if !ok {
		return
	}
	body, err := EncodeICalendar(m)
	if err != nil {
		h.logger.Error("failed to encode meeting calendar", "meeting_id", m.ID, "error", err)
		http.Error(w, "Failed to export meeting", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="meeting-`+m.ID+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListBySession handles GET /sessions/{sessionID}/meetings.
func (h *Handler) ListBySession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	list, err := h.repo.ListBySession(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list meetings", "session_id", sessionID, "error", err)
		http.Error(w, "Failed to list meetings", statusFor(err))
		return
	}
	resp := listResponse{SessionID: sessionID, Meetings: make([]Details, 0, len(list))}
	for _, m := range list {
		resp.Meetings = append(resp.Meetings, m.Details())
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*Meeting, bool) {
	id := chi.URLParam(r, "meetingID")
	m, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrMeetingNotFound) {
			http.Error(w, "Meeting not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load meeting", "meeting_id", id, "error", err)
		http.Error(w, "Failed to load meeting", statusFor(err))
		return nil, false
	}
	return m, true
}

func statusFor(err error) int {
	if errors.Is(err, ErrArchiveUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
