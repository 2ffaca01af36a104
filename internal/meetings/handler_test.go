package meetings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(repo Repository) http.Handler {
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Get("/meetings/{meetingID}", h.Get)
	r.Get("/meetings/{meetingID}/ics", h.ICS)
	r.Get("/sessions/{sessionID}/meetings", h.ListBySession)
	return r
}

func seededRepo(t *testing.T) *InMemoryRepository {
	t.Helper()
	repo := NewInMemoryRepository()
	m := New("m-1", "s-1", "Alice", tuesday4pm, KnownMinutes(30), createdAt).Confirm(createdAt)
	require.NoError(t, repo.Record(context.Background(), m))
	return repo
}

func TestHandlerGet(t *testing.T) {
	router := newTestRouter(seededRepo(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/m-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Alice", body["customer"])
	assert.Equal(t, "27-10-2026", body["date"])
	assert.Equal(t, float64(30), body["duration_minutes"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerICS(t *testing.T) {
	router := newTestRouter(seededRepo(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/m-1/ics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VEVENT")
}

func TestHandlerListBySession(t *testing.T) {
	router := newTestRouter(seededRepo(t))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/s-1/meetings", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Meetings, 1)
	assert.Equal(t, "m-1", body.Meetings[0].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/empty/meetings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"meetings":[]`)
}

func TestHandlerArchiveUnavailable(t *testing.T) {
	router := newTestRouter(&failingRepository{err: ErrArchiveUnavailable})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/meetings/m-1", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	router = newTestRouter(&failingRepository{err: errors.New("boom")})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions/s-1/meetings", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
