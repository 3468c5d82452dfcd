package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"designgen-backend/internal/handlers"
	"designgen-backend/internal/models"
	"designgen-backend/internal/store"
	"designgen-backend/internal/v0"
	"designgen-backend/internal/workflow"
)

// stubProvider answers every call with fixed data.
type stubProvider struct {
	state models.RawState
	url   string
}

func (s *stubProvider) EnsureProject(ctx context.Context, name string) (string, error) {
	return "proj-1", nil
}

func (s *stubProvider) SubmitPrompt(ctx context.Context, projectID, prompt string) (string, error) {
	return "chat-1", nil
}

func (s *stubProvider) GetLatestChat(ctx context.Context, projectID string) (*v0.ChatSummary, error) {
	return &v0.ChatSummary{ChatID: "chat-1"}, nil
}

func (s *stubProvider) GetChatStatus(ctx context.Context, chatID string) (*models.ChatStatus, error) {
	return &models.ChatStatus{ChatID: chatID, RawState: s.state, ResultURL: s.url}, nil
}

func newRouter(provider workflow.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := workflow.NewController(provider, store.NewMemoryStore(), workflow.Timeouts{}, nil)
	handler := handlers.NewGenerationsHandler(controller)

	router := gin.New()
	router.POST("/generations/:subject_id", handler.Submit)
	router.POST("/generations/:subject_id/refresh", handler.Refresh)
	router.GET("/generations/:subject_id", handler.Get)
	return router
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) models.WorkflowView {
	t.Helper()
	var view models.WorkflowView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestSubmit_ReturnsInProgressView(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawRunning})

	req, _ := http.NewRequest("POST", "/generations/p1", strings.NewReader(`{"prompt": "Build a login page"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, models.StatusInProgress, view.Status)
	assert.Equal(t, "proj-1", view.ProjectID)
	assert.False(t, view.CanSubmitNew)
}

func TestSubmit_MissingPrompt(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawRunning})

	req, _ := http.NewRequest("POST", "/generations/p1", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmit_DuplicateWhileInFlightIsConflict(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawRunning})

	body := `{"prompt": "Build a login page"}`
	req, _ := http.NewRequest("POST", "/generations/p1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/generations/p1", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRefresh_CompletedView(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawDone, url: "https://x/y"})

	req, _ := http.NewRequest("POST", "/generations/p1", strings.NewReader(`{"prompt": "Build a login page"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/generations/p1/refresh", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, models.StatusCompleted, view.Status)
	assert.Equal(t, "https://x/y", view.ResultURL)
	assert.True(t, view.CanSubmitNew)
}

func TestRefresh_UnknownSubjectIsNotSubmitted(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawRunning})

	req, _ := http.NewRequest("POST", "/generations/ghost/refresh", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView(t, w)
	assert.Equal(t, models.StatusNotSubmitted, view.Status)
}

func TestGet_DraftControlsPromptChanged(t *testing.T) {
	router := newRouter(&stubProvider{state: models.RawRunning})

	req, _ := http.NewRequest("POST", "/generations/p1", strings.NewReader(`{"prompt": "A"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/generations/p1?draft=B", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeView(t, w).PromptChanged)

	req, _ = http.NewRequest("GET", "/generations/p1?draft=A", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeView(t, w).PromptChanged)
}
