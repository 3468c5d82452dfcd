package workflow_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"designgen-backend/internal/models"
	"designgen-backend/internal/workflow"
)

func baseRecord() models.GenerationRecord {
	return models.GenerationRecord{
		SubjectID:  "p1",
		ProjectID:  "proj-1",
		LastChatID: "chat-1",
		LastPrompt: "Build a login page",
		Status:     models.StatusInProgress,
	}
}

func TestReconcile_PendingAndRunningMapToInProgress(t *testing.T) {
	now := time.Now()

	for _, state := range []models.RawState{models.RawPending, models.RawRunning} {
		rec := workflow.Reconcile(baseRecord(), models.ChatStatus{
			ChatID:   "chat-1",
			RawState: state,
		}, now)

		assert.Equal(t, models.StatusInProgress, rec.Status)
		assert.Empty(t, rec.ResultURL)
		assert.Equal(t, now, rec.UpdatedAt)
	}
}

func TestReconcile_DoneMapsToCompletedWithResultURL(t *testing.T) {
	rec := workflow.Reconcile(baseRecord(), models.ChatStatus{
		ChatID:    "chat-1",
		RawState:  models.RawDone,
		ResultURL: "https://x/y",
	}, time.Now())

	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, "https://x/y", rec.ResultURL)
}

func TestReconcile_DoneWithoutResultURLStaysInProgress(t *testing.T) {
	rec := workflow.Reconcile(baseRecord(), models.ChatStatus{
		ChatID:   "chat-1",
		RawState: models.RawDone,
	}, time.Now())

	assert.Equal(t, models.StatusInProgress, rec.Status)
	assert.Empty(t, rec.ResultURL)
}

func TestReconcile_ErroredMapsToFailed(t *testing.T) {
	rec := workflow.Reconcile(baseRecord(), models.ChatStatus{
		ChatID:   "chat-1",
		RawState: models.RawErrored,
	}, time.Now())

	assert.Equal(t, models.StatusFailed, rec.Status)
	assert.Empty(t, rec.ResultURL)
}

func TestReconcile_CompletedNeverRegressesForSameChat(t *testing.T) {
	prev := baseRecord()
	prev.Status = models.StatusCompleted
	prev.ResultURL = "https://x/y"

	// A stale poll that still reports the same chat as running must not undo
	// the completed result.
	rec := workflow.Reconcile(prev, models.ChatStatus{
		ChatID:   "chat-1",
		RawState: models.RawRunning,
	}, time.Now())

	assert.Equal(t, models.StatusCompleted, rec.Status)
	assert.Equal(t, "https://x/y", rec.ResultURL)
}

func TestReconcile_NewChatSupersedesCompletedResult(t *testing.T) {
	prev := baseRecord()
	prev.Status = models.StatusCompleted
	prev.ResultURL = "https://x/y"

	rec := workflow.Reconcile(prev, models.ChatStatus{
		ChatID:   "chat-2",
		RawState: models.RawRunning,
	}, time.Now())

	assert.Equal(t, models.StatusInProgress, rec.Status)
	assert.Equal(t, "chat-2", rec.LastChatID)
	assert.Empty(t, rec.ResultURL)
}

func TestReconcile_DiscoversChatIDAfterSubmitTimeout(t *testing.T) {
	prev := baseRecord()
	prev.LastChatID = ""

	rec := workflow.Reconcile(prev, models.ChatStatus{
		ChatID:   "chat-9",
		RawState: models.RawRunning,
	}, time.Now())

	assert.Equal(t, "chat-9", rec.LastChatID)
	assert.Equal(t, models.StatusInProgress, rec.Status)
}

func TestViewFromRecord_CanSubmitNew(t *testing.T) {
	cases := map[models.Status]bool{
		models.StatusNotSubmitted: true,
		models.StatusInProgress:   false,
		models.StatusCompleted:    true,
		models.StatusFailed:       true,
	}

	for status, want := range cases {
		rec := baseRecord()
		rec.Status = status
		view := models.ViewFromRecord(rec, "")
		assert.Equal(t, want, view.CanSubmitNew, "status %s", status)
	}
}

func TestViewFromRecord_PromptChanged(t *testing.T) {
	rec := baseRecord()
	rec.LastPrompt = "A"

	assert.True(t, models.ViewFromRecord(rec, "B").PromptChanged)
	assert.False(t, models.ViewFromRecord(rec, "A").PromptChanged)
	assert.False(t, models.ViewFromRecord(rec, "").PromptChanged)
}
