package workflow

import (
	"time"

	"designgen-backend/internal/models"
)

// Reconcile merges a freshly polled chat state into the previously stored
// record and returns the new record. It is a pure function.
//
// Status never regresses from completed to in_progress for the same chat: a
// stale poll arriving after completion must not undo a known result. A fresh
// status for a different chat id supersedes the old outcome entirely.
func Reconcile(prev models.GenerationRecord, fresh models.ChatStatus, now time.Time) models.GenerationRecord {
	next := prev
	next.UpdatedAt = now

	sameChat := prev.LastChatID != "" && prev.LastChatID == fresh.ChatID
	if sameChat && prev.Status == models.StatusCompleted {
		// Stale poll for an already-completed chat.
		return next
	}

	next.LastChatID = fresh.ChatID

	switch fresh.RawState {
	case models.RawPending, models.RawRunning:
		next.Status = models.StatusInProgress
		next.ResultURL = ""
	case models.RawDone:
		if fresh.ResultURL == "" {
			// The provider reports done before the artifact URL is published.
			// Completion is only claimed once a result exists.
			next.Status = models.StatusInProgress
			next.ResultURL = ""
		} else {
			next.Status = models.StatusCompleted
			next.ResultURL = fresh.ResultURL
		}
	case models.RawErrored:
		next.Status = models.StatusFailed
		next.ResultURL = ""
	}

	return next
}
