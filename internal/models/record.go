package models

import "time"

// Status is the locally persisted lifecycle state of a subject's generation.
type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusInProgress   Status = "in_progress"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
)

// Terminal reports whether no further transition happens without a new submission.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// RawState is the closed set of chat states reported by the provider.
type RawState string

const (
	RawPending RawState = "pending"
	RawRunning RawState = "running"
	RawDone    RawState = "done"
	RawErrored RawState = "errored"
)

// GenerationRecord is the durable per-subject row. ProjectID is set at most
// once for a subject and never overwritten; LastPrompt always reflects the
// most recent submission attempt even while its completion is pending.
type GenerationRecord struct {
	SubjectID  string
	ProjectID  string
	LastChatID string
	LastPrompt string
	Status     Status
	ResultURL  string
	Version    int64
	UpdatedAt  time.Time
}

// NewGenerationRecord returns the all-default record used when a subject has
// never been submitted.
func NewGenerationRecord(subjectID string) GenerationRecord {
	return GenerationRecord{
		SubjectID: subjectID,
		Status:    StatusNotSubmitted,
	}
}

// ChatStatus is a freshly polled provider state. It is never stored directly;
// it always passes through the reconciler first.
type ChatStatus struct {
	ChatID    string
	RawState  RawState
	ResultURL string
}
