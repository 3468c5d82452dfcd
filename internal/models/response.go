package models

import "time"

// WorkflowView is the derived state returned to callers. It is computed per
// request and never stored.
type WorkflowView struct {
	SubjectID     string     `json:"subject_id"`
	ProjectID     string     `json:"project_id,omitempty"`
	Status        Status     `json:"status"`
	ResultURL     string     `json:"result_url,omitempty"`
	CanSubmitNew  bool       `json:"can_submit_new"`
	PromptChanged bool       `json:"prompt_changed"`
	LastPrompt    string     `json:"last_prompt,omitempty"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// ViewFromRecord derives the caller-facing view from a stored record.
// draftPrompt is the caller's current prompt text; PromptChanged is true when
// it differs from the prompt of the most recent submission.
func ViewFromRecord(rec GenerationRecord, draftPrompt string) WorkflowView {
	view := WorkflowView{
		SubjectID:    rec.SubjectID,
		ProjectID:    rec.ProjectID,
		Status:       rec.Status,
		ResultURL:    rec.ResultURL,
		CanSubmitNew: rec.Status.Terminal() || rec.Status == StatusNotSubmitted,
		LastPrompt:   rec.LastPrompt,
	}
	if draftPrompt != "" && draftPrompt != rec.LastPrompt {
		view.PromptChanged = true
	}
	if !rec.UpdatedAt.IsZero() {
		updatedAt := rec.UpdatedAt
		view.UpdatedAt = &updatedAt
	}
	return view
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
