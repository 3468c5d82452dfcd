package models

type SubmitRequest struct {
	// Prompt is the natural-language description sent to the generation
	// provider, e.g. "Build a login page".
	Prompt string `json:"prompt" binding:"required"`
}
