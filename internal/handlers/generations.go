package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"designgen-backend/internal/models"
	"designgen-backend/internal/workflow"
)

type GenerationsHandler struct {
	controller *workflow.Controller
}

func NewGenerationsHandler(controller *workflow.Controller) *GenerationsHandler {
	return &GenerationsHandler{
		controller: controller,
	}
}

// Submit sends a prompt to the generation provider for the given subject.
func (h *GenerationsHandler) Submit(c *gin.Context) {
	subjectID := c.Param("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "subject id is required"})
		return
	}

	var req models.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Message: err.Error(),
		})
		return
	}

	view, err := h.controller.Submit(c.Request.Context(), subjectID, req.Prompt)
	if err != nil {
		status, label := mapWorkflowError(err)
		c.JSON(status, models.ErrorResponse{
			Error:   label,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, view)
}

// Refresh polls the provider and reconciles the freshest outcome into storage.
// The optional draft query parameter is the caller's current prompt text and
// only affects the prompt_changed flag of the response.
func (h *GenerationsHandler) Refresh(c *gin.Context) {
	subjectID := c.Param("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "subject id is required"})
		return
	}

	view, err := h.controller.RefreshStatus(c.Request.Context(), subjectID)
	if err != nil {
		status, label := mapWorkflowError(err)
		c.JSON(status, models.ErrorResponse{
			Error:   label,
			Message: err.Error(),
		})
		return
	}

	applyDraft(&view, c.Query("draft"))
	c.JSON(http.StatusOK, view)
}

// Get returns the stored view without contacting the provider.
func (h *GenerationsHandler) Get(c *gin.Context) {
	subjectID := c.Param("subject_id")
	if subjectID == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "subject id is required"})
		return
	}

	view, err := h.controller.Get(c.Request.Context(), subjectID)
	if err != nil {
		status, label := mapWorkflowError(err)
		c.JSON(status, models.ErrorResponse{
			Error:   label,
			Message: err.Error(),
		})
		return
	}

	applyDraft(&view, c.Query("draft"))
	c.JSON(http.StatusOK, view)
}

// applyDraft computes prompt_changed at the caller-facing boundary: the flag
// is derived from the caller's draft, never stored.
func applyDraft(view *models.WorkflowView, draft string) {
	view.PromptChanged = draft != "" && draft != view.LastPrompt
}

func mapWorkflowError(err error) (int, string) {
	switch {
	case errors.Is(err, workflow.ErrGenerationInFlight):
		return http.StatusConflict, "generation already in flight"
	case errors.Is(err, workflow.ErrProviderUnavailable):
		return http.StatusBadGateway, "generation provider unavailable"
	case errors.Is(err, workflow.ErrStatusCheckFailed):
		return http.StatusBadGateway, "status check failed"
	case errors.Is(err, workflow.ErrStorageUnavailable):
		return http.StatusInternalServerError, "storage unavailable"
	}
	return http.StatusBadRequest, "invalid request"
}
