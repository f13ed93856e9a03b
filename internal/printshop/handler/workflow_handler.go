package handler

import (
	"errors"

	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/gin-gonic/gin"
)

// WorkflowHandler serves the kanban stage transitions.
type WorkflowHandler struct {
	svc *service.WorkflowService
}

func NewWorkflowHandler(svc *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{svc: svc}
}

type advanceRequest struct {
	Checklist map[string]bool `json:"checklist"`
}

type returnRequest struct {
	Reason string `json:"reason"`
}

// Advance moves an order one column to the right once its guards pass.
// POST /api/v1/orders/:id/advance
func (h *WorkflowHandler) Advance(c *gin.Context) {
	id := c.Param("id")

	var req advanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Advance(c.Request.Context(), id, currentActor(c), req.Checklist)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}

	Success(c, gin.H{"order": result.Order, "synced": result.Synced})
}

// Return sends a waiting-confirmation order to the returned column.
// POST /api/v1/orders/:id/return
func (h *WorkflowHandler) Return(c *gin.Context) {
	id := c.Param("id")

	var req returnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Return(c.Request.Context(), id, currentActor(c), req.Reason)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}

	Success(c, gin.H{"order": result.Order, "synced": result.Synced})
}

// Resubmit puts a returned order back on the board.
// POST /api/v1/orders/:id/resubmit
func (h *WorkflowHandler) Resubmit(c *gin.Context) {
	id := c.Param("id")

	result, err := h.svc.Resubmit(c.Request.Context(), id, currentActor(c))
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}

	Success(c, gin.H{"order": result.Order, "synced": result.Synced})
}

func (h *WorkflowHandler) writeTransitionError(c *gin.Context, err error) {
	var guardErr *service.GuardError
	switch {
	case errors.As(err, &guardErr):
		ConflictWithData(c, guardErr.Error(), gin.H{
			"requirement": guardErr.Requirement,
			"missing":     guardErr.Missing,
		})
	case errors.Is(err, service.ErrInvalidTransition):
		Conflict(c, "invalid stage transition")
	case errors.Is(err, service.ErrMissingReason):
		BadRequest(c, "return reason is required")
	case errors.Is(err, repository.ErrStageConflict):
		Conflict(c, "order stage changed concurrently, retry")
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "order not found")
	default:
		InternalError(c, "failed to move order: "+err.Error())
	}
}
