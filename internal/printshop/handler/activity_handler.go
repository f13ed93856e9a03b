package handler

import (
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/gin-gonic/gin"
)

// ActivityHandler serves the transition history feeds.
type ActivityHandler struct {
	svc *service.ActivityService
}

func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// OrderHistory lists an order's transitions oldest first.
// GET /api/v1/orders/:id/activity
func (h *ActivityHandler) OrderHistory(c *gin.Context) {
	id := c.Param("id")

	logs, err := h.svc.OrderHistory(c.Request.Context(), id)
	if err != nil {
		InternalError(c, "failed to list order activity: "+err.Error())
		return
	}

	Success(c, gin.H{"items": logs})
}

// ActorHistory lists everything a user changed, newest first.
// GET /api/v1/activity/by-actor/:actorId
func (h *ActivityHandler) ActorHistory(c *gin.Context) {
	actorID := c.Param("actorId")

	logs, err := h.svc.ActorHistory(c.Request.Context(), actorID)
	if err != nil {
		InternalError(c, "failed to list actor activity: "+err.Error())
		return
	}

	Success(c, gin.H{"items": logs})
}
