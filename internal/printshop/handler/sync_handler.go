package handler

import (
	"github.com/folkstudio/printflow/internal/printshop/reconciler"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/gin-gonic/gin"
)

// SyncHandler exposes the local-to-remote reconciliation queue.
type SyncHandler struct {
	orders *repository.OrderGateway
	rec    *reconciler.Reconciler
}

func NewSyncHandler(orders *repository.OrderGateway, rec *reconciler.Reconciler) *SyncHandler {
	return &SyncHandler{orders: orders, rec: rec}
}

// Pending lists order ids waiting to be pushed to the remote store.
// GET /api/v1/sync/pending
func (h *SyncHandler) Pending(c *gin.Context) {
	ids, err := h.orders.PendingSync(c.Request.Context())
	if err != nil {
		InternalError(c, "failed to list pending orders: "+err.Error())
		return
	}

	Success(c, gin.H{"items": ids, "total": len(ids)})
}

// Run triggers one reconcile pass immediately instead of waiting for the
// next tick.
// POST /api/v1/sync/run
func (h *SyncHandler) Run(c *gin.Context) {
	if err := h.rec.SyncOnce(c.Request.Context()); err != nil {
		InternalError(c, "reconcile pass failed: "+err.Error())
		return
	}

	Success(c, gin.H{"message": "reconcile pass done"})
}
