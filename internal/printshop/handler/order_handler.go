package handler

import (
	"errors"

	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves order CRUD.
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create creates an order on the waiting confirmation column.
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		InternalError(c, "failed to create order: "+err.Error())
		return
	}

	Created(c, gin.H{"order": result.Order, "synced": result.Synced})
}

// List returns orders matching the query filters, newest first.
// GET /api/v1/orders?kanban_stage=&status=&client_id=&search=
func (h *OrderHandler) List(c *gin.Context) {
	filters := map[string]string{}
	for _, key := range []string{"kanban_stage", "status", "client_id", "search"} {
		if v := c.Query(key); v != "" {
			filters[key] = v
		}
	}

	orders, err := h.svc.List(c.Request.Context(), filters)
	if err != nil {
		InternalError(c, "failed to list orders: "+err.Error())
		return
	}

	Success(c, gin.H{"items": orders, "total": len(orders)})
}

// Get returns one order by id.
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id := c.Param("id")

	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "order not found")
			return
		}
		InternalError(c, "failed to get order: "+err.Error())
		return
	}

	Success(c, order)
}

// Update edits descriptive order fields. Stage and status moves go through
// the workflow endpoints.
// PUT /api/v1/orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "order not found")
			return
		}
		InternalError(c, "failed to update order: "+err.Error())
		return
	}

	Success(c, gin.H{"order": result.Order, "synced": result.Synced})
}

// Delete removes an order.
// DELETE /api/v1/orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	removed, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		InternalError(c, "failed to delete order: "+err.Error())
		return
	}
	if !removed {
		NotFound(c, "order not found")
		return
	}

	Success(c, gin.H{"deleted": true})
}
