package handler

import (
	"errors"

	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/gin-gonic/gin"
)

// ClientHandler serves client lookups for the return notification flow.
type ClientHandler struct {
	repo *repository.ClientRepository
}

func NewClientHandler(repo *repository.ClientRepository) *ClientHandler {
	return &ClientHandler{repo: repo}
}

// Get returns one client by id.
// GET /api/v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id := c.Param("id")

	client, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "client not found")
			return
		}
		InternalError(c, "failed to get client: "+err.Error())
		return
	}

	Success(c, client)
}
