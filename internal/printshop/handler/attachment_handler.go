package handler

import (
	"errors"
	"io"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/gin-gonic/gin"
)

// AttachmentHandler serves attachment upload and download.
type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload stores a file under the order's attachment slot for the kind.
// POST /api/v1/orders/:id/attachments/:kind
func (h *AttachmentHandler) Upload(c *gin.Context) {
	id := c.Param("id")
	if !entity.ValidAttachmentKind(c.Param("kind")) {
		BadRequest(c, "unknown attachment kind: "+c.Param("kind"))
		return
	}
	kind := entity.AttachmentKind(c.Param("kind"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file field: "+err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "failed to read upload: "+err.Error())
		return
	}
	defer src.Close()

	result, err := h.svc.Attach(c.Request.Context(), id, kind, src, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "order not found")
			return
		}
		InternalError(c, "failed to store attachment: "+err.Error())
		return
	}

	Success(c, gin.H{"ref": result.Ref, "synced": result.Synced})
}

// Download streams a stored attachment back by its reference.
// GET /api/v1/attachments?ref=...
func (h *AttachmentHandler) Download(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		BadRequest(c, "ref query parameter is required")
		return
	}

	rc, err := h.svc.Open(c.Request.Context(), ref)
	if err != nil {
		NotFound(c, "attachment not found: "+err.Error())
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(200)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// headers are already out, nothing left to report to the client
		_ = c.Error(err)
	}
}
