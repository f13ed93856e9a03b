package handler

import (
	"github.com/folkstudio/printflow/internal/printshop/reconciler"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/service"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the HTTP handlers for route registration.
type Handlers struct {
	Order      *OrderHandler
	Workflow   *WorkflowHandler
	Attachment *AttachmentHandler
	Activity   *ActivityHandler
	Client     *ClientHandler
	Sync       *SyncHandler
}

func NewHandlers(svc *service.Services, repos *repository.Repositories, rec *reconciler.Reconciler) *Handlers {
	return &Handlers{
		Order:      NewOrderHandler(svc.Orders),
		Workflow:   NewWorkflowHandler(svc.Workflow),
		Attachment: NewAttachmentHandler(svc.Attachments),
		Activity:   NewActivityHandler(svc.Activity),
		Client:     NewClientHandler(repos.Clients),
		Sync:       NewSyncHandler(repos.Orders, rec),
	}
}

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error maps a five-digit business code to its HTTP status (code / 100).
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// ConflictWithData is Conflict with a detail payload, used for guard failures
// so the caller learns which requirement blocked the move.
func ConflictWithData(c *gin.Context, message string, data interface{}) {
	c.JSON(409, Response{
		Code:    40900,
		Message: message,
		Data:    data,
	})
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID reads the authenticated user id placed by the JWT middleware.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetUserName reads the authenticated user display name.
func GetUserName(c *gin.Context) string {
	userName, _ := c.Get("user_name")
	if name, ok := userName.(string); ok {
		return name
	}
	return ""
}

func currentActor(c *gin.Context) service.Actor {
	return service.Actor{ID: GetUserID(c), Name: GetUserName(c)}
}
