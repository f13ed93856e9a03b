package service

import (
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/storage"
	"go.uber.org/zap"
)

// Services bundles the print shop service layer for handler wiring.
type Services struct {
	Orders      *OrderService
	Workflow    *WorkflowService
	Attachments *AttachmentService
	Activity    *ActivityService
}

func NewServices(repos *repository.Repositories, store *storage.BinaryStore, logger *zap.Logger) *Services {
	return &Services{
		Orders:      NewOrderService(repos.Orders, logger),
		Workflow:    NewWorkflowService(repos.Orders, repos.StatusLogs, repos.Clients, logger),
		Attachments: NewAttachmentService(repos.Orders, store, logger),
		Activity:    NewActivityService(repos.StatusLogs),
	}
}
