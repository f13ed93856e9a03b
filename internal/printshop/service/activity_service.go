package service

import (
	"context"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
)

// ActivityService exposes the append-only transition history.
type ActivityService struct {
	logs *repository.StatusLogRepository
}

func NewActivityService(logs *repository.StatusLogRepository) *ActivityService {
	return &ActivityService{logs: logs}
}

// OrderHistory returns the order's transitions oldest first.
func (s *ActivityService) OrderHistory(ctx context.Context, orderID string) ([]entity.StatusLog, error) {
	return s.logs.ListByOrder(ctx, orderID)
}

// ActorHistory returns everything an actor changed, newest first.
func (s *ActivityService) ActorHistory(ctx context.Context, actorID string) ([]entity.StatusLog, error) {
	return s.logs.ListByActor(ctx, actorID)
}
