package repository

import (
	"context"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusLogRepository is append-only: it exposes no update or delete.
type StatusLogRepository struct {
	db *gorm.DB
}

func NewStatusLogRepository(db *gorm.DB) *StatusLogRepository {
	return &StatusLogRepository{db: db}
}

// Append records one transition.
func (r *StatusLogRepository) Append(ctx context.Context, log *entity.StatusLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()[:32]
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// ListByOrder returns entries in the order they were appended.
func (r *StatusLogRepository) ListByOrder(ctx context.Context, orderID string) ([]entity.StatusLog, error) {
	var logs []entity.StatusLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

// ListByActor returns an actor's transitions, newest first, matched by the
// stable actor id.
func (r *StatusLogRepository) ListByActor(ctx context.Context, actorID string) ([]entity.StatusLog, error) {
	var logs []entity.StatusLog
	err := r.db.WithContext(ctx).
		Where("changed_by_id = ?", actorID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
