package repository

import (
	"context"
	"errors"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository is a plain gorm repository over one store. The gateway
// composes two of these (remote and local mirror); nothing below knows which
// side it is on.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order. A second insert with the same id is a no-op, so
// retried writes never duplicate records.
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(order).Error
}

// Upsert writes the full record, replacing an existing row with the same id.
// Used when mirroring a record into the local store.
func (r *OrderRepository) Upsert(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, UpdateAll: true}).
		Create(order).Error
}

// FindByID returns the order or ErrNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists orders newest first, optionally filtered.
func (r *OrderRepository) FindAll(ctx context.Context, filters map[string]string) ([]entity.Order, error) {
	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if stage := filters["kanban_stage"]; stage != "" {
		query = query.Where("kanban_stage = ?", stage)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if clientID := filters["client_id"]; clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("customer_name LIKE ?", "%"+search+"%")
	}

	var orders []entity.Order
	err := query.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

// Update applies column updates to one order and bumps updated_at implicitly.
func (r *OrderRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStageFrom applies updates only if the order is still in fromStage.
// Returns ErrStageConflict when the row exists but the stage moved, and
// ErrNotFound when there is no such order.
func (r *OrderRepository) UpdateStageFrom(ctx context.Context, id, fromStage string, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND kanban_stage = ?", id, fromStage).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrStageConflict
	}
	return nil
}

// Delete removes the order. Reports whether a row was removed.
func (r *OrderRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Order{})
	return res.RowsAffected > 0, res.Error
}
