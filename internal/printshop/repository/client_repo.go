package repository

import (
	"context"
	"errors"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"gorm.io/gorm"
)

// ClientRepository is a read-only directory lookup for the workflow core.
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByID returns the client or ErrNotFound.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*entity.Client, error) {
	var client entity.Client
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&client).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}
