package repository

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")

	// ErrStageConflict means the order's kanban_stage changed between read
	// and write. Retryable: reload the order and re-validate.
	ErrStageConflict = errors.New("kanban stage conflict")
)

// Repositories 仓库集合
type Repositories struct {
	Orders     *OrderGateway
	StatusLogs *StatusLogRepository
	Clients    *ClientRepository
}

// NewRepositories wires the repository set over the remote store, the local
// fallback mirror, and the pending-sync set. rdb may be nil.
func NewRepositories(remote, local *gorm.DB, rdb *redis.Client, logger *zap.Logger) *Repositories {
	return &Repositories{
		Orders:     NewOrderGateway(NewOrderRepository(remote), NewOrderRepository(local), rdb, logger),
		StatusLogs: NewStatusLogRepository(remote),
		Clients:    NewClientRepository(remote),
	}
}
