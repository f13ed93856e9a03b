package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PendingSyncKey is the redis set holding ids of orders whose latest write
// only reached the local mirror.
const PendingSyncKey = "printflow:orders:pending_sync"

// OrderGateway writes remote-first and falls back to the local durable mirror
// when the remote store is unreachable. The local store is
// eventually-reconcilable, never primary: reads prefer remote, merged lists
// let the remote record win, and the reconciler pushes local-only records
// back out. Every write reports localOnly so callers can surface the
// "not yet synced" advisory.
type OrderGateway struct {
	remote *OrderRepository
	local  *OrderRepository
	rdb    *redis.Client
	logger *zap.Logger

	locks sync.Map // order id -> *sync.Mutex
}

func NewOrderGateway(remote, local *OrderRepository, rdb *redis.Client, logger *zap.Logger) *OrderGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderGateway{remote: remote, local: local, rdb: rdb, logger: logger}
}

// lock returns the mutex serializing writes for one order id. Advance must be
// a single critical section per order: read, validate guard, conditional
// write.
func (g *OrderGateway) lock(id string) *sync.Mutex {
	mu, _ := g.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Create persists a new order, remote first. localOnly is true when the
// record only reached the local mirror.
func (g *OrderGateway) Create(ctx context.Context, order *entity.Order) (bool, error) {
	if err := g.remote.Create(ctx, order); err != nil {
		g.logger.Warn("remote create failed, falling back to local store",
			zap.String("order_id", order.ID), zap.Error(err))
		if lerr := g.local.Upsert(ctx, order); lerr != nil {
			return false, lerr
		}
		g.markPending(ctx, order.ID)
		return true, nil
	}
	return false, nil
}

// FindByID reads remote first and falls back to the local mirror both when
// the remote store errors and when it simply does not have the record yet.
func (g *OrderGateway) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	order, err := g.remote.FindByID(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, ErrNotFound) {
		g.logger.Warn("remote read failed, falling back to local store",
			zap.String("order_id", id), zap.Error(err))
	}
	return g.local.FindByID(ctx, id)
}

// FindAll merges remote results with local-only records. Dedup is by id with
// the remote record winning; the merged list is re-sorted newest first.
func (g *OrderGateway) FindAll(ctx context.Context, filters map[string]string) ([]entity.Order, error) {
	remote, err := g.remote.FindAll(ctx, filters)
	if err != nil {
		g.logger.Warn("remote list failed, serving local store only", zap.Error(err))
		return g.local.FindAll(ctx, filters)
	}

	local, lerr := g.local.FindAll(ctx, filters)
	if lerr != nil || len(local) == 0 {
		return remote, nil
	}

	seen := make(map[string]struct{}, len(remote))
	for _, o := range remote {
		seen[o.ID] = struct{}{}
	}
	merged := remote
	for _, o := range local {
		if _, ok := seen[o.ID]; !ok {
			merged = append(merged, o)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged, nil
}

// Update applies partial updates, remote first.
func (g *OrderGateway) Update(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	err := g.remote.Update(ctx, id, updates)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, ErrNotFound) {
		// The record may exist only in the mirror.
		if lerr := g.local.Update(ctx, id, updates); lerr == nil {
			g.markPending(ctx, id)
			return true, nil
		}
		return false, ErrNotFound
	}

	g.logger.Warn("remote update failed, falling back to local store",
		zap.String("order_id", id), zap.Error(err))
	if lerr := g.local.Update(ctx, id, updates); lerr != nil {
		return false, err
	}
	g.markPending(ctx, id)
	return true, nil
}

// AdvanceStage performs the guarded stage write for order, conditional on the
// stage it was read at. Concurrent advances on the same order serialize on a
// per-order mutex; a stage that moved underneath returns ErrStageConflict.
func (g *OrderGateway) AdvanceStage(ctx context.Context, order *entity.Order, updates map[string]interface{}) (bool, error) {
	mu := g.lock(order.ID)
	mu.Lock()
	defer mu.Unlock()

	err := g.remote.UpdateStageFrom(ctx, order.ID, order.KanbanStage, updates)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrStageConflict):
		return false, err
	case errors.Is(err, ErrNotFound):
		// Local-only order: apply the same conditional write to the mirror.
		if lerr := g.local.UpdateStageFrom(ctx, order.ID, order.KanbanStage, updates); lerr != nil {
			return false, lerr
		}
		g.markPending(ctx, order.ID)
		return true, nil
	}

	g.logger.Warn("remote stage write failed, falling back to local store",
		zap.String("order_id", order.ID), zap.String("stage", order.KanbanStage), zap.Error(err))
	if lerr := g.local.Upsert(ctx, order); lerr != nil {
		return false, err
	}
	if lerr := g.local.UpdateStageFrom(ctx, order.ID, order.KanbanStage, updates); lerr != nil {
		return false, lerr
	}
	g.markPending(ctx, order.ID)
	return true, nil
}

// Delete removes the order from whichever stores hold it.
func (g *OrderGateway) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := g.remote.Delete(ctx, id)
	if err != nil {
		g.logger.Warn("remote delete failed, falling back to local store",
			zap.String("order_id", id), zap.Error(err))
		return g.local.Delete(ctx, id)
	}
	if localRemoved, lerr := g.local.Delete(ctx, id); lerr == nil && localRemoved {
		g.clearPending(ctx, id)
		removed = true
	}
	return removed, nil
}

// PendingSync lists order ids whose latest write is local-only. With no redis
// the local mirror itself is the pending set.
func (g *OrderGateway) PendingSync(ctx context.Context) ([]string, error) {
	if g.rdb != nil {
		ids, err := g.rdb.SMembers(ctx, PendingSyncKey).Result()
		if err == nil {
			return ids, nil
		}
		g.logger.Warn("pending-sync set unavailable, scanning local store", zap.Error(err))
	}
	orders, err := g.local.FindAll(ctx, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids, nil
}

// SyncOrder pushes one local-only record back to the remote store. The remote
// record stays authoritative: a remote row newer than the mirror is never
// overwritten. On success the mirror entry and the pending mark are dropped.
func (g *OrderGateway) SyncOrder(ctx context.Context, id string) error {
	localOrder, err := g.local.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		g.clearPending(ctx, id)
		return nil
	}
	if err != nil {
		return err
	}

	remoteOrder, err := g.remote.FindByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if remoteOrder == nil || !remoteOrder.UpdatedAt.After(localOrder.UpdatedAt) {
		if err := g.remote.Upsert(ctx, localOrder); err != nil {
			return err
		}
	}

	if _, err := g.local.Delete(ctx, id); err != nil {
		return err
	}
	g.clearPending(ctx, id)
	return nil
}

func (g *OrderGateway) markPending(ctx context.Context, id string) {
	if g.rdb == nil {
		return
	}
	if err := g.rdb.SAdd(ctx, PendingSyncKey, id).Err(); err != nil {
		g.logger.Warn("failed to mark order pending sync", zap.String("order_id", id), zap.Error(err))
	}
}

func (g *OrderGateway) clearPending(ctx context.Context, id string) {
	if g.rdb == nil {
		return
	}
	if err := g.rdb.SRem(ctx, PendingSyncKey, id).Err(); err != nil {
		g.logger.Warn("failed to clear pending sync mark", zap.String("order_id", id), zap.Error(err))
	}
}
