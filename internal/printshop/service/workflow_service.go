package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"go.uber.org/zap"
)

// Actor identifies who performs a transition. ID is the stable identity used
// everywhere as the join key; Name is derived display text.
type Actor struct {
	ID   string
	Name string
}

// WorkflowService is the single shared home of the kanban stage machine. Both
// the admin surface and the vendor-facing read-only views consume it; neither
// carries its own copy of the guard logic.
type WorkflowService struct {
	orders  *repository.OrderGateway
	logs    *repository.StatusLogRepository
	clients *repository.ClientRepository
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewWorkflowService(orders *repository.OrderGateway, logs *repository.StatusLogRepository, clients *repository.ClientRepository, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		orders:  orders,
		logs:    logs,
		clients: clients,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// TransitionResult carries the post-transition order plus whether the write
// reached the remote store. Synced=false is the non-fatal "not yet durable
// remotely" advisory.
type TransitionResult struct {
	Order  *entity.Order
	Synced bool
}

// Advance moves the order exactly one step forward on the linear path,
// validating the current stage's guard first. A failed guard mutates nothing,
// logs nothing, and reports which requirement is missing.
func (s *WorkflowService) Advance(ctx context.Context, orderID string, actor Actor, items map[string]bool) (*TransitionResult, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	next, ok := entity.NextStage(order.KanbanStage)
	if !ok {
		return nil, ErrInvalidTransition
	}

	if missing := order.MissingChecklistKeys(order.KanbanStage, items); len(missing) > 0 {
		return nil, &GuardError{Requirement: RequirementChecklist, Missing: missing}
	}
	if missing := order.MissingAttachments(order.KanbanStage); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, kind := range missing {
			names[i] = string(kind)
		}
		return nil, &GuardError{Requirement: RequirementAttachment, Missing: names}
	}

	now := s.nowFunc()
	updates := map[string]interface{}{
		"kanban_stage": next,
		"status":       entity.StatusForStage(next),
		"updated_at":   now,
	}

	var snapshot *entity.ChecklistSnapshot
	if keys := entity.StageChecklistKeys(order.KanbanStage); len(keys) > 0 {
		checked := make(map[string]bool, len(keys))
		for _, key := range keys {
			checked[key] = items[key]
		}
		snapshot = &entity.ChecklistSnapshot{
			Items:         checked,
			CheckedBy:     actor.ID,
			CheckedByName: actor.Name,
			CheckedAt:     now,
		}
	}

	switch order.KanbanStage {
	case entity.StagePhotolith:
		updates["photolith_status"] = true
		updates["checklist_photolith"] = snapshot
	case entity.StageWaitingArrival:
		updates["checklist_arrival"] = snapshot
	case entity.StageCustomization:
		updates["checklist_customization"] = snapshot
	case entity.StageDelivery:
		updates["delivered_at"] = now
	}

	localOnly, err := s.orders.AdvanceStage(ctx, order, updates)
	if err != nil {
		return nil, err
	}

	s.appendLog(ctx, order.ID, entity.LogActionAdvance, order.KanbanStage, next, actor)

	from := order.KanbanStage
	order.KanbanStage = next
	order.Status = entity.StatusForStage(next)
	order.UpdatedAt = now
	switch from {
	case entity.StagePhotolith:
		order.PhotolithStatus = true
		order.ChecklistPhotolith = snapshot
	case entity.StageWaitingArrival:
		order.ChecklistArrival = snapshot
	case entity.StageCustomization:
		order.ChecklistCustomization = snapshot
	case entity.StageDelivery:
		order.DeliveredAt = &now
	}

	return &TransitionResult{Order: order, Synced: !localOnly}, nil
}

// Return sends a waiting_confirmation order back to the vendor. The only
// guard is a non-empty reason.
func (s *WorkflowService) Return(ctx context.Context, orderID string, actor Actor, reason string) (*TransitionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrMissingReason
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.KanbanStage != entity.StageWaitingConfirmation {
		return nil, ErrInvalidTransition
	}

	now := s.nowFunc()
	updates := map[string]interface{}{
		"kanban_stage":  entity.StageReturned,
		"status":        entity.StatusReturned,
		"return_reason": reason,
		"updated_at":    now,
	}

	localOnly, err := s.orders.AdvanceStage(ctx, order, updates)
	if err != nil {
		return nil, err
	}

	s.appendLog(ctx, order.ID, entity.LogActionReturn, entity.StageWaitingConfirmation, entity.StageReturned, actor)
	s.notifyReturn(ctx, order, reason)

	order.KanbanStage = entity.StageReturned
	order.Status = entity.StatusReturned
	order.ReturnReason = reason
	order.UpdatedAt = now

	return &TransitionResult{Order: order, Synced: !localOnly}, nil
}

// Resubmit re-enters a returned order at waiting_confirmation after the
// vendor corrected it. A fresh approval cycle, not a forward transition.
func (s *WorkflowService) Resubmit(ctx context.Context, orderID string, actor Actor) (*TransitionResult, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.KanbanStage != entity.StageReturned {
		return nil, ErrInvalidTransition
	}

	now := s.nowFunc()
	updates := map[string]interface{}{
		"kanban_stage": entity.StageWaitingConfirmation,
		"status":       entity.StatusPending,
		"updated_at":   now,
	}

	localOnly, err := s.orders.AdvanceStage(ctx, order, updates)
	if err != nil {
		return nil, err
	}

	s.appendLog(ctx, order.ID, entity.LogActionResubmit, entity.StageReturned, entity.StageWaitingConfirmation, actor)

	order.KanbanStage = entity.StageWaitingConfirmation
	order.Status = entity.StatusPending
	order.UpdatedAt = now

	return &TransitionResult{Order: order, Synced: !localOnly}, nil
}

// appendLog records the transition. Best effort: the order mutation is the
// transaction of record, audit failure only gets operator visibility.
func (s *WorkflowService) appendLog(ctx context.Context, orderID, action, from, to string, actor Actor) {
	log := &entity.StatusLog{
		OrderID:       orderID,
		Action:        action,
		FromStage:     from,
		ToStage:       to,
		ChangedByID:   actor.ID,
		ChangedByName: actor.Name,
	}
	if err := s.logs.Append(ctx, log); err != nil {
		s.logger.Warn("audit log append failed, transition stands",
			zap.String("order_id", orderID),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
	}
}

// notifyReturn resolves the notification target for a returned order. Message
// delivery itself is owned by an external channel.
func (s *WorkflowService) notifyReturn(ctx context.Context, order *entity.Order, reason string) {
	if order.ClientID == "" {
		return
	}
	client, err := s.clients.FindByID(ctx, order.ClientID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("client lookup for return notification failed",
				zap.String("order_id", order.ID), zap.Error(err))
		}
		return
	}
	s.logger.Info("order returned to vendor",
		zap.String("order_id", order.ID),
		zap.String("client_id", client.ID),
		zap.String("client_email", client.Email),
		zap.String("reason", reason))
}
