package service

import (
	"context"
	"time"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService owns order CRUD. Workflow position is not writable here: the
// stage and the derived status belong to the WorkflowService.
type OrderService struct {
	orders  *repository.OrderGateway
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewOrderService(orders *repository.OrderGateway, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{orders: orders, logger: logger, nowFunc: time.Now}
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	ClientID     string `json:"client_id"`
	CustomerName string `json:"customer_name"`
	ProductType  string `json:"product_type"`
	Color        string `json:"color"`
	Size         string `json:"size"`
	Quantity     int    `json:"quantity"`
	ImageURL     string `json:"image_url"`
	PDFURL       string `json:"pdf_url"`
}

// OrderResult pairs an order with the durability advisory.
type OrderResult struct {
	Order  *entity.Order
	Synced bool
}

// Create makes a new order at the start of the pipeline. Shop defaults match
// the order form's.
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*OrderResult, error) {
	now := s.nowFunc()
	order := &entity.Order{
		ID:           uuid.New().String()[:32],
		ClientID:     req.ClientID,
		CustomerName: req.CustomerName,
		ProductType:  req.ProductType,
		Color:        req.Color,
		Size:         req.Size,
		Quantity:     req.Quantity,
		Status:       entity.StatusPending,
		KanbanStage:  entity.StageWaitingConfirmation,
		ImageURL:     req.ImageURL,
		PDFURL:       req.PDFURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if order.CustomerName == "" {
		order.CustomerName = "Cliente"
	}
	if order.ProductType == "" {
		order.ProductType = "Camiseta"
	}
	if order.Color == "" {
		order.Color = "Branco"
	}
	if order.Quantity <= 0 {
		order.Quantity = 1
	}

	localOnly, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, Synced: !localOnly}, nil
}

// Get returns one order.
func (s *OrderService) Get(ctx context.Context, id string) (*entity.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// List returns orders newest first, merged across stores.
func (s *OrderService) List(ctx context.Context, filters map[string]string) ([]entity.Order, error) {
	return s.orders.FindAll(ctx, filters)
}

// UpdateOrderRequest 更新订单请求
type UpdateOrderRequest struct {
	CustomerName *string `json:"customer_name"`
	ProductType  *string `json:"product_type"`
	Color        *string `json:"color"`
	Size         *string `json:"size"`
	Quantity     *int    `json:"quantity"`
	ImageURL     *string `json:"image_url"`
	PDFURL       *string `json:"pdf_url"`
}

// Update applies descriptive edits. Stage, status, checklists and
// delivered_at are never touched here.
func (s *OrderService) Update(ctx context.Context, id string, req *UpdateOrderRequest) (*OrderResult, error) {
	updates := map[string]interface{}{}
	if req.CustomerName != nil {
		updates["customer_name"] = *req.CustomerName
	}
	if req.ProductType != nil {
		updates["product_type"] = *req.ProductType
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.PDFURL != nil {
		updates["pdf_url"] = *req.PDFURL
	}

	if len(updates) == 0 {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return &OrderResult{Order: order, Synced: true}, nil
	}

	updates["updated_at"] = s.nowFunc()
	localOnly, err := s.orders.Update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &OrderResult{Order: order, Synced: !localOnly}, nil
}

// Delete removes the order. Attachments are not eagerly deleted; their
// lifecycle is tied to the order record only.
func (s *OrderService) Delete(ctx context.Context, id string) (bool, error) {
	return s.orders.Delete(ctx, id)
}
