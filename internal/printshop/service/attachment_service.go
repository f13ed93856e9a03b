package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// attachmentColumns maps each kind to the order column holding its reference.
var attachmentColumns = map[entity.AttachmentKind]string{
	entity.AttachmentPhotolith:       "photolith_url",
	entity.AttachmentFinalProduct:    "final_product_url",
	entity.AttachmentClientSignature: "client_signature_url",
	entity.AttachmentPurchaseOrder:   "pdf_url",
	entity.AttachmentMockup:          "image_url",
}

// AttachmentService binds uploaded artifacts to orders. Stage guards read the
// reference straight off the persisted order, so a new attachment is visible
// to the next Advance call immediately.
type AttachmentService struct {
	orders  *repository.OrderGateway
	store   *storage.BinaryStore
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewAttachmentService(orders *repository.OrderGateway, store *storage.BinaryStore, logger *zap.Logger) *AttachmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttachmentService{orders: orders, store: store, logger: logger, nowFunc: time.Now}
}

// AttachResult carries the stored reference and the durability advisory.
type AttachResult struct {
	Ref    string
	Synced bool
}

// Attach stores the content and writes its reference into the order's field
// for the kind. Attaching again for the same kind replaces the reference; the
// old content stays until some external cleanup cares.
func (s *AttachmentService) Attach(ctx context.Context, orderID string, kind entity.AttachmentKind, content io.Reader, contentType string) (*AttachResult, error) {
	column, ok := attachmentColumns[kind]
	if !ok {
		return nil, fmt.Errorf("unknown attachment kind: %s", kind)
	}

	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s-%s-%s", kind, orderID, uuid.New().String()[:8])
	ref, contentLocal, err := s.store.Put(ctx, key, content, contentType)
	if err != nil {
		return nil, err
	}

	refLocal, err := s.orders.Update(ctx, orderID, map[string]interface{}{
		column:       ref,
		"updated_at": s.nowFunc(),
	})
	if err != nil {
		return nil, err
	}

	return &AttachResult{Ref: ref, Synced: !contentLocal && !refLocal}, nil
}

// Open resolves a stored reference for download.
func (s *AttachmentService) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	return s.store.Get(ctx, ref)
}
