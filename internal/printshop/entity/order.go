package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Kanban stages. The stage is the authoritative workflow position; the coarse
// Status field is always derived from it via StatusForStage.
const (
	StageWaitingConfirmation = "waiting_confirmation"
	StagePhotolith           = "photolith"
	StageWaitingArrival      = "waiting_arrival"
	StageCustomization       = "customization"
	StageDelivery            = "delivery"
	StageFinalized           = "finalized"
	StageReturned            = "returned"
)

// Coarse order status, kept for listing/reporting compatibility.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusReturned  = "returned"
	StatusCancelled = "cancelled"
)

// Attachment kinds bound to order fields.
type AttachmentKind string

const (
	AttachmentPhotolith       AttachmentKind = "photolith"
	AttachmentFinalProduct    AttachmentKind = "final_product"
	AttachmentClientSignature AttachmentKind = "client_signature"
	AttachmentPurchaseOrder   AttachmentKind = "purchase_order_pdf"
	AttachmentMockup          AttachmentKind = "mockup"
)

// LocalRefPrefix marks an attachment reference that lives in the local binary
// store rather than remote object storage.
const LocalRefPrefix = "local:"

// ChecklistSnapshot is the immutable record of who confirmed which checklist
// items and when. Written exactly once, at the moment its owning stage is
// exited forward.
// CheckedBy is the stable actor id; CheckedByName is display text only.
type ChecklistSnapshot struct {
	Items         map[string]bool `json:"items"`
	CheckedBy     string          `json:"checked_by"`
	CheckedByName string          `json:"checked_by_name"`
	CheckedAt     time.Time       `json:"checked_at"`
}

func (s ChecklistSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ChecklistSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("failed to scan ChecklistSnapshot: %v", value)
	}
}

// Order 印刷订单
type Order struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	ClientID     string `json:"client_id" gorm:"size:32;index"`
	CustomerName string `json:"customer_name" gorm:"size:200;not null"`

	ProductType string `json:"product_type" gorm:"size:100"`
	Color       string `json:"color" gorm:"size:50"`
	Size        string `json:"size" gorm:"size:20"`
	Quantity    int    `json:"quantity" gorm:"default:1"`

	Status      string `json:"status" gorm:"size:20;default:pending;index"`
	KanbanStage string `json:"kanban_stage" gorm:"size:30;default:waiting_confirmation;index"`

	ReturnReason string `json:"return_reason" gorm:"type:text"`

	// Attachment references. Remote refs are plain URLs; local refs carry
	// the local: prefix.
	PhotolithURL       string `json:"photolith_url" gorm:"size:500"`
	FinalProductURL    string `json:"final_product_url" gorm:"size:500"`
	ClientSignatureURL string `json:"client_signature_url" gorm:"size:500"`
	PDFURL             string `json:"pdf_url" gorm:"size:500"`
	ImageURL           string `json:"image_url" gorm:"size:500"`

	PhotolithStatus bool `json:"photolith_status" gorm:"default:false"`

	ChecklistPhotolith     *ChecklistSnapshot `json:"checklist_photolith,omitempty" gorm:"type:jsonb"`
	ChecklistArrival       *ChecklistSnapshot `json:"checklist_arrival,omitempty" gorm:"type:jsonb"`
	ChecklistCustomization *ChecklistSnapshot `json:"checklist_customization,omitempty" gorm:"type:jsonb"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// stageOrder is the linear happy path; returned sits outside it.
var stageOrder = []string{
	StageWaitingConfirmation,
	StagePhotolith,
	StageWaitingArrival,
	StageCustomization,
	StageDelivery,
	StageFinalized,
}

// stageStatus maps every stage to exactly one coarse status.
var stageStatus = map[string]string{
	StageWaitingConfirmation: StatusPending,
	StagePhotolith:           StatusActive,
	StageWaitingArrival:      StatusActive,
	StageCustomization:       StatusActive,
	StageDelivery:            StatusActive,
	StageFinalized:           StatusCompleted,
	StageReturned:            StatusReturned,
}

// Per-stage checklist keys. Stages absent here have no checklist.
var stageChecklists = map[string][]string{
	StagePhotolith:      {"interpretation", "order_match", "photolith_ok"},
	StageWaitingArrival: {"qty_check", "quality_check", "photolith_final_check"},
	StageCustomization:  {"qty_final_check", "quality_mockup_check", "packaging_check"},
}

// Per-stage attachment guards. Stages absent here require none.
var stageAttachments = map[string][]AttachmentKind{
	StagePhotolith: {AttachmentPhotolith},
	StageDelivery:  {AttachmentFinalProduct, AttachmentClientSignature},
}

// ValidStage reports whether s is a known kanban stage.
func ValidStage(s string) bool {
	_, ok := stageStatus[s]
	return ok
}

// StatusForStage derives the coarse status for a stage. Unknown stages are
// treated as pending so a derived status always exists.
func StatusForStage(stage string) string {
	if st, ok := stageStatus[stage]; ok {
		return st
	}
	return StatusPending
}

// NextStage returns the forward successor of stage. ok is false for
// finalized, returned and unknown stages.
func NextStage(stage string) (string, bool) {
	for i, s := range stageOrder {
		if s == stage && i+1 < len(stageOrder) {
			return stageOrder[i+1], true
		}
	}
	return "", false
}

// StageChecklistKeys returns the required checklist keys for a stage, nil if
// the stage has no checklist.
func StageChecklistKeys(stage string) []string {
	return stageChecklists[stage]
}

// StageAttachmentKinds returns the attachments a stage's forward guard
// requires, nil if none.
func StageAttachmentKinds(stage string) []AttachmentKind {
	return stageAttachments[stage]
}

// ChecklistComplete reports whether every required key maps to true.
func ChecklistComplete(items map[string]bool, required []string) bool {
	for _, key := range required {
		if !items[key] {
			return false
		}
	}
	return true
}

// AttachmentRef returns the stored reference for a kind, empty if absent.
func (o *Order) AttachmentRef(kind AttachmentKind) string {
	switch kind {
	case AttachmentPhotolith:
		return o.PhotolithURL
	case AttachmentFinalProduct:
		return o.FinalProductURL
	case AttachmentClientSignature:
		return o.ClientSignatureURL
	case AttachmentPurchaseOrder:
		return o.PDFURL
	case AttachmentMockup:
		return o.ImageURL
	}
	return ""
}

// SetAttachmentRef writes the reference for a kind. Re-attaching replaces the
// previous reference.
func (o *Order) SetAttachmentRef(kind AttachmentKind, ref string) {
	switch kind {
	case AttachmentPhotolith:
		o.PhotolithURL = ref
	case AttachmentFinalProduct:
		o.FinalProductURL = ref
	case AttachmentClientSignature:
		o.ClientSignatureURL = ref
	case AttachmentPurchaseOrder:
		o.PDFURL = ref
	case AttachmentMockup:
		o.ImageURL = ref
	}
}

// MissingAttachments lists the attachment kinds a stage's guard requires that
// the order does not yet have.
func (o *Order) MissingAttachments(stage string) []AttachmentKind {
	var missing []AttachmentKind
	for _, kind := range StageAttachmentKinds(stage) {
		if o.AttachmentRef(kind) == "" {
			missing = append(missing, kind)
		}
	}
	return missing
}

// MissingChecklistKeys lists the required keys for a stage that are not true
// in the pending (unsaved) checklist input.
func (o *Order) MissingChecklistKeys(stage string, items map[string]bool) []string {
	var missing []string
	for _, key := range StageChecklistKeys(stage) {
		if !items[key] {
			missing = append(missing, key)
		}
	}
	return missing
}

// CanAdvance reports whether the order may leave its current stage forward,
// given the in-progress checklist input. Pure: derives only from the order
// state and the supplied items.
func (o *Order) CanAdvance(items map[string]bool) bool {
	if _, ok := NextStage(o.KanbanStage); !ok {
		return false
	}
	if !ChecklistComplete(items, StageChecklistKeys(o.KanbanStage)) {
		return false
	}
	return len(o.MissingAttachments(o.KanbanStage)) == 0
}

// ValidAttachmentKind reports whether k names a known attachment kind.
func ValidAttachmentKind(k string) bool {
	switch AttachmentKind(k) {
	case AttachmentPhotolith, AttachmentFinalProduct, AttachmentClientSignature,
		AttachmentPurchaseOrder, AttachmentMockup:
		return true
	}
	return false
}
