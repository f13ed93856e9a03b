package entity

import "time"

// Status log actions.
const (
	LogActionAdvance  = "advance"
	LogActionReturn   = "return"
	LogActionResubmit = "resubmit"
)

// StatusLog is one append-only record per workflow transition. It is never
// updated or deleted and has its own lifecycle independent of the order.
// ChangedByID is the join key; ChangedByName is display text only.
type StatusLog struct {
	ID      string `json:"id" gorm:"primaryKey;size:32"`
	OrderID string `json:"order_id" gorm:"size:32;not null;index"`

	Action    string `json:"action" gorm:"size:20;not null"`
	FromStage string `json:"from_stage" gorm:"size:30"`
	ToStage   string `json:"to_stage" gorm:"size:30"`

	ChangedByID   string `json:"changed_by_id" gorm:"size:32;index"`
	ChangedByName string `json:"changed_by_name" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
}

func (StatusLog) TableName() string {
	return "status_logs"
}
