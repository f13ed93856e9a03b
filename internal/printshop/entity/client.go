package entity

import "time"

// Client is the ordering party. The workflow core only reads it, for display
// text and as the notification target when an order is returned.
type Client struct {
	ID    string `json:"id" gorm:"primaryKey;size:32"`
	Name  string `json:"name" gorm:"size:200;not null"`
	Email string `json:"email" gorm:"size:200"`
	Phone string `json:"phone" gorm:"size:50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}
