package model

import "time"

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// PaymentTransaction is an audit row recorded for every payment attempt made
// while creating an additional business profile, successful or not.
type PaymentTransaction struct {
	ID          string            `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      string            `gorm:"type:varchar(64);not null;index" json:"user_id"`
	OrderID     string            `gorm:"type:varchar(64);index" json:"order_id"`
	PaymentID   string            `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	Amount      int64             `gorm:"not null" json:"amount"`
	Currency    string            `gorm:"type:varchar(8);not null" json:"currency"`
	Status      TransactionStatus `gorm:"type:varchar(16);not null" json:"status"`
	Description string            `gorm:"type:text" json:"description,omitempty"`
	DraftToken  int64             `json:"draft_token,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
