package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PaymentStatus is the approval state of a rent payment
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
)

// Priority orders statuses for monthly status resolution, approved first.
func (s PaymentStatus) Priority() int {
	switch s {
	case PaymentApproved:
		return 2
	case PaymentPending:
		return 1
	default:
		return 0
	}
}

// Payment represents a rent payment submitted by a tenant
// It is created pending and only moves to approved through an administrator.
type Payment struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	TenantID      uint            `json:"tenant_id" gorm:"index;not null"`
	Month         string          `json:"month" gorm:"type:varchar(20);not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PaymentDate   datatypes.Date  `json:"payment_date" gorm:"type:date;not null;index"`
	TransactionID string          `json:"transaction_id" gorm:"type:varchar(100);not null"`
	PaymentProof  *string         `json:"payment_proof,omitempty" gorm:"type:varchar(255)"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// IsApproved reports whether an administrator approved the payment
func (p *Payment) IsApproved() bool {
	return p.Status == PaymentApproved
}

// Date returns the payment date as a time.Time
func (p *Payment) Date() time.Time {
	return time.Time(p.PaymentDate)
}
