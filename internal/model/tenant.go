package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Tenant represents a resident renting a room
// Payments and complaints are owned exclusively and go away with the tenant.
type Tenant struct {
	ID              uint                `json:"id" gorm:"primaryKey"`
	Name            string              `json:"name" gorm:"type:varchar(100);not null;index"`
	Email           string              `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone           string              `json:"phone" gorm:"type:varchar(20);not null"`
	RoomNumber      string              `json:"room_number" gorm:"type:varchar(10);not null"`
	MonthlyRent     decimal.Decimal     `json:"monthly_rent" gorm:"type:decimal(12,2);not null"`
	PasswordHash    string              `json:"-" gorm:"type:varchar(255);not null"`
	ProfilePhoto    *string             `json:"profile_photo,omitempty" gorm:"type:varchar(255)"`
	IDProofPhoto    *string             `json:"id_proof_photo,omitempty" gorm:"type:varchar(255)"`
	DepositAmount   decimal.NullDecimal `json:"deposit_amount" gorm:"type:decimal(12,2)"`
	DepositPaidDate *datatypes.Date     `json:"deposit_paid_date,omitempty" gorm:"type:date"`
	CreatedAt       time.Time           `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time           `json:"updated_at"`

	Payments   []Payment   `json:"payments,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
	Complaints []Complaint `json:"complaints,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// SetPassword hashes and stores the password
func (t *Tenant) SetPassword(plaintext string) error {
	hashed, err := hashPassword(plaintext)
	if err != nil {
		return err
	}
	t.PasswordHash = hashed
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash
func (t *Tenant) CheckPassword(plaintext string) bool {
	return checkPassword(t.PasswordHash, plaintext)
}
