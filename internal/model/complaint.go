package model

import "time"

// ComplaintStatus is the lifecycle state of a complaint
type ComplaintStatus string

const (
	ComplaintPending  ComplaintStatus = "pending"
	ComplaintResolved ComplaintStatus = "resolved"
)

// Complaint represents an issue raised by a tenant
type Complaint struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	TenantID    uint            `json:"tenant_id" gorm:"index;not null"`
	Subject     string          `json:"subject" gorm:"type:varchar(200);not null"`
	Description string          `json:"description" gorm:"type:text;not null"`
	Status      ComplaintStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt   time.Time       `json:"created_at" gorm:"index"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`

	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE"`
}

// IsResolved reports whether the complaint was closed by an administrator
func (c *Complaint) IsResolved() bool {
	return c.Status == ComplaintResolved
}
