package store

import (
	"errors"
	"strings"
	"time"

	"rental-service/internal/model"
	"rental-service/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewTenant is the validated input for onboarding a tenant
type NewTenant struct {
	Name            string
	Email           string
	Phone           string
	RoomNumber      string
	MonthlyRent     decimal.Decimal
	Password        string
	ProfilePhoto    *string
	IDProofPhoto    *string
	DepositAmount   decimal.NullDecimal
	DepositPaidDate *time.Time
}

func (n *NewTenant) normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = normalizeEmail(n.Email)
	n.Phone = strings.TrimSpace(n.Phone)
	n.RoomNumber = strings.TrimSpace(n.RoomNumber)
}

// Validate checks the rules every stored tenant must satisfy
func (n NewTenant) Validate() error {
	fields := fieldErrors{}
	if n.Name == "" {
		fields.add("name", "is required")
	}
	if n.Email == "" {
		fields.add("email", "is required")
	}
	if n.Phone == "" {
		fields.add("phone", "is required")
	}
	if n.RoomNumber == "" {
		fields.add("room_number", "is required")
	}
	if n.Password == "" {
		fields.add("password", "is required")
	}
	if !n.MonthlyRent.IsPositive() {
		fields.add("monthly_rent", "must be greater than zero")
	}
	if n.DepositAmount.Valid && n.DepositAmount.Decimal.IsNegative() {
		fields.add("deposit_amount", "must not be negative")
	}
	return fields.err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateTenant stores a new tenant with a hashed password.
// Returns ErrEmailTaken when another tenant already uses the email.
func (s *Store) CreateTenant(in NewTenant) (*model.Tenant, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tenant := model.Tenant{
		Name:          in.Name,
		Email:         in.Email,
		Phone:         in.Phone,
		RoomNumber:    in.RoomNumber,
		MonthlyRent:   in.MonthlyRent,
		ProfilePhoto:  in.ProfilePhoto,
		IDProofPhoto:  in.IDProofPhoto,
		DepositAmount: in.DepositAmount,
	}
	if in.DepositPaidDate != nil {
		d := datatypes.Date(*in.DepositPaidDate)
		tenant.DepositPaidDate = &d
	}
	if err := tenant.SetPassword(in.Password); err != nil {
		return nil, err
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Tenant{}).Where("email = ?", tenant.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}
		return tx.Create(&tenant).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// AuthenticateTenant returns the tenant for valid email and password
func (s *Store) AuthenticateTenant(email, password string) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !tenant.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return &tenant, nil
}

// GetTenant loads a tenant by id
func (s *Store) GetTenant(id uint) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenant model.Tenant
	if err := s.db.First(&tenant, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &tenant, nil
}

// ListTenants returns all tenants, most recently onboarded first
func (s *Store) ListTenants() ([]model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenants []model.Tenant
	if err := s.db.Order("created_at DESC").Order("id DESC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// TenantsJoinedBy returns tenants created at or before t, ordered by name
func (s *Store) TenantsJoinedBy(t time.Time) ([]model.Tenant, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var tenants []model.Tenant
	err := s.db.Where("created_at <= ?", t.UTC()).
		Order("name ASC").Order("id ASC").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// DeleteTenant removes a tenant together with its payments and complaints.
// The returned tenant carries the deleted payments so attachments can be cleaned up.
func (s *Store) DeleteTenant(id uint) (*model.Tenant, error) {
	defer prometheus.TrackDBOperation("delete")(time.Now())

	var tenant model.Tenant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Payments").First(&tenant, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", id).Delete(&model.Complaint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Tenant{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}
