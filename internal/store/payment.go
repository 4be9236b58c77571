package store

import (
	"strings"
	"time"

	"rental-service/internal/model"
	"rental-service/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// NewPayment is the validated input for a rent payment submission
type NewPayment struct {
	Month         string
	Amount        decimal.Decimal
	PaymentDate   time.Time
	TransactionID string
	PaymentProof  *string
}

// Validate checks the rules every stored payment must satisfy
func (n NewPayment) Validate() error {
	fields := fieldErrors{}
	if !model.IsMonth(n.Month) {
		fields.add("month", "must be a month name")
	}
	if !n.Amount.IsPositive() {
		fields.add("amount", "must be greater than zero")
	}
	if n.PaymentDate.IsZero() {
		fields.add("payment_date", "is required")
	}
	if strings.TrimSpace(n.TransactionID) == "" {
		fields.add("transaction_id", "is required")
	}
	return fields.err()
}

// PaymentFilter selects payments by status; the zero value matches all
type PaymentFilter string

const (
	PaymentsAll      PaymentFilter = ""
	PaymentsPending  PaymentFilter = PaymentFilter(model.PaymentPending)
	PaymentsApproved PaymentFilter = PaymentFilter(model.PaymentApproved)
)

// ParsePaymentFilter maps a query value to a filter; unknown values mean all
func ParsePaymentFilter(v string) PaymentFilter {
	switch PaymentFilter(v) {
	case PaymentsPending, PaymentsApproved:
		return PaymentFilter(v)
	default:
		return PaymentsAll
	}
}

// SubmitPayment records a payment for the tenant. New payments are always pending.
func (s *Store) SubmitPayment(tenantID uint, in NewPayment) (*model.Payment, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetTenant(tenantID); err != nil {
		return nil, err
	}

	payment := model.Payment{
		TenantID:      tenantID,
		Month:         in.Month,
		Amount:        in.Amount,
		PaymentDate:   datatypes.Date(dateOnly(in.PaymentDate)),
		TransactionID: strings.TrimSpace(in.TransactionID),
		PaymentProof:  in.PaymentProof,
		Status:        model.PaymentPending,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.Create(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// ApprovePayment moves a payment to approved. Approving twice is a no-op.
func (s *Store) ApprovePayment(id uint) (*model.Payment, error) {
	var payment model.Payment
	if err := s.db.First(&payment, id).Error; err != nil {
		return nil, notFound(err)
	}
	if payment.IsApproved() {
		return &payment, nil
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := s.db.Model(&payment).Update("status", model.PaymentApproved).Error; err != nil {
		return nil, err
	}
	payment.Status = model.PaymentApproved
	return &payment, nil
}

// ListPayments returns payments matching filter with their tenants, newest first
func (s *Store) ListPayments(filter PaymentFilter) ([]model.Payment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.Preload("Tenant")
	if filter != PaymentsAll {
		q = q.Where("status = ?", string(filter))
	}

	var payments []model.Payment
	if err := q.Order("created_at DESC").Order("id DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// TenantPayments returns a tenant's payments, newest first. limit <= 0 means no limit.
func (s *Store) TenantPayments(tenantID uint, limit int) ([]model.Payment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.Where("tenant_id = ?", tenantID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var payments []model.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// PaymentsForPeriod returns payments labelled with month whose payment date
// falls within [from, to], both treated as calendar dates.
func (s *Store) PaymentsForPeriod(month string, from, to time.Time) ([]model.Payment, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var payments []model.Payment
	err := s.db.Where("month = ?", month).
		Where("payment_date BETWEEN ? AND ?", datatypes.Date(dateOnly(from)), datatypes.Date(dateOnly(to))).
		Order("created_at DESC").Order("id DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
