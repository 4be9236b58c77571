package store

import (
	"time"

	"rental-service/internal/model"
	"rental-service/prometheus"
)

// AdminCounts are the administrator dashboard counters
type AdminCounts struct {
	Tenants            int64
	Payments           int64
	PendingPayments    int64
	ApprovedPayments   int64
	Complaints         int64
	PendingComplaints  int64
	ResolvedComplaints int64
}

// AdminCounts counts tenants, payments and complaints by status
func (s *Store) AdminCounts() (AdminCounts, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var c AdminCounts
	counts := []struct {
		table interface{}
		where map[string]interface{}
		dst   *int64
	}{
		{&model.Tenant{}, nil, &c.Tenants},
		{&model.Payment{}, nil, &c.Payments},
		{&model.Payment{}, map[string]interface{}{"status": model.PaymentPending}, &c.PendingPayments},
		{&model.Payment{}, map[string]interface{}{"status": model.PaymentApproved}, &c.ApprovedPayments},
		{&model.Complaint{}, nil, &c.Complaints},
		{&model.Complaint{}, map[string]interface{}{"status": model.ComplaintPending}, &c.PendingComplaints},
		{&model.Complaint{}, map[string]interface{}{"status": model.ComplaintResolved}, &c.ResolvedComplaints},
	}
	for _, q := range counts {
		tx := s.db.Model(q.table)
		if q.where != nil {
			tx = tx.Where(q.where)
		}
		if err := tx.Count(q.dst).Error; err != nil {
			return AdminCounts{}, err
		}
	}
	return c, nil
}

// TenantSummary is what a tenant sees on their dashboard
type TenantSummary struct {
	Tenant            *model.Tenant
	RecentPayments    []model.Payment
	PendingPayments   int64
	PendingComplaints int64
}

// RecentPaymentsLimit is the number of payments shown on the tenant dashboard
const RecentPaymentsLimit = 5

// TenantSummary loads the tenant dashboard for tenantID
func (s *Store) TenantSummary(tenantID uint) (*TenantSummary, error) {
	tenant, err := s.GetTenant(tenantID)
	if err != nil {
		return nil, err
	}
	recent, err := s.TenantPayments(tenantID, RecentPaymentsLimit)
	if err != nil {
		return nil, err
	}

	summary := &TenantSummary{Tenant: tenant, RecentPayments: recent}
	if err := s.db.Model(&model.Payment{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.PaymentPending).
		Count(&summary.PendingPayments).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Complaint{}).
		Where("tenant_id = ? AND status = ?", tenantID, model.ComplaintPending).
		Count(&summary.PendingComplaints).Error; err != nil {
		return nil, err
	}
	return summary, nil
}
