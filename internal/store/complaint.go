package store

import (
	"strings"
	"time"

	"rental-service/internal/model"
	"rental-service/prometheus"
)

// ComplaintFilter selects complaints by status; the zero value matches all
type ComplaintFilter string

const (
	ComplaintsAll      ComplaintFilter = ""
	ComplaintsPending  ComplaintFilter = ComplaintFilter(model.ComplaintPending)
	ComplaintsResolved ComplaintFilter = ComplaintFilter(model.ComplaintResolved)
)

// ParseComplaintFilter maps a query value to a filter; unknown values mean all
func ParseComplaintFilter(v string) ComplaintFilter {
	switch ComplaintFilter(v) {
	case ComplaintsPending, ComplaintsResolved:
		return ComplaintFilter(v)
	default:
		return ComplaintsAll
	}
}

// RaiseComplaint records a pending complaint for the tenant
func (s *Store) RaiseComplaint(tenantID uint, subject, description string) (*model.Complaint, error) {
	subject, description = strings.TrimSpace(subject), strings.TrimSpace(description)

	fields := fieldErrors{}
	if subject == "" {
		fields.add("subject", "cannot be empty")
	}
	if description == "" {
		fields.add("description", "cannot be empty")
	}
	if err := fields.err(); err != nil {
		return nil, err
	}
	if _, err := s.GetTenant(tenantID); err != nil {
		return nil, err
	}

	complaint := model.Complaint{
		TenantID:    tenantID,
		Subject:     subject,
		Description: description,
		Status:      model.ComplaintPending,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := s.db.Create(&complaint).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ResolveComplaint marks a pending complaint resolved at now.
// A complaint that is already resolved is left untouched and ErrAlreadyResolved is returned.
func (s *Store) ResolveComplaint(id uint, now time.Time) (*model.Complaint, error) {
	resolvedAt := now.UTC()

	defer prometheus.TrackDBOperation("update")(time.Now())
	res := s.db.Model(&model.Complaint{}).
		Where("id = ? AND status = ?", id, model.ComplaintPending).
		Updates(map[string]interface{}{
			"status":      model.ComplaintResolved,
			"resolved_at": resolvedAt,
		})
	if res.Error != nil {
		return nil, res.Error
	}

	var complaint model.Complaint
	if err := s.db.First(&complaint, id).Error; err != nil {
		return nil, notFound(err)
	}
	if res.RowsAffected == 0 {
		return &complaint, ErrAlreadyResolved
	}
	return &complaint, nil
}

// ListComplaints returns complaints matching filter with their tenants, newest first
func (s *Store) ListComplaints(filter ComplaintFilter) ([]model.Complaint, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	q := s.db.Preload("Tenant")
	if filter != ComplaintsAll {
		q = q.Where("status = ?", string(filter))
	}

	var complaints []model.Complaint
	if err := q.Order("created_at DESC").Order("id DESC").Find(&complaints).Error; err != nil {
		return nil, err
	}
	return complaints, nil
}

// TenantComplaints returns a tenant's complaints, newest first
func (s *Store) TenantComplaints(tenantID uint) ([]model.Complaint, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var complaints []model.Complaint
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").Order("id DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}
