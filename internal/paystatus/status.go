package paystatus

import (
	"fmt"
	"time"

	"rental-service/internal/model"
)

// Label is the status shown for a tenant in a period
type Label string

const (
	LabelPaid    Label = "Paid"
	LabelPending Label = "Pending Approval"
	LabelNotPaid Label = "Not Paid"
)

// Row pairs a tenant with the payment that decided its label, if any
type Row struct {
	Tenant  model.Tenant
	Payment *model.Payment
	Label   Label
}

// Report splits tenants into those who paid the period and everyone else.
// Both lists keep the order of the tenants passed in.
type Report struct {
	Period Period
	Paid   []Row
	Unpaid []Row
}

// Resolve reduces the payments of a period to one status per tenant.
//
// For each tenant the winning payment is the maximum by status priority,
// then created_at, then id. The result does not depend on payment order.
// Payments outside the period or for unknown tenants are ignored.
func Resolve(period Period, tenants []model.Tenant, payments []model.Payment) Report {
	best := make(map[uint]*model.Payment, len(tenants))
	for i := range payments {
		p := &payments[i]
		if !period.Contains(p) {
			continue
		}
		if cur, ok := best[p.TenantID]; !ok || outranks(p, cur) {
			best[p.TenantID] = p
		}
	}

	report := Report{
		Period: period,
		Paid:   []Row{},
		Unpaid: []Row{},
	}
	for _, tenant := range tenants {
		payment := best[tenant.ID]
		switch {
		case payment != nil && payment.IsApproved():
			report.Paid = append(report.Paid, Row{Tenant: tenant, Payment: payment, Label: LabelPaid})
		case payment != nil && payment.Status == model.PaymentPending:
			report.Unpaid = append(report.Unpaid, Row{Tenant: tenant, Payment: payment, Label: LabelPending})
		default:
			report.Unpaid = append(report.Unpaid, Row{Tenant: tenant, Label: LabelNotPaid})
		}
	}
	return report
}

func outranks(a, b *model.Payment) bool {
	if pa, pb := a.Status.Priority(), b.Status.Priority(); pa != pb {
		return pa > pb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Source provides the rows a report is computed from
type Source interface {
	TenantsJoinedBy(t time.Time) ([]model.Tenant, error)
	PaymentsForPeriod(month string, from, to time.Time) ([]model.Payment, error)
}

// Aggregator computes monthly payment status reports
type Aggregator struct {
	src Source
}

// NewAggregator creates an Aggregator reading from src
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// Report computes the status of every tenant who had joined by the end of period
func (a *Aggregator) Report(period Period) (*Report, error) {
	tenants, err := a.src.TenantsJoinedBy(period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	payments, err := a.src.PaymentsForPeriod(period.Name(), period.Start(), period.LastDay())
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	report := Resolve(period, tenants, payments)
	return &report, nil
}
