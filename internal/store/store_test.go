package store_test

import (
	"fmt"
	"testing"
	"time"

	"rental-service/internal/model"
	"rental-service/internal/store"
	"rental-service/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	return store.New(db)
}

func newTenantInput(name, email string) store.NewTenant {
	return store.NewTenant{
		Name:        name,
		Email:       email,
		Phone:       "0812345678",
		RoomNumber:  "101",
		MonthlyRent: decimal.NewFromInt(1200),
		Password:    "secret",
	}
}

func mustCreateTenant(t *testing.T, s *store.Store, name, email string) *model.Tenant {
	t.Helper()
	tenant, err := s.CreateTenant(newTenantInput(name, email))
	require.NoError(t, err)
	return tenant
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateTenant(t *testing.T) {
	s := newTestStore(t)

	in := newTenantInput("Alice", "  Alice@Example.com ")
	in.DepositAmount = decimal.NewNullDecimal(decimal.RequireFromString("2400.50"))
	paid := date(2024, time.February, 28)
	in.DepositPaidDate = &paid

	tenant, err := s.CreateTenant(in)
	require.NoError(t, err)
	assert.NotZero(t, tenant.ID)
	assert.Equal(t, "alice@example.com", tenant.Email)
	assert.NotEqual(t, "secret", tenant.PasswordHash)

	got, err := s.GetTenant(tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.MonthlyRent.Equal(decimal.NewFromInt(1200)))
	require.True(t, got.DepositAmount.Valid)
	assert.True(t, got.DepositAmount.Decimal.Equal(decimal.RequireFromString("2400.5")))
	require.NotNil(t, got.DepositPaidDate)
	assert.True(t, paid.Equal(time.Time(*got.DepositPaidDate)))
	assert.True(t, got.CheckPassword("secret"))
}

func TestCreateTenantRejectsDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	mustCreateTenant(t, s, "Alice", "alice@example.com")

	_, err := s.CreateTenant(newTenantInput("Alice Again", "ALICE@example.com"))
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	tenants, err := s.ListTenants()
	require.NoError(t, err)
	assert.Len(t, tenants, 1)
}

func TestCreateTenantValidation(t *testing.T) {
	s := newTestStore(t)

	in := newTenantInput("", "bob@example.com")
	in.MonthlyRent = decimal.Zero
	in.Password = ""

	_, err := s.CreateTenant(in)
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "monthly_rent")
	assert.Contains(t, verr.Fields, "password")
	assert.NotContains(t, verr.Fields, "email")
}

func TestAuthenticateTenant(t *testing.T) {
	s := newTestStore(t)
	created := mustCreateTenant(t, s, "Alice", "alice@example.com")

	tenant, err := s.AuthenticateTenant("alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, tenant.ID)

	_, err = s.AuthenticateTenant("alice@example.com", "wrong")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)

	_, err = s.AuthenticateTenant("nobody@example.com", "secret")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
}

func TestAdminAccounts(t *testing.T) {
	s := newTestStore(t)

	created, err := s.EnsureAdmin("admin", "admin123")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin("admin", "other")
	require.NoError(t, err)
	assert.False(t, created, "existing admin keeps its password")

	_, err = s.AuthenticateAdmin("admin", "admin123")
	require.NoError(t, err)
	_, err = s.AuthenticateAdmin("admin", "other")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
	_, err = s.AuthenticateAdmin("root", "admin123")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)

	_, err = s.CreateAdmin("admin", "x")
	assert.ErrorIs(t, err, store.ErrUsernameTaken)

	require.NoError(t, s.SetAdminPassword("admin", "rotated"))
	_, err = s.AuthenticateAdmin("admin", "rotated")
	assert.NoError(t, err)

	assert.ErrorIs(t, s.SetAdminPassword("root", "x"), store.ErrNotFound)
}

func TestListTenantsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	first := mustCreateTenant(t, s, "Zed", "zed@example.com")
	second := mustCreateTenant(t, s, "Amy", "amy@example.com")

	tenants, err := s.ListTenants()
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, second.ID, tenants[0].ID)
	assert.Equal(t, first.ID, tenants[1].ID)
}

func TestTenantsJoinedBy(t *testing.T) {
	s := newTestStore(t)
	bob := mustCreateTenant(t, s, "Bob", "bob@example.com")
	amy := mustCreateTenant(t, s, "Amy", "amy@example.com")
	late := mustCreateTenant(t, s, "Cat", "cat@example.com")

	cutoff := date(2024, time.March, 31)
	require.NoError(t, s.DB().Model(&model.Tenant{}).Where("id IN ?", []uint{bob.ID, amy.ID}).
		Update("created_at", date(2024, time.January, 10)).Error)
	require.NoError(t, s.DB().Model(late).Update("created_at", date(2024, time.April, 1)).Error)

	tenants, err := s.TenantsJoinedBy(cutoff)
	require.NoError(t, err)
	require.Len(t, tenants, 2)
	assert.Equal(t, "Amy", tenants[0].Name)
	assert.Equal(t, "Bob", tenants[1].Name)
}

func TestDeleteTenantCascades(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")
	bob := mustCreateTenant(t, s, "Bob", "bob@example.com")

	proof := "uploads/payment_proofs/payment_abc.png"
	_, err := s.SubmitPayment(alice.ID, store.NewPayment{
		Month: "March", Amount: decimal.NewFromInt(1200), PaymentDate: date(2024, time.March, 5),
		TransactionID: "TX1", PaymentProof: &proof,
	})
	require.NoError(t, err)
	_, err = s.RaiseComplaint(alice.ID, "Leak", "Kitchen sink leaks")
	require.NoError(t, err)
	_, err = s.RaiseComplaint(bob.ID, "Noise", "Loud neighbours")
	require.NoError(t, err)

	deleted, err := s.DeleteTenant(alice.ID)
	require.NoError(t, err)
	require.Len(t, deleted.Payments, 1)
	assert.Equal(t, &proof, deleted.Payments[0].PaymentProof)

	_, err = s.GetTenant(alice.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	payments, err := s.ListPayments(store.PaymentsAll)
	require.NoError(t, err)
	assert.Empty(t, payments)

	complaints, err := s.ListComplaints(store.ComplaintsAll)
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, bob.ID, complaints[0].TenantID)

	_, err = s.DeleteTenant(alice.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPaymentLifecycle(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	payment, err := s.SubmitPayment(alice.ID, store.NewPayment{
		Month: "March", Amount: decimal.RequireFromString("1200.00"), PaymentDate: date(2024, time.March, 5),
		TransactionID: " TX1 ",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, "TX1", payment.TransactionID)

	pending, err := s.ListPayments(store.PaymentsPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NotNil(t, pending[0].Tenant)
	assert.Equal(t, "Alice", pending[0].Tenant.Name)

	approved, err := s.ApprovePayment(payment.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved())

	again, err := s.ApprovePayment(payment.ID)
	require.NoError(t, err)
	assert.True(t, again.IsApproved(), "approval is never reverted")

	pending, err = s.ListPayments(store.PaymentsPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := s.ListPayments(store.ParsePaymentFilter("bogus"))
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.ApprovePayment(9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmitPaymentValidation(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	_, err := s.SubmitPayment(alice.ID, store.NewPayment{
		Month: "Marchember", Amount: decimal.NewFromInt(-5), TransactionID: "",
	})
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 4)

	_, err = s.SubmitPayment(9999, store.NewPayment{
		Month: "March", Amount: decimal.NewFromInt(1), PaymentDate: date(2024, time.March, 1), TransactionID: "TX",
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTenantPaymentsLimit(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	var last *model.Payment
	for i := 0; i < 7; i++ {
		p, err := s.SubmitPayment(alice.ID, store.NewPayment{
			Month: "March", Amount: decimal.NewFromInt(100), PaymentDate: date(2024, time.March, 1+i),
			TransactionID: fmt.Sprintf("TX%d", i),
		})
		require.NoError(t, err)
		last = p
	}

	recent, err := s.TenantPayments(alice.ID, store.RecentPaymentsLimit)
	require.NoError(t, err)
	require.Len(t, recent, store.RecentPaymentsLimit)
	assert.Equal(t, last.ID, recent[0].ID)

	all, err := s.TenantPayments(alice.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestPaymentsForPeriodIncludesLastDay(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	submit := func(month string, d time.Time) {
		_, err := s.SubmitPayment(alice.ID, store.NewPayment{
			Month: month, Amount: decimal.NewFromInt(100), PaymentDate: d, TransactionID: "TX",
		})
		require.NoError(t, err)
	}
	submit("March", date(2024, time.March, 1))
	submit("March", date(2024, time.March, 31))
	submit("March", date(2024, time.April, 1))
	submit("April", date(2024, time.March, 15))

	payments, err := s.PaymentsForPeriod("March", date(2024, time.March, 1), date(2024, time.March, 31))
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestComplaintLifecycle(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	complaint, err := s.RaiseComplaint(alice.ID, "  Leak ", "\tKitchen sink leaks\n")
	require.NoError(t, err)
	assert.Equal(t, "Leak", complaint.Subject)
	assert.Equal(t, "Kitchen sink leaks", complaint.Description)
	assert.Equal(t, model.ComplaintPending, complaint.Status)
	assert.Nil(t, complaint.ResolvedAt)

	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	resolved, err := s.ResolveComplaint(complaint.ID, now)
	require.NoError(t, err)
	assert.True(t, resolved.IsResolved())
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, now.Equal(*resolved.ResolvedAt))

	again, err := s.ResolveComplaint(complaint.ID, now.Add(time.Hour))
	assert.ErrorIs(t, err, store.ErrAlreadyResolved)
	require.NotNil(t, again.ResolvedAt)
	assert.True(t, now.Equal(*again.ResolvedAt), "resolved_at must not change")

	_, err = s.ResolveComplaint(9999, now)
	assert.ErrorIs(t, err, store.ErrNotFound)

	pending, err := s.ListComplaints(store.ComplaintsPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	done, err := s.ListComplaints(store.ParseComplaintFilter("resolved"))
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.NotNil(t, done[0].Tenant)
	assert.Equal(t, alice.ID, done[0].Tenant.ID)
}

func TestRaiseComplaintRejectsBlank(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")

	_, err := s.RaiseComplaint(alice.ID, "   ", "details")
	var verr *store.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "subject")

	complaints, err := s.TenantComplaints(alice.ID)
	require.NoError(t, err)
	assert.Empty(t, complaints)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	alice := mustCreateTenant(t, s, "Alice", "alice@example.com")
	mustCreateTenant(t, s, "Bob", "bob@example.com")

	p, err := s.SubmitPayment(alice.ID, store.NewPayment{
		Month: "March", Amount: decimal.NewFromInt(100), PaymentDate: date(2024, time.March, 1), TransactionID: "TX1",
	})
	require.NoError(t, err)
	_, err = s.SubmitPayment(alice.ID, store.NewPayment{
		Month: "April", Amount: decimal.NewFromInt(100), PaymentDate: date(2024, time.April, 1), TransactionID: "TX2",
	})
	require.NoError(t, err)
	_, err = s.ApprovePayment(p.ID)
	require.NoError(t, err)
	_, err = s.RaiseComplaint(alice.ID, "Leak", "Sink")
	require.NoError(t, err)

	counts, err := s.AdminCounts()
	require.NoError(t, err)
	assert.Equal(t, store.AdminCounts{
		Tenants:           2,
		Payments:          2,
		PendingPayments:   1,
		ApprovedPayments:  1,
		Complaints:        1,
		PendingComplaints: 1,
	}, counts)

	summary, err := s.TenantSummary(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", summary.Tenant.Name)
	assert.Len(t, summary.RecentPayments, 2)
	assert.EqualValues(t, 1, summary.PendingPayments)
	assert.EqualValues(t, 1, summary.PendingComplaints)

	_, err = s.TenantSummary(9999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestValidationErrorMessage(t *testing.T) {
	err := &store.ValidationError{Fields: map[string]string{"b": "is required", "a": "is bad"}}
	assert.Equal(t, "validation failed: a: is bad; b: is required", err.Error())
}
