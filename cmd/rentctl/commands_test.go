package main

import (
	"bytes"
	"fmt"
	"testing"
	"time"

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

func run(t *testing.T, s *store.Store, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(func() (*store.Store, error) { return s, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	out, err := run(t, newTestStore(t), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Schema is up to date.")
}

func TestCreateAdminAndSetPassword(t *testing.T) {
	s := newTestStore(t)

	out, err := run(t, s, "create-admin", "--username", "ops", "--password", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "Administrator ops created")

	_, err = run(t, s, "create-admin", "--username", "ops", "--password", "again")
	assert.EqualError(t, err, `administrator "ops" already exists`)

	_, err = run(t, s, "set-admin-password", "--username", "ops", "--password", "second")
	require.NoError(t, err)

	_, err = s.AuthenticateAdmin("ops", "first")
	assert.ErrorIs(t, err, store.ErrInvalidCredentials)
	_, err = s.AuthenticateAdmin("ops", "second")
	assert.NoError(t, err)

	_, err = run(t, s, "set-admin-password", "--username", "ghost", "--password", "x")
	assert.EqualError(t, err, `administrator "ghost" does not exist`)

	_, err = run(t, s, "create-admin", "--username", "ops")
	assert.Error(t, err, "password flag is required")
}

func TestMonthStatus(t *testing.T) {
	s := newTestStore(t)

	joined := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	tenant := func(name, email, room string) uint {
		tn, err := s.CreateTenant(store.NewTenant{
			Name: name, Email: email, Phone: "1", RoomNumber: room,
			MonthlyRent: decimal.NewFromInt(1000), Password: "pw",
		})
		require.NoError(t, err)
		require.NoError(t, s.DB().Model(tn).Update("created_at", joined).Error)
		return tn.ID
	}
	alice := tenant("Alice", "alice@example.com", "101")
	tenant("Bob", "bob@example.com", "102")

	payment, err := s.SubmitPayment(alice, store.NewPayment{
		Month: "March", Amount: decimal.NewFromInt(1000),
		PaymentDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), TransactionID: "TX-1",
	})
	require.NoError(t, err)
	_, err = s.ApprovePayment(payment.ID)
	require.NoError(t, err)

	out, err := run(t, s, "month-status", "--month", "March", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "March 2024: 1 paid, 1 not paid")
	assert.Regexp(t, `101\s+Alice\s+Paid\s+1000.00\s+2024-03-05`, out)
	assert.Regexp(t, `102\s+Bob\s+Not Paid\s+-\s+-`, out)

	_, err = run(t, s, "month-status", "--month", "march")
	assert.Error(t, err)
	_, err = run(t, s, "month-status", "--month", "March", "--year", "-3")
	assert.Error(t, err)
}
