package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, owner ownership.Key) *ledger.Record {
	t.Helper()
	r, err := ledger.NewRecord(ledger.KindPayable, owner, ledger.Details{
		Year:          "2025",
		Month:         "01",
		Day:           "15",
		Hour:          "10:00",
		Amount:        decimal.RequireFromString("120.50"),
		Description:   "Internet",
		InvoiceNumber: "INV-1",
		PaymentMethod: ledger.PaymentMethodPix,
		Category:      "utilities",
		PaidStatus:    "pending",
		DueDate:       "2025-01-20",
		Type:          "fixed",
	})
	require.NoError(t, err)
	return r
}

func TestLedgerRecordModel_IdentityOwner(t *testing.T) {
	userID := uuid.New()
	record := newRecord(t, ownership.Identity(userID))

	m := LedgerRecordModelFromDomain(record)
	require.NotNil(t, m.UserID)
	assert.Equal(t, userID, *m.UserID)
	assert.Nil(t, m.UserNS)
	assert.Nil(t, m.TokenTalkbi)

	back, err := m.ToDomain(ledger.KindPayable)
	require.NoError(t, err)
	assert.True(t, back.Owner.Equal(record.Owner))
	assert.True(t, back.Amount.Equal(record.Amount))
	assert.Equal(t, record.DueDate, back.DueDate)
}

func TestLedgerRecordModel_NamespaceOwner(t *testing.T) {
	record := newRecord(t, ownership.NamespaceToken("acme", "secret-token"))

	m := LedgerRecordModelFromDomain(record)
	assert.Nil(t, m.UserID)
	require.NotNil(t, m.UserNS)
	assert.Equal(t, "acme", *m.UserNS)
	assert.Equal(t, "secret-token", *m.TokenTalkbi)

	back, err := m.ToDomain(ledger.KindReceivable)
	require.NoError(t, err)
	assert.Equal(t, ledger.KindReceivable, back.Kind)
	assert.True(t, back.Owner.Equal(record.Owner))
}

func TestLedgerRecordModel_SetOwnerClearsOtherShape(t *testing.T) {
	m := LedgerRecordModelFromDomain(newRecord(t, ownership.NamespaceToken("acme", "tok")))

	m.SetOwner(ownership.Identity(uuid.New()))
	assert.NotNil(t, m.UserID)
	assert.Nil(t, m.UserNS)
	assert.Nil(t, m.TokenTalkbi)
}

func TestLedgerRecordModel_InconsistentOwner(t *testing.T) {
	id := uuid.New()
	ns := "acme"
	m := &LedgerRecordModel{UserID: &id, UserNS: &ns}

	_, err := m.ToDomain(ledger.KindPayable)
	assert.Error(t, err)

	_, err = (&LedgerRecordModel{}).ToDomain(ledger.KindPayable)
	assert.Error(t, err)
}

func TestLedgerTable(t *testing.T) {
	assert.Equal(t, "payables", LedgerTable(ledger.KindPayable))
	assert.Equal(t, "receivables", LedgerTable(ledger.KindReceivable))
}

func TestUserModel_RoundTripMarkers(t *testing.T) {
	m := &UserModel{Name: "Ana", Email: "ana@example.com"}
	u := m.ToDomain()
	assert.Empty(t, u.Namespace)
	assert.Empty(t, u.Token)

	u.Namespace = "acme"
	u.Token = "tok"
	back := UserModelFromDomain(u)
	require.NotNil(t, back.UserNS)
	assert.Equal(t, "acme", *back.UserNS)
	assert.Equal(t, "tok", *back.TokenTalkbi)

	u.Namespace, u.Token = "", ""
	cleared := UserModelFromDomain(u)
	assert.Nil(t, cleared.UserNS)
	assert.Nil(t, cleared.TokenTalkbi)
}
