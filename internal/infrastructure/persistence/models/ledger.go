package models

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/shopspring/decimal"
)

// Ledger table names
const (
	PayablesTable    = "payables"
	ReceivablesTable = "receivables"
)

// LedgerTable returns the table holding records of kind
func LedgerTable(kind ledger.Kind) string {
	switch kind {
	case ledger.KindReceivable:
		return ReceivablesTable
	default:
		return PayablesTable
	}
}

// LedgerRecordModel is the row shape shared by the payables and receivables
// tables. It has no TableName; repositories select the table explicitly.
// Exactly one owner shape is set: user_id, or user_ns with token_talkbi.
type LedgerRecordModel struct {
	BaseModel
	UserID        *uuid.UUID      `gorm:"type:uuid"`
	UserNS        *string         `gorm:"column:user_ns;type:varchar(200)"`
	TokenTalkbi   *string         `gorm:"column:token_talkbi;type:varchar(200)"`
	Year          string          `gorm:"type:varchar(4);not null"`
	Month         string          `gorm:"type:varchar(2);not null"`
	Day           string          `gorm:"type:varchar(2);not null"`
	Hour          string          `gorm:"type:varchar(8);not null"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Description   string          `gorm:"type:text;not null"`
	InvoiceNumber string          `gorm:"type:varchar(100);not null"`
	PaymentMethod string          `gorm:"type:varchar(10);not null"`
	IsRecurring   bool            `gorm:"not null;default:false"`
	RecurringTime string          `gorm:"type:varchar(50)"`
	Category      string          `gorm:"type:varchar(100);not null"`
	Installment   string          `gorm:"type:varchar(50)"`
	PaidStatus    string          `gorm:"type:varchar(50);not null"`
	DueDate       string          `gorm:"type:varchar(10);not null"`
	Type          string          `gorm:"type:varchar(50);not null"`
}

// OwnerKey rebuilds the owner key from the owner columns
func (m *LedgerRecordModel) OwnerKey() (ownership.Key, error) {
	switch {
	case m.UserID != nil && m.UserNS == nil && m.TokenTalkbi == nil:
		return ownership.Identity(*m.UserID), nil
	case m.UserID == nil && m.UserNS != nil && m.TokenTalkbi != nil:
		return ownership.NamespaceToken(*m.UserNS, *m.TokenTalkbi), nil
	default:
		return ownership.Key{}, fmt.Errorf("ledger row %s has an inconsistent owner", m.ID)
	}
}

// SetOwner writes key into the owner columns, clearing the other shape
func (m *LedgerRecordModel) SetOwner(key ownership.Key) {
	m.UserID, m.UserNS, m.TokenTalkbi = nil, nil, nil
	if id, ok := key.UserID(); ok {
		m.UserID = &id
		return
	}
	if ns, token, ok := key.Namespace(); ok {
		m.UserNS = &ns
		m.TokenTalkbi = &token
	}
}

// ToDomain converts the row to a domain record of kind
func (m *LedgerRecordModel) ToDomain(kind ledger.Kind) (*ledger.Record, error) {
	owner, err := m.OwnerKey()
	if err != nil {
		return nil, err
	}
	return &ledger.Record{
		BaseEntity: m.BaseModel.ToDomain(),
		Kind:       kind,
		Owner:      owner,
		Details: ledger.Details{
			Year:          m.Year,
			Month:         m.Month,
			Day:           m.Day,
			Hour:          m.Hour,
			Amount:        m.Amount,
			Description:   m.Description,
			InvoiceNumber: m.InvoiceNumber,
			PaymentMethod: ledger.PaymentMethod(m.PaymentMethod),
			IsRecurring:   m.IsRecurring,
			RecurringTime: m.RecurringTime,
			Category:      m.Category,
			Installment:   m.Installment,
			PaidStatus:    m.PaidStatus,
			DueDate:       m.DueDate,
			Type:          m.Type,
		},
	}, nil
}

// FromDomain populates the row from a domain record
func (m *LedgerRecordModel) FromDomain(r *ledger.Record) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.SetOwner(r.Owner)
	m.Year = r.Year
	m.Month = r.Month
	m.Day = r.Day
	m.Hour = r.Hour
	m.Amount = r.Amount
	m.Description = r.Description
	m.InvoiceNumber = r.InvoiceNumber
	m.PaymentMethod = string(r.PaymentMethod)
	m.IsRecurring = r.IsRecurring
	m.RecurringTime = r.RecurringTime
	m.Category = r.Category
	m.Installment = r.Installment
	m.PaidStatus = r.PaidStatus
	m.DueDate = r.DueDate
	m.Type = r.Type
}

// LedgerRecordModelFromDomain creates a new row from a domain record
func LedgerRecordModelFromDomain(r *ledger.Record) *LedgerRecordModel {
	m := &LedgerRecordModel{}
	m.FromDomain(r)
	return m
}
