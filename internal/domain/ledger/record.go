// Package ledger holds payables and receivables, two record kinds that share
// one shape and differ only in meaning.
package ledger

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Kind distinguishes money owed from money due
type Kind string

const (
	KindPayable    Kind = "payable"
	KindReceivable Kind = "receivable"
)

// Label returns the human name used in error messages
func (k Kind) Label() string {
	switch k {
	case KindPayable:
		return "Payable"
	case KindReceivable:
		return "Receivable"
	default:
		return "Record"
	}
}

// PaymentMethod is how a record is settled
type PaymentMethod string

const (
	PaymentMethodPix  PaymentMethod = "pix"
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// IsValid reports whether m is a supported method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodPix, PaymentMethodCard, PaymentMethodCash:
		return true
	}
	return false
}

// DateLayout is the only accepted due date format. Stored dates compare
// lexicographically, so they must stay zero-padded.
const DateLayout = "2006-01-02"

var (
	yearRegex  = regexp.MustCompile(`^\d{4}$`)
	monthRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
	dayRegex   = regexp.MustCompile(`^(0[1-9]|[12]\d|3[01])$`)
	// HH, HH:MM or HH:MM:SS
	hourRegex = regexp.MustCompile(`^([01]\d|2[0-3])(:[0-5]\d){0,2}$`)
)

// Amounts are stored as numeric(18,2)
const amountScale = 2

var maxAmount = decimal.New(1, 16)

// Column widths of the ledger tables
var maxLengths = []struct {
	name  string
	value func(Details) string
	max   int
}{
	{"invoice_number", func(d Details) string { return d.InvoiceNumber }, 100},
	{"category", func(d Details) string { return d.Category }, 100},
	{"paid_status", func(d Details) string { return d.PaidStatus }, 50},
	{"type", func(d Details) string { return d.Type }, 50},
	{"recurring_time", func(d Details) string { return d.RecurringTime }, 50},
	{"installment", func(d Details) string { return d.Installment }, 50},
}

// Details are the caller-supplied fields of a record
type Details struct {
	Year          string
	Month         string
	Day           string
	Hour          string
	Amount        decimal.Decimal
	Description   string
	InvoiceNumber string
	PaymentMethod PaymentMethod
	IsRecurring   bool
	RecurringTime string
	Category      string
	Installment   string
	PaidStatus    string
	DueDate       string
	Type          string
}

// Record is a payable or a receivable
type Record struct {
	shared.BaseEntity
	Kind  Kind
	Owner ownership.Key
	Details
}

// NewRecord validates details and binds them to owner
func NewRecord(kind Kind, owner ownership.Key, details Details) (*Record, error) {
	if err := owner.Validate(); err != nil {
		return nil, shared.WrapDomainError(shared.CodeInvalidInput, "Owner is required", err)
	}
	details.normalize()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	return &Record{
		BaseEntity: shared.NewBaseEntity(),
		Kind:       kind,
		Owner:      owner,
		Details:    details,
	}, nil
}

// OwnerKey implements ownership.Owned
func (r *Record) OwnerKey() ownership.Key {
	return r.Owner
}

// Apply merges a partial update. Owner, kind and id never change.
// On failure the record is left untouched.
func (r *Record) Apply(p Patch) error {
	next := r.Details
	p.applyTo(&next)
	next.normalize()
	if err := next.Validate(); err != nil {
		return err
	}
	r.Details = next
	r.UpdatedAt = time.Now()
	return nil
}

func (d *Details) normalize() {
	d.Description = strings.TrimSpace(d.Description)
	d.Category = strings.TrimSpace(d.Category)
	d.PaidStatus = strings.TrimSpace(d.PaidStatus)
	d.DueDate = strings.TrimSpace(d.DueDate)
	d.Year = strings.TrimSpace(d.Year)
	d.Month = strings.TrimSpace(d.Month)
	d.Day = strings.TrimSpace(d.Day)
	d.Hour = strings.TrimSpace(d.Hour)
	d.PaymentMethod = PaymentMethod(strings.ToLower(strings.TrimSpace(string(d.PaymentMethod))))
}

// Validate checks the record invariants
func (d Details) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"year", d.Year},
		{"month", d.Month},
		{"day", d.Day},
		{"hour", d.Hour},
		{"description", d.Description},
		{"invoice_number", d.InvoiceNumber},
		{"category", d.Category},
		{"paid_status", d.PaidStatus},
		{"due_date", d.DueDate},
		{"type", d.Type},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.name + " is required")
		}
	}
	if err := ValidateYearMonth(d.Year, d.Month); err != nil {
		return err
	}
	if !dayRegex.MatchString(d.Day) {
		return invalid("day must be between 01 and 31")
	}
	if !hourRegex.MatchString(d.Hour) {
		return invalid("hour must use the HH, HH:MM or HH:MM:SS format")
	}
	for _, f := range maxLengths {
		if utf8.RuneCountInString(f.value(d)) > f.max {
			return invalid(fmt.Sprintf("%s must be at most %d characters", f.name, f.max))
		}
	}
	if d.Amount.IsNegative() {
		return invalid("amount must be greater than or equal to 0")
	}
	if !d.Amount.Equal(d.Amount.Truncate(amountScale)) {
		return invalid("amount must have at most 2 decimal places")
	}
	if d.Amount.GreaterThanOrEqual(maxAmount) {
		return invalid("amount must be less than 10000000000000000")
	}
	if !d.PaymentMethod.IsValid() {
		return invalid("payment_method must be one of: pix, card, cash")
	}
	if err := ValidateDate("due_date", d.DueDate); err != nil {
		return err
	}
	return nil
}

// ValidateDate checks that value is a zero-padded YYYY-MM-DD date
func ValidateDate(field, value string) error {
	if len(value) != len(DateLayout) {
		return invalid(field + " must use the YYYY-MM-DD format")
	}
	if _, err := time.Parse(DateLayout, value); err != nil {
		return invalid(field + " must use the YYYY-MM-DD format")
	}
	return nil
}

// ValidateYearMonth checks a 4 digit year and a zero-padded month
func ValidateYearMonth(year, month string) error {
	if !yearRegex.MatchString(year) {
		return invalid("year must have 4 digits")
	}
	if !monthRegex.MatchString(month) {
		return invalid("month must be between 01 and 12")
	}
	return nil
}

func invalid(message string) error {
	return shared.NewDomainError(shared.CodeInvalidInput, message)
}
