package ledger

import "github.com/shopspring/decimal"

// Patch is a partial update; nil fields are left unchanged
type Patch struct {
	Year          *string
	Month         *string
	Day           *string
	Hour          *string
	Amount        *decimal.Decimal
	Description   *string
	InvoiceNumber *string
	PaymentMethod *PaymentMethod
	IsRecurring   *bool
	RecurringTime *string
	Category      *string
	Installment   *string
	PaidStatus    *string
	DueDate       *string
	Type          *string
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

func (p Patch) applyTo(d *Details) {
	setString(&d.Year, p.Year)
	setString(&d.Month, p.Month)
	setString(&d.Day, p.Day)
	setString(&d.Hour, p.Hour)
	if p.Amount != nil {
		d.Amount = *p.Amount
	}
	setString(&d.Description, p.Description)
	setString(&d.InvoiceNumber, p.InvoiceNumber)
	if p.PaymentMethod != nil {
		d.PaymentMethod = *p.PaymentMethod
	}
	if p.IsRecurring != nil {
		d.IsRecurring = *p.IsRecurring
	}
	setString(&d.RecurringTime, p.RecurringTime)
	setString(&d.Category, p.Category)
	setString(&d.Installment, p.Installment)
	setString(&d.PaidStatus, p.PaidStatus)
	setString(&d.DueDate, p.DueDate)
	setString(&d.Type, p.Type)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
