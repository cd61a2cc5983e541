package handler

import (
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CreateRecordRequest is the body of POST /payables and POST /receivables
type CreateRecordRequest struct {
	Year          string           `json:"year" binding:"required,len=4,numeric"`
	Month         string           `json:"month" binding:"required,len=2,numeric"`
	Day           string           `json:"day" binding:"required,len=2,numeric"`
	Hour          string           `json:"hour" binding:"required,max=8"`
	Amount        *decimal.Decimal `json:"amount" binding:"required"`
	Description   string           `json:"description" binding:"required,max=500"`
	InvoiceNumber string           `json:"invoice_number" binding:"required,max=100"`
	PaymentMethod string           `json:"payment_method" binding:"required,oneof=pix card cash"`
	IsRecurring   bool             `json:"is_recurring"`
	RecurringTime string           `json:"recurring_time" binding:"max=50"`
	Category      string           `json:"category" binding:"required,max=100"`
	Installment   string           `json:"installment" binding:"max=50"`
	PaidStatus    string           `json:"paid_status" binding:"required,max=50"`
	DueDate       string           `json:"due_date" binding:"required,datetime=2006-01-02"`
	Type          string           `json:"type" binding:"required,max=50"`
}

func (r CreateRecordRequest) toDetails() ledger.Details {
	return ledger.Details{
		Year:          r.Year,
		Month:         r.Month,
		Day:           r.Day,
		Hour:          r.Hour,
		Amount:        *r.Amount,
		Description:   r.Description,
		InvoiceNumber: r.InvoiceNumber,
		PaymentMethod: ledger.PaymentMethod(r.PaymentMethod),
		IsRecurring:   r.IsRecurring,
		RecurringTime: r.RecurringTime,
		Category:      r.Category,
		Installment:   r.Installment,
		PaidStatus:    r.PaidStatus,
		DueDate:       r.DueDate,
		Type:          r.Type,
	}
}

// UpdateRecordRequest is a partial update; absent fields are unchanged
type UpdateRecordRequest struct {
	Year          *string          `json:"year" binding:"omitempty,len=4,numeric"`
	Month         *string          `json:"month" binding:"omitempty,len=2,numeric"`
	Day           *string          `json:"day" binding:"omitempty,len=2,numeric"`
	Hour          *string          `json:"hour" binding:"omitempty,max=8"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description" binding:"omitempty,max=500"`
	InvoiceNumber *string          `json:"invoice_number" binding:"omitempty,max=100"`
	PaymentMethod *string          `json:"payment_method" binding:"omitempty,oneof=pix card cash"`
	IsRecurring   *bool            `json:"is_recurring"`
	RecurringTime *string          `json:"recurring_time" binding:"omitempty,max=50"`
	Category      *string          `json:"category" binding:"omitempty,max=100"`
	Installment   *string          `json:"installment" binding:"omitempty,max=50"`
	PaidStatus    *string          `json:"paid_status" binding:"omitempty,max=50"`
	DueDate       *string          `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	Type          *string          `json:"type" binding:"omitempty,max=50"`
}

func (r UpdateRecordRequest) toPatch() ledger.Patch {
	p := ledger.Patch{
		Year:          r.Year,
		Month:         r.Month,
		Day:           r.Day,
		Hour:          r.Hour,
		Amount:        r.Amount,
		Description:   r.Description,
		InvoiceNumber: r.InvoiceNumber,
		IsRecurring:   r.IsRecurring,
		RecurringTime: r.RecurringTime,
		Category:      r.Category,
		Installment:   r.Installment,
		PaidStatus:    r.PaidStatus,
		DueDate:       r.DueDate,
		Type:          r.Type,
	}
	if r.PaymentMethod != nil {
		m := ledger.PaymentMethod(*r.PaymentMethod)
		p.PaymentMethod = &m
	}
	return p
}

// DateRangeQuery selects records by inclusive due date bounds
type DateRangeQuery struct {
	StartDate string `form:"start_date" binding:"required"`
	EndDate   string `form:"end_date" binding:"required"`
}

// YearMonthQuery selects records by year and month
type YearMonthQuery struct {
	Year  string `form:"year" binding:"required"`
	Month string `form:"month" binding:"required"`
}
