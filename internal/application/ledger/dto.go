package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// Amount renders a decimal as a JSON number. The digits are written
// verbatim, so nothing is lost to float formatting on the way out.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// RecordResponse is the public view of a payable or receivable. The
// namespace token is never echoed back.
type RecordResponse struct {
	ID            uuid.UUID  `json:"id"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Namespace     string     `json:"user_ns,omitempty"`
	Year          string     `json:"year"`
	Month         string     `json:"month"`
	Day           string     `json:"day"`
	Hour          string     `json:"hour"`
	Amount        Amount     `json:"amount"`
	Description   string     `json:"description"`
	InvoiceNumber string     `json:"invoice_number"`
	PaymentMethod string     `json:"payment_method"`
	IsRecurring   bool       `json:"is_recurring"`
	RecurringTime string     `json:"recurring_time,omitempty"`
	Category      string     `json:"category"`
	Installment   string     `json:"installment,omitempty"`
	PaidStatus    string     `json:"paid_status"`
	DueDate       string     `json:"due_date"`
	Type          string     `json:"type"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TotalResponse is the result of an amount aggregation
type TotalResponse struct {
	Total      Amount  `json:"total"`
	PaidStatus *string `json:"paid_status,omitempty"`
}

// ToRecordResponse converts a domain record to its public view
func ToRecordResponse(r *ledger.Record) RecordResponse {
	resp := RecordResponse{
		ID:            r.ID,
		Year:          r.Year,
		Month:         r.Month,
		Day:           r.Day,
		Hour:          r.Hour,
		Amount:        Amount{r.Amount},
		Description:   r.Description,
		InvoiceNumber: r.InvoiceNumber,
		PaymentMethod: string(r.PaymentMethod),
		IsRecurring:   r.IsRecurring,
		RecurringTime: r.RecurringTime,
		Category:      r.Category,
		Installment:   r.Installment,
		PaidStatus:    r.PaidStatus,
		DueDate:       r.DueDate,
		Type:          r.Type,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	if id, ok := r.Owner.UserID(); ok {
		resp.UserID = &id
	}
	if ns, _, ok := r.Owner.Namespace(); ok {
		resp.Namespace = ns
	}
	return resp
}

// ToRecordResponses converts a slice, never returning nil
func ToRecordResponses(records []*ledger.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToRecordResponse(r))
	}
	return out
}
