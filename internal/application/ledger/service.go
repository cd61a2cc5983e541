// Package ledger implements the payable and receivable use cases. One
// Service is constructed per record kind.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Service runs the ledger use cases for a single record kind
type Service struct {
	repo    ledger.Repository
	kind    ledger.Kind
	metrics *telemetry.DomainMetrics
	logger  *zap.Logger
}

// NewService creates a service over repo
func NewService(repo ledger.Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		kind:   repo.Kind(),
		logger: logger.With(zap.String("ledger_kind", string(repo.Kind()))),
	}
}

// WithMetrics attaches domain metrics to the service
func (s *Service) WithMetrics(metrics *telemetry.DomainMetrics) *Service {
	s.metrics = metrics
	return s
}

// Kind returns the record kind served
func (s *Service) Kind() ledger.Kind {
	return s.kind
}

func (s *Service) span(ctx context.Context, method string, owner ownership.Key) (context.Context, func(error)) {
	ctx, span := telemetry.StartServiceSpan(ctx, string(s.kind), method,
		telemetry.WithAttribute(telemetry.SpanAttrLedgerKind, string(s.kind)),
		telemetry.WithAttribute(telemetry.SpanAttrOwnerKind, string(owner.Kind())),
	)
	return ctx, func(err error) {
		telemetry.RecordError(span, err)
		span.End()
	}
}

func requireOwner(owner ownership.Key) error {
	if err := owner.Validate(); err != nil {
		return shared.WrapDomainError(shared.CodeUnauthorized, "Owner is required", err)
	}
	return nil
}

// Create stores a new record for owner
func (s *Service) Create(ctx context.Context, owner ownership.Key, details ledger.Details) (_ *RecordResponse, err error) {
	ctx, end := s.span(ctx, "create", owner)
	defer func() { end(err) }()

	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	record, err := ledger.NewRecord(s.kind, owner, details)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.RecordLedgerWrite(ctx, string(s.kind), "create", string(owner.Kind()))
	s.logger.Info("Record created",
		zap.String("id", record.ID.String()),
		zap.String("owner", owner.String()))

	resp := ToRecordResponse(record)
	return &resp, nil
}

func (s *Service) list(ctx context.Context, method string, owner ownership.Key, filter ledger.Filter) (_ []RecordResponse, err error) {
	ctx, end := s.span(ctx, method, owner)
	defer func() { end(err) }()

	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	records, err := s.repo.List(ctx, owner, filter)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(telemetry.SpanFromContext(ctx), telemetry.SpanAttrResultSize, len(records))
	return ToRecordResponses(records), nil
}

// ListByOwner returns every record of owner ordered by due date
func (s *Service) ListByOwner(ctx context.Context, owner ownership.Key) ([]RecordResponse, error) {
	return s.list(ctx, "list", owner, ledger.Filter{})
}

// ListByCategory returns owner records in one category
func (s *Service) ListByCategory(ctx context.Context, owner ownership.Key, category string) ([]RecordResponse, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "category is required")
	}
	return s.list(ctx, "list_by_category", owner, ledger.Filter{Category: &category})
}

// ListByStatus returns owner records with one paid status
func (s *Service) ListByStatus(ctx context.Context, owner ownership.Key, status string) ([]RecordResponse, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "paid_status is required")
	}
	return s.list(ctx, "list_by_status", owner, ledger.Filter{PaidStatus: &status})
}

// ListByDateRange returns owner records due between start and end inclusive
func (s *Service) ListByDateRange(ctx context.Context, owner ownership.Key, start, end string) ([]RecordResponse, error) {
	if err := ledger.ValidateDate("start_date", start); err != nil {
		return nil, err
	}
	if err := ledger.ValidateDate("end_date", end); err != nil {
		return nil, err
	}
	return s.list(ctx, "list_by_date_range", owner, ledger.Filter{DueFrom: &start, DueTo: &end})
}

// ListByYearMonth returns owner records booked in one month
func (s *Service) ListByYearMonth(ctx context.Context, owner ownership.Key, year, month string) ([]RecordResponse, error) {
	if err := ledger.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	return s.list(ctx, "list_by_year_month", owner, ledger.Filter{Year: &year, Month: &month})
}

// load runs the ownership guard for a single record
func (s *Service) load(ctx context.Context, owner ownership.Key, id uuid.UUID) (*ledger.Record, error) {
	record, err := ownership.Load(ctx, owner, id, s.kind.Label(), s.repo.FindByID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && (domainErr.Code == shared.CodeForbidden || domainErr.Code == shared.CodeNotFound) {
			s.metrics.RecordAccessDenied(ctx, s.kind.Label(), domainErr.Code)
			if domainErr.Code == shared.CodeForbidden {
				s.logger.Warn("Cross-owner access denied",
					zap.String("id", id.String()),
					zap.String("owner", owner.String()))
			}
		}
		return nil, err
	}
	return record, nil
}

// GetByID returns one record owned by owner
func (s *Service) GetByID(ctx context.Context, owner ownership.Key, id uuid.UUID) (_ *RecordResponse, err error) {
	ctx, end := s.span(ctx, "get", owner)
	defer func() { end(err) }()

	record, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	resp := ToRecordResponse(record)
	return &resp, nil
}

// Update applies a partial update to a record owned by owner
func (s *Service) Update(ctx context.Context, owner ownership.Key, id uuid.UUID, patch ledger.Patch) (_ *RecordResponse, err error) {
	ctx, end := s.span(ctx, "update", owner)
	defer func() { end(err) }()

	if patch.IsEmpty() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "At least one field must be provided")
	}
	record, err := s.load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := record.Apply(patch); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.metrics.RecordLedgerWrite(ctx, string(s.kind), "update", string(owner.Kind()))
	s.logger.Info("Record updated", zap.String("id", id.String()))

	resp := ToRecordResponse(record)
	return &resp, nil
}

// Remove deletes a record owned by owner
func (s *Service) Remove(ctx context.Context, owner ownership.Key, id uuid.UUID) (err error) {
	ctx, end := s.span(ctx, "remove", owner)
	defer func() { end(err) }()

	if _, err := s.load(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}

	s.metrics.RecordLedgerWrite(ctx, string(s.kind), "delete", string(owner.Kind()))
	s.logger.Info("Record removed", zap.String("id", id.String()))
	return nil
}

// SumAmount totals owner amounts, optionally for one paid status
func (s *Service) SumAmount(ctx context.Context, owner ownership.Key, paidStatus *string) (_ *TotalResponse, err error) {
	ctx, end := s.span(ctx, "sum_amount", owner)
	defer func() { end(err) }()

	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	if paidStatus != nil {
		trimmed := strings.TrimSpace(*paidStatus)
		if trimmed == "" {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "paid_status is required")
		}
		paidStatus = &trimmed
	}

	total, err := s.repo.SumAmount(ctx, owner, paidStatus)
	if err != nil {
		return nil, err
	}
	return &TotalResponse{Total: Amount{total}, PaidStatus: paidStatus}, nil
}
