package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ledger"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/domain/shared"
	"github.com/maia/backend/internal/infrastructure/persistence/models"
	"github.com/maia/backend/internal/infrastructure/persistence/owner"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository for one record kind.
// Payables and receivables share the implementation and differ by table.
type GormLedgerRepository struct {
	db    *gorm.DB
	kind  ledger.Kind
	table string
}

// NewGormLedgerRepository creates a repository for records of kind
func NewGormLedgerRepository(db *gorm.DB, kind ledger.Kind) *GormLedgerRepository {
	return &GormLedgerRepository{
		db:    db,
		kind:  kind,
		table: models.LedgerTable(kind),
	}
}

// Kind returns the record kind this repository stores
func (r *GormLedgerRepository) Kind() ledger.Kind {
	return r.kind
}

func (r *GormLedgerRepository) query(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Table(r.table)
}

// Create persists a new record
func (r *GormLedgerRepository) Create(ctx context.Context, record *ledger.Record) error {
	if err := record.Owner.Validate(); err != nil {
		return owner.ErrOwnerRequired
	}
	model := models.LedgerRecordModelFromDomain(record)
	if err := r.query(ctx).Create(model).Error; err != nil {
		return translateError(err, r.kind.Label())
	}
	record.CreatedAt = model.CreatedAt
	record.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID loads a record regardless of owner
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Record, error) {
	var model models.LedgerRecordModel
	if err := r.query(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		return nil, translateError(err, r.kind.Label())
	}
	return model.ToDomain(r.kind)
}

// List returns owner records matching filter, ordered by due date
func (r *GormLedgerRepository) List(ctx context.Context, key ownership.Key, filter ledger.Filter) ([]*ledger.Record, error) {
	query := r.query(ctx).Scopes(owner.Scope(key))
	query = applyLedgerFilter(query, filter)

	var rows []models.LedgerRecordModel
	if err := query.Order("due_date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err, r.kind.Label())
	}

	records := make([]*ledger.Record, 0, len(rows))
	for i := range rows {
		record, err := rows[i].ToDomain(r.kind)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func applyLedgerFilter(query *gorm.DB, filter ledger.Filter) *gorm.DB {
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.PaidStatus != nil {
		query = query.Where("paid_status = ?", *filter.PaidStatus)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	return query
}

// Update persists every field of an existing record. The statement is scoped
// to the record owner, so a record can never move between owners.
func (r *GormLedgerRepository) Update(ctx context.Context, record *ledger.Record) error {
	model := models.LedgerRecordModelFromDomain(record)
	result := r.query(ctx).
		Scopes(owner.Scope(record.Owner)).
		Where("id = ?", record.ID).
		Select("*").
		Omit("id", "created_at", owner.ColumnUserID, owner.ColumnNamespace, owner.ColumnTokenTalkbi).
		Updates(model)
	if result.Error != nil {
		return translateError(result.Error, r.kind.Label())
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, r.kind.Label()+" not found")
	}
	return nil
}

// Delete removes a record owned by key
func (r *GormLedgerRepository) Delete(ctx context.Context, key ownership.Key, id uuid.UUID) error {
	result := r.query(ctx).
		Scopes(owner.Scope(key)).
		Where("id = ?", id).
		Delete(&models.LedgerRecordModel{})
	if result.Error != nil {
		return translateError(result.Error, r.kind.Label())
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.CodeNotFound, r.kind.Label()+" not found")
	}
	return nil
}

// SumAmount totals owner amounts, optionally for one paid status
func (r *GormLedgerRepository) SumAmount(ctx context.Context, key ownership.Key, paidStatus *string) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.query(ctx).
		Scopes(owner.Scope(key)).
		Select("COALESCE(SUM(amount), 0) AS total")
	if paidStatus != nil {
		query = query.Where("paid_status = ?", *paidStatus)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, r.kind.Label())
	}
	return result.Total, nil
}

var _ ledger.Repository = (*GormLedgerRepository)(nil)
