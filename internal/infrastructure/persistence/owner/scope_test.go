package owner

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testRow is a minimal ledger row for scope tests
type testRow struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID      *uuid.UUID `gorm:"type:uuid"`
	UserNS      *string
	TokenTalkbi *string
	Category    string
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestScope_Identity(t *testing.T) {
	userID := uuid.New()

	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "payables" WHERE user_id = \$1`).
		WithArgs(userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "category"}))

	var rows []testRow
	err := db.Table("payables").Scopes(Scope(ownership.Identity(userID))).Find(&rows).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_NamespaceToken(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "receivables" WHERE user_ns = \$1 AND token_talkbi = \$2`).
		WithArgs("acme", "tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_ns", "token_talkbi"}))

	var rows []testRow
	err := db.Table("receivables").Scopes(Scope(ownership.NamespaceToken("acme", "tok-1"))).Find(&rows).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_CombinesWithOtherConditions(t *testing.T) {
	userID := uuid.New()

	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "payables" WHERE category = \$1 AND user_id = \$2`).
		WithArgs("rent", userID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var rows []testRow
	err := db.Table("payables").
		Scopes(Scope(ownership.Identity(userID))).
		Where("category = ?", "rent").
		Find(&rows).Error
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScope_RejectsIncompleteKeys(t *testing.T) {
	keys := map[string]ownership.Key{
		"zero key":      {},
		"nil user id":   ownership.Identity(uuid.Nil),
		"missing token": ownership.NamespaceToken("acme", ""),
	}

	for name, key := range keys {
		t.Run(name, func(t *testing.T) {
			db, mock, mockDB := setupMockDB(t)
			defer mockDB.Close()

			var rows []testRow
			err := db.Table("payables").Scopes(Scope(key)).Find(&rows).Error
			assert.ErrorIs(t, err, ErrOwnerRequired)

			// No statement reaches the database
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
