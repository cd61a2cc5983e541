package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	return db, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "maia", cfg.DBName)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db, sr := setupTracedDB(t, DefaultDBTracingConfig())

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)
	assert.Empty(t, sr.Ended())
	assert.Nil(t, db.Callback().Create().Get("otel_slow_query:create"))
}

func TestDBTracingPlugin_Enabled(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	db, sr := setupTracedDB(t, cfg)

	require.NoError(t, db.Create(&tracedRow{Name: "a"}).Error)

	var rows []tracedRow
	require.NoError(t, db.Find(&rows).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	last := spans[len(spans)-1]

	found := false
	for _, attr := range last.Attributes() {
		if attr.Key == "db.sql.table" {
			assert.Equal(t, "traced_rows", attr.Value.AsString())
			found = true
		}
	}
	assert.True(t, found, "table attribute should be recorded")
}

func TestDBTracingPlugin_SlowQueryAndError(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.SlowQueryThresh = 0
	db, sr := setupTracedDB(t, cfg)

	err := db.Exec("SELECT * FROM missing_table").Error
	require.Error(t, err)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	span := spans[len(spans)-1]

	assert.Equal(t, codes.Error, span.Status().Code)

	slow := false
	for _, e := range span.Events() {
		if e.Name == "slow_query_warning" {
			slow = true
		}
	}
	assert.True(t, slow, "zero threshold should mark every query slow")
}

func TestDBTracingPlugin_RecordNotFoundIsNotAnError(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	db, sr := setupTracedDB(t, cfg)

	var row tracedRow
	err := db.First(&row, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	assert.NotEqual(t, codes.Error, spans[len(spans)-1].Status().Code)
}
