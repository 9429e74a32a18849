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

func setupTracingDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

// setupSpanRecorder installs a recording tracer provider as the global
// provider so otelgorm picks it up when the plugin registers.
func setupSpanRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Register_Disabled(t *testing.T) {
	db := setupTracingDB(t)

	plugin := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop())
	require.NoError(t, plugin.Register(db))

	// No otelgorm plugin means no statement spans
	_, registered := db.Plugins["otelgorm"]
	assert.False(t, registered)
}

func TestDBTracingPlugin_Register_Enabled(t *testing.T) {
	db := setupTracingDB(t)

	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "sqlite",
	}
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	_, registered := db.Plugins["otelgorm"]
	assert.True(t, registered)
}

func TestDBTracingPlugin_QueryCreatesSpan(t *testing.T) {
	db := setupTracingDB(t)
	tp, sr := setupSpanRecorder(t)

	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Second,
		DBSystem:        "sqlite",
	}
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, parent := tp.Tracer("test").Start(context.Background(), "parent")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "Soup Tureen"}).Error)
	parent.End()

	spans := sr.Ended()
	require.NotEmpty(t, spans)
}

func TestDBTracingPlugin_SlowQueryFlagged(t *testing.T) {
	db := setupTracingDB(t)
	tp, sr := setupSpanRecorder(t)

	// Zero threshold: every statement counts as slow
	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 0,
		DBSystem:        "sqlite",
	}
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "Chafing Dish"}).Error)
	span.End()

	var flagged bool
	for _, s := range sr.Ended() {
		for _, ev := range s.Events() {
			if ev.Name == "slow_query_warning" {
				flagged = true
			}
		}
	}
	assert.True(t, flagged, "expected a slow_query_warning event on some span")
}

func TestDBTracingPlugin_RecordNotFoundNotAnError(t *testing.T) {
	db := setupTracingDB(t)
	tp, sr := setupSpanRecorder(t)

	cfg := DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Second,
		DBSystem:        "sqlite",
	}
	plugin := NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.Register(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "miss")
	var row tracedRow
	err := db.WithContext(ctx).First(&row, "name = ?", "No Such Plate").Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	span.End()

	for _, s := range sr.Ended() {
		assert.NotEqual(t, codes.Error, s.Status().Code,
			"a lookup miss must not mark its span as failed")
	}
}
