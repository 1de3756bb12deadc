package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestDetectOperationType(t *testing.T) {
	tests := map[string]string{
		"select * from invoices":          "SELECT",
		"  INSERT INTO ledger_entries ...": "INSERT",
		"update invoices set version = 2": "UPDATE",
		"DELETE FROM outbox_events":       "DELETE",
		"BEGIN":                           "OTHER",
	}
	for sql, want := range tests {
		assert.Equal(t, want, detectOperationType(sql), sql)
	}
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)

	// disabled plugin leaves the DB untouched
	assert.NoError(t, p.RegisterOtelGorm(nil))
}

type probe struct {
	ID   int
	Name string
}

func TestDBMetrics_RecordsQueries(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&probe{}))

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewDBMetrics(provider.Meter("db.client"), DBMetricsConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.Use(metrics))

	require.NoError(t, db.Create(&probe{ID: 1, Name: "a"}).Error)
	var got probe
	require.NoError(t, db.First(&got, 1).Error)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	ops := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "db_query_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				op, _ := dp.Attributes.Value(AttrDBOperation)
				ops[op.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), ops["INSERT"])
	assert.Equal(t, int64(1), ops["SELECT"])

	metrics.Stop()
	metrics.Stop()
}
