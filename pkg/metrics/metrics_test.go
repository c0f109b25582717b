package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Aleph-Alpha/interactpsql/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "postgres",
		Operation: "insert_matching",
		Resource:  "users",
		Duration:  20 * time.Millisecond,
		Rows:      3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "postgres",
		Operation: "insert_matching",
		Resource:  "users",
		Duration:  5 * time.Millisecond,
		Error:     errors.New("duplicate key"),
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("postgres", "insert_matching", statusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("postgres", "insert_matching", statusError)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.rowsTotal.WithLabelValues("postgres", "insert_matching")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestNewMetricsRegistry(t *testing.T) {
	t.Run("WithoutDefaultCollectors", func(t *testing.T) {
		m := NewMetrics(Config{Namespace: "interactpsql", ServiceName: "test"})
		m.ObserveOperation(observability.OperationContext{Component: "postgres", Operation: "read_all"})

		families, err := m.Registry.Gather()
		require.NoError(t, err)

		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
			for _, metric := range f.GetMetric() {
				var service string
				for _, label := range metric.GetLabel() {
					if label.GetName() == "service" {
						service = label.GetValue()
					}
				}
				assert.Equal(t, "test", service)
			}
		}
		assert.ElementsMatch(t, []string{
			"interactpsql_db_operations_total",
			"interactpsql_db_operation_duration_seconds",
		}, names)
	})

	t.Run("WithDefaultCollectors", func(t *testing.T) {
		m := NewMetrics(Config{ServiceName: "test", EnableDefaultCollectors: true})

		families, err := m.Registry.Gather()
		require.NoError(t, err)
		assert.Greater(t, len(families), 3)
	})
}

func TestMetricsServer(t *testing.T) {
	t.Run("NoAddressNoServer", func(t *testing.T) {
		m := NewMetrics(Config{})
		assert.Nil(t, m.Server)
	})

	t.Run("ServesMetricsEndpoint", func(t *testing.T) {
		m := NewMetrics(Config{Address: DefaultMetricsAddress, ServiceName: "test"})
		require.NotNil(t, m.Server)
		m.ObserveOperation(observability.OperationContext{Component: "postgres", Operation: "execute_read", Rows: 2})

		rec := httptest.NewRecorder()
		m.Server.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		body, err := io.ReadAll(rec.Result().Body)
		require.NoError(t, err)
		assert.Equal(t, 200, rec.Code)
		assert.Contains(t, string(body), `db_rows_total{component="postgres",operation="execute_read",service="test"} 2`)
	})
}
