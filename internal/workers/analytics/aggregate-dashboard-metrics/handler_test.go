// internal/workers/analytics/aggregate-dashboard-metrics/handler_test.go
package aggregatedashboardmetrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"vms-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewHandler(LoadConfig(), db, redisClient, logger.NewTestLogger(t)), mock, mr
}

func metricRows(submissions, placements int, fees, avgDays float64, active int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"submissions", "placements", "fees", "avg_days", "active"}).
		AddRow(submissions, placements, fees, avgDays, active)
}

func TestHandler_Execute_AggregatesMetrics(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 90).
		WillReturnRows(metricRows(25, 6, 86400.0, 18.5, 4))

	output, err := handler.Execute(context.Background(), &Input{BureauID: "bureau-1"})

	require.NoError(t, err)
	assert.Equal(t, 90, output.WindowDays)
	assert.Equal(t, 25, output.Metrics.Submissions)
	assert.Equal(t, 6, output.Metrics.Placements)
	assert.Equal(t, 86400.0, output.Metrics.FeesBilled)
	assert.Equal(t, 18.5, output.Metrics.AvgTimeToFillDays)
	assert.Equal(t, 4, output.Metrics.ActiveContracts)
	assert.False(t, output.FromCache)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CustomWindow(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 30).
		WillReturnRows(metricRows(10, 2, 24000.0, 12.0, 4))

	output, err := handler.Execute(context.Background(), &Input{BureauID: "bureau-1", WindowDays: 30})

	require.NoError(t, err)
	assert.Equal(t, 30, output.WindowDays)
}

func TestHandler_Execute_SecondCallServedFromCache(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 90).
		WillReturnRows(metricRows(25, 6, 86400.0, 18.5, 4))

	input := &Input{BureauID: "bureau-1"}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Metrics, second.Metrics)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CacheExpiresAfterTTL(t *testing.T) {
	handler, mock, mr := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 90).
		WillReturnRows(metricRows(25, 6, 86400.0, 18.5, 4))
	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 90).
		WillReturnRows(metricRows(26, 6, 86400.0, 18.5, 4))

	input := &Input{BureauID: "bureau-1"}

	_, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	mr.FastForward(11 * time.Minute)

	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Equal(t, 26, output.Metrics.Submissions)
}

func TestHandler_Execute_DistinctWindowsCachedSeparately(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 90).
		WillReturnRows(metricRows(25, 6, 86400.0, 18.5, 4))
	mock.ExpectQuery(`SELECT`).
		WithArgs("bureau-1", 30).
		WillReturnRows(metricRows(10, 2, 24000.0, 12.0, 4))

	_, err := handler.Execute(context.Background(), &Input{BureauID: "bureau-1"})
	require.NoError(t, err)
	out30, err := handler.Execute(context.Background(), &Input{BureauID: "bureau-1", WindowDays: 30})
	require.NoError(t, err)

	assert.False(t, out30.FromCache)
	assert.Equal(t, 10, out30.Metrics.Submissions)
}

func TestHandler_Execute_QueryError(t *testing.T) {
	handler, mock, _ := newTestHandler(t)

	mock.ExpectQuery(`SELECT`).
		WillReturnError(errors.New("connection reset"))

	_, err := handler.Execute(context.Background(), &Input{BureauID: "bureau-1"})
	assert.True(t, errors.Is(err, ErrQueryFailed))
}

func TestHandler_Execute_MissingBureau(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
