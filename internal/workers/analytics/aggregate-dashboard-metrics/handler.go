// internal/workers/analytics/aggregate-dashboard-metrics/handler.go
package aggregatedashboardmetrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vms-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "aggregate-dashboard-metrics"

	defaultWindowDays = 90
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
	ErrQueryFailed  = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		switch {
		case errors.Is(err, ErrInvalidInput):
			errorCode = "INVALID_INPUT"
		case errors.Is(err, ErrQueryFailed):
			errorCode = "QUERY_EXECUTION_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.BureauID == "" {
		return nil, fmt.Errorf("%w: bureauId is required", ErrInvalidInput)
	}
	windowDays := input.WindowDays
	if windowDays <= 0 {
		windowDays = defaultWindowDays
	}

	cacheKey := fmt.Sprintf("analytics:dashboard:%s:%d", input.BureauID, windowDays)

	if cached, err := h.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var metrics Metrics
		if uerr := json.Unmarshal(cached, &metrics); uerr == nil {
			return &Output{
				BureauID:   input.BureauID,
				WindowDays: windowDays,
				Metrics:    metrics,
				FromCache:  true,
			}, nil
		}
	} else if err != redis.Nil {
		h.logger.Warn("dashboard cache read failed", map[string]interface{}{"error": err.Error()})
	}

	metrics, err := h.aggregate(ctx, input.BureauID, windowDays)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(metrics); merr == nil {
		if serr := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); serr != nil {
			h.logger.Warn("dashboard cache write failed", map[string]interface{}{"error": serr.Error()})
		}
	}

	return &Output{
		BureauID:   input.BureauID,
		WindowDays: windowDays,
		Metrics:    *metrics,
		FromCache:  false,
	}, nil
}

// aggregate computes the bureau's placement stats in a single statement so
// the numbers come from one consistent snapshot.
func (h *Handler) aggregate(ctx context.Context, bureauID string, windowDays int) (*Metrics, error) {
	var m Metrics
	var feesBilled sql.NullFloat64
	var avgDays sql.NullFloat64

	err := h.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM candidate_ownerships
			 WHERE bureau_id = $1 AND submitted_at > NOW() - make_interval(days => $2)),
			(SELECT COUNT(*) FROM contracts
			 WHERE bureau_id = $1 AND status NOT IN ('TERMINATED', 'EXPIRED')
			   AND created_at > NOW() - make_interval(days => $2)),
			(SELECT COALESCE(SUM(total_fee), 0) FROM contracts
			 WHERE bureau_id = $1 AND status NOT IN ('TERMINATED', 'EXPIRED')
			   AND created_at > NOW() - make_interval(days => $2)),
			(SELECT AVG(EXTRACT(EPOCH FROM (c.created_at - o.submitted_at)) / 86400.0)
			 FROM contracts c
			 JOIN candidate_ownerships o ON o.candidate_id = c.candidate_id AND o.bureau_id = c.bureau_id
			 WHERE c.bureau_id = $1 AND c.created_at > NOW() - make_interval(days => $2)),
			(SELECT COUNT(*) FROM contracts WHERE bureau_id = $1 AND status = 'ACTIVE')`,
		bureauID, windowDays,
	).Scan(&m.Submissions, &m.Placements, &feesBilled, &avgDays, &m.ActiveContracts)
	if err != nil {
		return nil, fmt.Errorf("%w: dashboard aggregation failed: %v", ErrQueryFailed, err)
	}

	m.FeesBilled = feesBilled.Float64
	m.AvgTimeToFillDays = avgDays.Float64
	return &m, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err = cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{"error": err})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
