// internal/workers/msa/check-pending/handler.go
package checkpending

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "check-pending-msas"
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
	if input.PartyID == "" {
		return nil, fmt.Errorf("%w: partyId is required", ErrInvalidInput)
	}
	if input.Party != models.MSAPartyCompany && input.Party != models.MSAPartyBureau {
		return nil, fmt.Errorf("%w: party must be COMPANY or BUREAU, got %q", ErrInvalidInput, input.Party)
	}

	cacheKey := "msa:pending:" + input.Party + ":" + input.PartyID

	if cached, err := h.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var pending []models.PendingMSA
		if uerr := json.Unmarshal(cached, &pending); uerr == nil {
			return h.buildOutput(input, pending, true), nil
		}
	} else if err != redis.Nil {
		h.logger.Warn("pending cache read failed", map[string]interface{}{"error": err.Error()})
	}

	pending, err := h.fetchPending(ctx, input)
	if err != nil {
		return nil, err
	}

	if data, merr := json.Marshal(pending); merr == nil {
		if serr := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); serr != nil {
			h.logger.Warn("pending cache write failed", map[string]interface{}{"error": serr.Error()})
		}
	}

	return h.buildOutput(input, pending, false), nil
}

// fetchPending lists MSAs still awaiting the given party's signature. The
// counterparty name comes from the other side of the agreement so the badge
// can say who is waiting on you.
func (h *Handler) fetchPending(ctx context.Context, input *Input) ([]models.PendingMSA, error) {
	query := `
		SELECT m.id, m.msa_number, b.name, m.created_at
		FROM msas m
		JOIN bureaus b ON b.id = m.bureau_id
		WHERE m.company_id = $1
		  AND m.status IN ('DRAFT', 'PENDING_SIGNATURES')
		  AND m.company_signed_at IS NULL
		ORDER BY m.created_at ASC`
	if input.Party == models.MSAPartyBureau {
		query = `
		SELECT m.id, m.msa_number, c.name, m.created_at
		FROM msas m
		JOIN companies c ON c.id = m.company_id
		WHERE m.bureau_id = $1
		  AND m.status IN ('DRAFT', 'PENDING_SIGNATURES')
		  AND m.bureau_signed_at IS NULL
		ORDER BY m.created_at ASC`
	}

	rows, err := h.db.QueryContext(ctx, query, input.PartyID)
	if err != nil {
		return nil, fmt.Errorf("%w: pending query failed: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	pending := []models.PendingMSA{}
	for rows.Next() {
		p := models.PendingMSA{AwaitingParty: input.Party}
		if err := rows.Scan(&p.ID, &p.MSANumber, &p.CounterpartyName, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: pending scan failed: %v", ErrQueryFailed, err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: pending rows failed: %v", ErrQueryFailed, err)
	}
	return pending, nil
}

func (h *Handler) buildOutput(input *Input, pending []models.PendingMSA, fromCache bool) *Output {
	return &Output{
		Party:        input.Party,
		PartyID:      input.PartyID,
		PendingCount: len(pending),
		PendingMSAs:  pending,
		FromCache:    fromCache,
	}
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
