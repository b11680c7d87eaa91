// internal/workers/candidate/create-record/handler.go
package createrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/common/validation"

	checkduplicate "vms-workers/internal/workers/candidate/check-duplicate"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-candidate-record"
)

var (
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrDuplicateCandidate = errors.New("DUPLICATE_CANDIDATE")
	ErrInsertFailed       = errors.New("DATABASE_INSERT_FAILED")
	ErrQueryFailed        = errors.New("QUERY_EXECUTION_FAILED")
)

type Handler struct {
	config *Config
	pg     *database.PostgresClient
	logger logger.Logger
}

func NewHandler(config *Config, pg *database.PostgresClient, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		pg:     pg,
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
		case errors.Is(err, ErrDuplicateCandidate):
			errorCode = "DUPLICATE_CANDIDATE"
		case errors.Is(err, ErrInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
		case errors.Is(err, ErrQueryFailed):
			errorCode = "QUERY_EXECUTION_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.BureauID == "" || input.FirstName == "" || input.LastName == "" {
		return nil, fmt.Errorf("%w: bureauId, firstName and lastName are required", ErrInvalidInput)
	}
	email := checkduplicate.NormalizeEmail(input.Email)
	if !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	phone := checkduplicate.NormalizePhone(input.Phone)
	name := checkduplicate.NormalizeName(input.FirstName, input.LastName)

	// The duplicate refusal is authoritative here: any existing candidate
	// matching email, phone or full name blocks the submission regardless of
	// what the submitting client checked.
	if err := h.refuseIfDuplicate(ctx, email, phone, name); err != nil {
		return nil, err
	}

	windowDays, err := h.ownershipWindowDays(ctx, input.BureauID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expires := now.AddDate(0, 0, windowDays)
	candidateID := uuid.New().String()
	ownershipID := uuid.New().String()

	err = h.pg.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO candidates (id, first_name, last_name, email, phone, bureau_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			candidateID, input.FirstName, input.LastName, email, phone, input.BureauID, now); err != nil {
			return fmt.Errorf("%w: candidate insert failed: %v", ErrInsertFailed, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO candidate_ownerships (id, candidate_id, bureau_id, submitted_at, ownership_expires_at)
			VALUES ($1, $2, $3, $4, $5)`,
			ownershipID, candidateID, input.BureauID, now, expires); err != nil {
			return fmt.Errorf("%w: ownership insert failed: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("candidate recorded with fee protection", map[string]interface{}{
		"candidateId":        candidateID,
		"bureauId":           input.BureauID,
		"ownershipExpiresAt": expires.Format(time.RFC3339),
	})

	return &Output{
		CandidateID:        candidateID,
		OwnershipID:        ownershipID,
		BureauID:           input.BureauID,
		SubmittedAt:        now.Format(time.RFC3339),
		OwnershipExpiresAt: expires.Format(time.RFC3339),
	}, nil
}

func (h *Handler) refuseIfDuplicate(ctx context.Context, email, phone, name string) error {
	var existingID string
	err := h.pg.QueryRow(ctx, `
		SELECT id FROM candidates
		WHERE email = $1
		   OR ($2 <> '' AND phone = $2)
		   OR ($3 <> '' AND lower(first_name || ' ' || last_name) = $3)
		ORDER BY created_at ASC
		LIMIT 1`, email, phone, name).Scan(&existingID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: duplicate guard query failed: %v", ErrQueryFailed, err)
	}
	return fmt.Errorf("%w: candidate %s already exists", ErrDuplicateCandidate, existingID)
}

// ownershipWindowDays reads guaranteePeriodDays off the bureau's default fee
// structure, falling back to the configured window when none is set.
func (h *Handler) ownershipWindowDays(ctx context.Context, bureauID string) (int, error) {
	var days sql.NullInt64
	err := h.pg.QueryRow(ctx, `
		SELECT guarantee_period_days FROM fee_structures
		WHERE bureau_id = $1 AND active = true
		ORDER BY is_default DESC, created_at DESC
		LIMIT 1`, bureauID).Scan(&days)
	if err == sql.ErrNoRows {
		return h.config.DefaultOwnershipDays, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: fee structure query failed: %v", ErrQueryFailed, err)
	}
	if !days.Valid || days.Int64 <= 0 {
		return h.config.DefaultOwnershipDays, nil
	}
	return int(days.Int64), nil
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
