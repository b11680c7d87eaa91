// internal/workers/msa/record-approval/handler.go
package recordapproval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "record-msa-approval"
)

var (
	ErrMSANotFound         = errors.New("MSA_NOT_FOUND")
	ErrAlreadyDecided      = errors.New("MSA_ALREADY_DECIDED")
	ErrRejectReasonMissing = errors.New("MSA_REJECT_REASON_REQUIRED")
	ErrInvalidInput        = errors.New("INVALID_INPUT")
	ErrUpdateFailed        = errors.New("DATABASE_INSERT_FAILED")
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
		case errors.Is(err, ErrMSANotFound):
			errorCode = "MSA_NOT_FOUND"
		case errors.Is(err, ErrAlreadyDecided):
			errorCode = "MSA_ALREADY_DECIDED"
		case errors.Is(err, ErrRejectReasonMissing):
			errorCode = "MSA_REJECT_REASON_REQUIRED"
		case errors.Is(err, ErrInvalidInput):
			errorCode = "CONTRACT_TERMS_INVALID"
		case errors.Is(err, ErrUpdateFailed):
			errorCode = "DATABASE_INSERT_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.MSAID == "" || input.DecidedBy == "" {
		return nil, fmt.Errorf("%w: msaId and decidedBy are required", ErrInvalidInput)
	}
	if input.Party != models.MSAPartyCompany && input.Party != models.MSAPartyBureau {
		return nil, fmt.Errorf("%w: party must be COMPANY or BUREAU, got %q", ErrInvalidInput, input.Party)
	}

	switch input.Decision {
	case DecisionApprove:
		return h.approve(ctx, input)
	case DecisionReject:
		return h.reject(ctx, input)
	default:
		return nil, fmt.Errorf("%w: decision must be APPROVE or REJECT, got %q", ErrInvalidInput, input.Decision)
	}
}

// approve stamps the party's signature inside a transaction. The UPDATE is
// conditional on the signature column still being NULL, so two concurrent
// approvals for the same party cannot both win; the status transition to
// FULLY_SIGNED/ACTIVE happens in the same transaction off the fresh row.
func (h *Handler) approve(ctx context.Context, input *Input) (*Output, error) {
	now := time.Now().UTC()
	output := &Output{MSAID: input.MSAID, DecidedAt: now.Format(time.RFC3339)}

	signedAtCol := "company_signed_at"
	signedByCol := "company_signed_by"
	if input.Party == models.MSAPartyBureau {
		signedAtCol = "bureau_signed_at"
		signedByCol = "bureau_signed_by"
	}

	err := h.pg.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE msas
			SET %s = $1, %s = $2, updated_at = $1
			WHERE id = $3
			  AND status IN ('DRAFT', 'PENDING_SIGNATURES')
			  AND %s IS NULL`, signedAtCol, signedByCol, signedAtCol),
			now, input.DecidedBy, input.MSAID)
		if err != nil {
			return fmt.Errorf("%w: signature update failed: %v", ErrUpdateFailed, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: rows affected: %v", ErrUpdateFailed, err)
		}
		if affected == 0 {
			return h.classifyNoop(ctx, tx, input.MSAID)
		}

		var (
			companySignedAt sql.NullTime
			bureauSignedAt  sql.NullTime
			effectiveDate   time.Time
		)
		err = tx.QueryRowContext(ctx, `
			SELECT company_signed_at, bureau_signed_at, effective_date
			FROM msas WHERE id = $1`, input.MSAID,
		).Scan(&companySignedAt, &bureauSignedAt, &effectiveDate)
		if err != nil {
			return fmt.Errorf("%w: signature readback failed: %v", ErrUpdateFailed, err)
		}

		status := models.MSAStatusPendingSignatures
		if companySignedAt.Valid && bureauSignedAt.Valid {
			status = models.MSAStatusFullySigned
			if !effectiveDate.After(now) {
				status = models.MSAStatusActive
			}
			output.FullySigned = true
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE msas SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, input.MSAID); err != nil {
			return fmt.Errorf("%w: status update failed: %v", ErrUpdateFailed, err)
		}
		output.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("MSA approval recorded", map[string]interface{}{
		"msaId":       input.MSAID,
		"party":       input.Party,
		"status":      output.Status,
		"fullySigned": output.FullySigned,
	})

	return output, nil
}

// classifyNoop distinguishes a missing MSA from one whose signature slot is
// already taken or whose status moved on.
func (h *Handler) classifyNoop(ctx context.Context, tx *sql.Tx, msaID string) error {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM msas WHERE id = $1`, msaID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: MSA %s does not exist", ErrMSANotFound, msaID)
	}
	if err != nil {
		return fmt.Errorf("%w: status lookup failed: %v", ErrUpdateFailed, err)
	}
	return fmt.Errorf("%w: MSA %s is %s or this party already signed", ErrAlreadyDecided, msaID, status)
}

func (h *Handler) reject(ctx context.Context, input *Input) (*Output, error) {
	if input.RejectReason == "" {
		return nil, fmt.Errorf("%w: rejection of MSA %s requires a reason", ErrRejectReasonMissing, input.MSAID)
	}

	now := time.Now().UTC()
	res, err := h.pg.Exec(ctx, `
		UPDATE msas
		SET status = 'REJECTED', rejected_by = $1, reject_reason = $2, updated_at = $3
		WHERE id = $4 AND status IN ('DRAFT', 'PENDING_SIGNATURES')`,
		input.DecidedBy, input.RejectReason, now, input.MSAID)
	if err != nil {
		return nil, fmt.Errorf("%w: rejection update failed: %v", ErrUpdateFailed, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%w: rows affected: %v", ErrUpdateFailed, err)
	}
	if affected == 0 {
		var status string
		serr := h.pg.QueryRow(ctx, `SELECT status FROM msas WHERE id = $1`, input.MSAID).Scan(&status)
		if serr == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: MSA %s does not exist", ErrMSANotFound, input.MSAID)
		}
		return nil, fmt.Errorf("%w: MSA %s is already %s", ErrAlreadyDecided, input.MSAID, status)
	}

	h.logger.Info("MSA rejection recorded", map[string]interface{}{
		"msaId": input.MSAID,
		"party": input.Party,
	})

	return &Output{
		MSAID:     input.MSAID,
		Status:    models.MSAStatusRejected,
		DecidedAt: now.Format(time.RFC3339),
	}, nil
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
