// internal/workers/contract/create-record/handler.go
package createrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"
	"vms-workers/internal/wizard"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-contract-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateContract    = errors.New("DUPLICATE_CONTRACT")
	ErrTermsInvalid         = errors.New("CONTRACT_TERMS_INVALID")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
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
		case errors.Is(err, ErrTermsInvalid):
			errorCode = "CONTRACT_TERMS_INVALID"
		case errors.Is(err, ErrDuplicateContract):
			errorCode = "DUPLICATE_CONTRACT"
		case errors.Is(err, ErrDatabaseInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	d := input.Draft

	// The wizard validated per step; submission re-validates everything so
	// a client that skipped steps cannot slip an invalid draft through.
	if errs := wizard.ValidateTerms(d); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrTermsInvalid, strings.Join(msgs, "; "))
	}
	if d.CompanyID == "" || d.BureauID == "" || d.CandidateID == "" {
		return nil, fmt.Errorf("%w: companyId, bureauId and candidateId are required", ErrTermsInvalid)
	}

	// One live contract per candidate/company pair
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM contracts
			WHERE candidate_id = $1 AND company_id = $2
			  AND status NOT IN ('TERMINATED', 'EXPIRED')
		)`, d.CandidateID, d.CompanyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: contract already exists for candidate %s at company %s",
			ErrDuplicateContract, d.CandidateID, d.CompanyID)
	}

	contractID := uuid.New().String()
	contractNumber := fmt.Sprintf("CTR-%d-%s", time.Now().UTC().Year(), strings.ToUpper(contractID[:8]))
	createdAt := time.Now().UTC().Format(time.RFC3339)

	status := models.ContractStatusDraft
	if d.RequiresApproval {
		status = models.ContractStatusPendingApproval
	}

	feesJSON := []byte("null")
	if input.Fees != nil {
		if data, merr := json.Marshal(input.Fees); merr == nil {
			feesJSON = data
		}
	}

	var endDate interface{}
	if d.EndDate != "" {
		endDate = d.EndDate
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO contracts (
			id, contract_number, status, contract_type, template_id,
			company_id, bureau_id, candidate_id, msa_id, position_title,
			start_date, end_date, probation_months, notice_months,
			vacation_days, working_hours, rate_card_id, annual_salary,
			hourly_rate, duration_months, fees, notes, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		          $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $24)`,
		contractID, contractNumber, status, d.ContractType, d.TemplateID,
		d.CompanyID, d.BureauID, d.CandidateID, d.MSAID, d.PositionTitle,
		d.StartDate, endDate, d.ProbationMonths, d.NoticeMonths,
		d.VacationDays, d.WorkingHours, d.RateCardID, d.AnnualSalary,
		d.HourlyRate, d.DurationMonths, feesJSON, d.Notes, input.CreatedBy,
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit entry is non-critical, log failures and continue
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"contractNumber": contractNumber,
		"contractType":   d.ContractType,
		"companyId":      d.CompanyID,
		"bureauId":       d.BureauID,
		"candidateId":    d.CandidateID,
		"status":         status,
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"contract_created", "contract", contractID, auditDetailsJSON, createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":      err,
			"contractId": contractID,
		})
	}

	h.logger.Info("contract record created", map[string]interface{}{
		"contractId":     contractID,
		"contractNumber": contractNumber,
		"status":         status,
	})

	return &Output{
		ContractID:     contractID,
		ContractNumber: contractNumber,
		ContractStatus: status,
		CreatedAt:      createdAt,
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
