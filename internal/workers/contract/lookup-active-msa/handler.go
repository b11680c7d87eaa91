// internal/workers/contract/lookup-active-msa/handler.go
package lookupactivemsa

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vms-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "lookup-active-msa"
)

var (
	ErrNoActiveMSA  = errors.New("NO_ACTIVE_MSA")
	ErrLookupFailed = errors.New("MSA_LOOKUP_FAILED")
	ErrInvalidInput = errors.New("INVALID_INPUT")
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
		case errors.Is(err, ErrNoActiveMSA):
			errorCode = "NO_ACTIVE_MSA"
		case errors.Is(err, ErrLookupFailed):
			errorCode = "MSA_LOOKUP_FAILED"
		case errors.Is(err, ErrInvalidInput):
			errorCode = "CONTRACT_TERMS_INVALID"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.CompanyID == "" || input.BureauID == "" {
		return nil, fmt.Errorf("%w: companyId and bureauId are required", ErrInvalidInput)
	}

	var (
		output         Output
		effectiveDate  time.Time
		expirationDate time.Time
	)

	// Only one MSA can be ACTIVE per pair; ORDER BY guards against data
	// drift by preferring the most recent effective date.
	err := h.db.QueryRowContext(ctx, `
		SELECT id, msa_number, status, effective_date, expiration_date
		FROM msas
		WHERE company_id = $1 AND bureau_id = $2
		  AND status = 'ACTIVE'
		  AND effective_date <= NOW()
		  AND expiration_date > NOW()
		ORDER BY effective_date DESC
		LIMIT 1`,
		input.CompanyID, input.BureauID,
	).Scan(&output.MSAID, &output.MSANumber, &output.Status, &effectiveDate, &expirationDate)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no active MSA for company %s and bureau %s",
			ErrNoActiveMSA, input.CompanyID, input.BureauID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: MSA lookup failed: %v", ErrLookupFailed, err)
	}

	output.EffectiveDate = effectiveDate.Format("2006-01-02")
	output.ExpirationDate = expirationDate.Format("2006-01-02")
	output.HasActiveMSA = true

	h.logger.Info("active MSA found", map[string]interface{}{
		"msaId":     output.MSAID,
		"msaNumber": output.MSANumber,
		"companyId": input.CompanyID,
		"bureauId":  input.BureauID,
	})

	return &output, nil
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
