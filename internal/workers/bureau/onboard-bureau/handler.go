// internal/workers/bureau/onboard-bureau/handler.go
package onboardbureau

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vms-workers/internal/common/bizregistry"
	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/common/validation"
	"vms-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "onboard-bureau"
)

var (
	ErrInvalidInput     = errors.New("INVALID_INPUT")
	ErrRegistryLookup   = errors.New("REGISTRY_LOOKUP_FAILED")
	ErrCompanyNotInGood = errors.New("COMPANY_NOT_IN_GOOD_STANDING")
	ErrBureauExists     = errors.New("BUREAU_ALREADY_EXISTS")
	ErrInsertFailed     = errors.New("DATABASE_INSERT_FAILED")
	ErrQueryFailed      = errors.New("QUERY_EXECUTION_FAILED")
)

// RegistryLookup is the slice of the business-registry client this worker
// needs; satisfied by *bizregistry.Client.
type RegistryLookup interface {
	GetCompany(ctx context.Context, orgNumber string) (*bizregistry.CompanyRecord, error)
}

type Handler struct {
	config   *Config
	pg       *database.PostgresClient
	registry RegistryLookup
	logger   logger.Logger
}

func NewHandler(config *Config, pg *database.PostgresClient, registry RegistryLookup, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		pg:       pg,
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		case errors.Is(err, ErrRegistryLookup):
			errorCode = "REGISTRY_LOOKUP_FAILED"
		case errors.Is(err, ErrCompanyNotInGood):
			errorCode = "COMPANY_NOT_IN_GOOD_STANDING"
		case errors.Is(err, ErrBureauExists):
			errorCode = "BUREAU_ALREADY_EXISTS"
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
	if errs := h.validateInput(input); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, errs)
	}

	registryName := ""
	if !h.config.SkipRegistryValidation {
		record, err := h.registry.GetCompany(ctx, input.OrgNumber)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRegistryLookup, err)
		}
		if !record.IsActive() {
			return nil, fmt.Errorf("%w: %s is bankrupt or under liquidation", ErrCompanyNotInGood, input.OrgNumber)
		}
		registryName = record.Name
	}

	var existingID string
	err := h.pg.QueryRow(ctx, `SELECT id FROM bureaus WHERE org_number = $1`, input.OrgNumber).Scan(&existingID)
	if err == nil {
		return nil, fmt.Errorf("%w: org number %s is registered as bureau %s", ErrBureauExists, input.OrgNumber, existingID)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("%w: bureau lookup failed: %v", ErrQueryFailed, err)
	}

	now := time.Now().UTC()
	bureauID := uuid.New().String()
	feeStructureID := uuid.New().String()

	err = h.pg.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO bureaus (id, name, org_number, contact_name, contact_email, contact_phone, website, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
			bureauID, input.Name, input.OrgNumber, input.ContactName, input.ContactEmail,
			input.ContactPhone, input.Website, models.BureauStatusPendingReview, now); err != nil {
			return fmt.Errorf("%w: bureau insert failed: %v", ErrInsertFailed, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fee_structures (id, bureau_id, name, fee_type, placement_fee_percentage, fixed_placement_fee, hourly_markup_percentage, payment_terms_days, guarantee_period_days, currency, is_default, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, 0, $6, $7, $8, true, true, $9, $9)`,
			feeStructureID, bureauID, "Standard placement fee", models.FeeTypePercentage,
			h.config.DefaultFeePercentage, h.config.DefaultPaymentTerms,
			h.config.DefaultGuaranteeDays, h.config.DefaultCurrency, now); err != nil {
			return fmt.Errorf("%w: fee structure insert failed: %v", ErrInsertFailed, err)
		}

		// Audit is written in the same transaction; onboarding without a
		// trace row is not acceptable for this flow.
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
			VALUES ('bureau_onboarded', 'bureau', $1, $2, $3)`,
			bureauID, fmt.Sprintf(`{"actor": %q, "orgNumber": %q}`, input.ContactEmail, input.OrgNumber), now); err != nil {
			return fmt.Errorf("%w: audit insert failed: %v", ErrInsertFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("bureau onboarded", map[string]interface{}{
		"bureauId":  bureauID,
		"orgNumber": input.OrgNumber,
		"status":    models.BureauStatusPendingReview,
	})

	return &Output{
		BureauID:       bureauID,
		FeeStructureID: feeStructureID,
		Status:         models.BureauStatusPendingReview,
		RegistryName:   registryName,
	}, nil
}

func (h *Handler) validateInput(input *Input) []string {
	var errs []string
	if input.Name == "" {
		errs = append(errs, "name is required")
	}
	if !validation.ValidateOrgNumber(input.OrgNumber) {
		errs = append(errs, "orgNumber must be a 9-digit organization number")
	}
	if input.ContactName == "" {
		errs = append(errs, "contactName is required")
	}
	if !validation.ValidateEmail(input.ContactEmail) {
		errs = append(errs, "contactEmail must be a valid email")
	}
	if input.ContactPhone != "" && !validation.ValidatePhone(input.ContactPhone) {
		errs = append(errs, "contactPhone must be a valid phone number")
	}
	if input.Website != "" && !validation.ValidateURL(input.Website) {
		errs = append(errs, "website must be a valid URL")
	}
	return errs
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
