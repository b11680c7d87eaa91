// internal/workers/contract/calculate-fees/handler.go
package calculatefees

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/common/metrics"
	"vms-workers/internal/feecalc"
	"vms-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-fees"
)

var (
	ErrFeeStructureNotFound = errors.New("FEE_STRUCTURE_NOT_FOUND")
	ErrRateCardNotFound     = errors.New("RATE_CARD_NOT_FOUND")
	ErrFeeTypeUnsupported   = errors.New("FEE_TYPE_UNSUPPORTED")
	ErrQueryFailed          = errors.New("QUERY_EXECUTION_FAILED")
	ErrInvalidInput         = errors.New("INVALID_INPUT")
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
		case errors.Is(err, ErrFeeStructureNotFound):
			errorCode = "FEE_STRUCTURE_NOT_FOUND"
		case errors.Is(err, ErrRateCardNotFound):
			errorCode = "RATE_CARD_NOT_FOUND"
		case errors.Is(err, ErrFeeTypeUnsupported):
			errorCode = "FEE_TYPE_UNSUPPORTED"
		case errors.Is(err, ErrQueryFailed):
			errorCode = "QUERY_EXECUTION_FAILED"
		case errors.Is(err, ErrInvalidInput):
			errorCode = "CONTRACT_TERMS_INVALID"
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

	fs, err := h.loadFeeStructure(ctx, input.BureauID)
	if err != nil {
		return nil, err
	}

	output := &Output{FeeStructureID: fs.ID}

	hourlyRate := input.HourlyRate
	if fs.FeeType == models.FeeTypeHourlyMarkup && hourlyRate == 0 {
		rateCardID, lineRate, err := h.firstRateCardLine(ctx, input.BureauID, input.CompanyID)
		if err != nil {
			return nil, err
		}
		output.RateCardID = rateCardID
		hourlyRate = lineRate
	}
	output.HourlyRateUsed = hourlyRate

	calc, err := feecalc.Calculate(*fs, feecalc.ContractParams{
		ContractType:   input.ContractType,
		AnnualSalary:   input.AnnualSalary,
		HourlyRate:     hourlyRate,
		DurationMonths: input.DurationMonths,
		HoursPerMonth:  h.config.HoursPerMonth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFeeTypeUnsupported, err)
	}
	output.Fees = calc

	metrics.FeeCalculations.WithLabelValues(fs.FeeType).Inc()

	h.logger.Info("fees calculated", map[string]interface{}{
		"bureauId": input.BureauID,
		"feeType":  fs.FeeType,
		"totalFee": calc.TotalFee,
	})

	return output, nil
}

// loadFeeStructure finds the bureau's default active fee structure, reading
// through a redis cache.
func (h *Handler) loadFeeStructure(ctx context.Context, bureauID string) (*models.FeeStructure, error) {
	cacheKey := "fees:structure:" + bureauID

	if cached, err := h.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var fs models.FeeStructure
		if uerr := json.Unmarshal(cached, &fs); uerr == nil && fs.ID != "" {
			return &fs, nil
		}
	} else if err != redis.Nil {
		h.logger.Warn("fee structure cache read failed", map[string]interface{}{"error": err.Error()})
	}

	var fs models.FeeStructure
	err := h.db.QueryRowContext(ctx, `
		SELECT id, bureau_id, name, fee_type, placement_fee_percentage,
		       fixed_placement_fee, hourly_markup_percentage,
		       payment_terms_days, guarantee_period_days, currency, is_default
		FROM fee_structures
		WHERE bureau_id = $1 AND active = true
		ORDER BY is_default DESC, created_at DESC
		LIMIT 1`, bureauID,
	).Scan(&fs.ID, &fs.BureauID, &fs.Name, &fs.FeeType, &fs.PlacementFeePercentage,
		&fs.FixedPlacementFee, &fs.HourlyMarkupPercentage,
		&fs.PaymentTermsDays, &fs.GuaranteePeriodDays, &fs.Currency, &fs.IsDefault)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no fee structure for bureau %s", ErrFeeStructureNotFound, bureauID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fee structure query failed: %v", ErrQueryFailed, err)
	}
	fs.Active = true

	if data, merr := json.Marshal(fs); merr == nil {
		if serr := h.redis.Set(ctx, cacheKey, data, h.config.FeeStructureTTL).Err(); serr != nil {
			h.logger.Warn("fee structure cache write failed", map[string]interface{}{"error": serr.Error()})
		}
	}

	return &fs, nil
}

// firstRateCardLine returns the first line of the active rate card for the
// bureau/company pair. Using the first line is a known simplification; role
// selection comes with multi-line support.
func (h *Handler) firstRateCardLine(ctx context.Context, bureauID, companyID string) (string, float64, error) {
	var (
		rateCardID string
		hourlyRate float64
	)
	err := h.db.QueryRowContext(ctx, `
		SELECT rc.id, rcl.hourly_rate
		FROM rate_cards rc
		JOIN rate_card_lines rcl ON rcl.rate_card_id = rc.id
		WHERE rc.bureau_id = $1 AND rc.company_id = $2 AND rc.active = true
		ORDER BY rcl.position ASC
		LIMIT 1`, bureauID, companyID,
	).Scan(&rateCardID, &hourlyRate)

	if err == sql.ErrNoRows {
		return "", 0, fmt.Errorf("%w: no rate card for bureau %s and company %s",
			ErrRateCardNotFound, bureauID, companyID)
	}
	if err != nil {
		return "", 0, fmt.Errorf("%w: rate card query failed: %v", ErrQueryFailed, err)
	}
	return rateCardID, hourlyRate, nil
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
