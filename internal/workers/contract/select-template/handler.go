// internal/workers/contract/select-template/handler.go
package selecttemplate

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
	TaskType = "select-template"
)

var (
	ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")
	ErrInvalidInput     = errors.New("INVALID_INPUT")
	ErrQueryFailed      = errors.New("QUERY_EXECUTION_FAILED")
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
			errorCode = "CONTRACT_TERMS_INVALID"
		case errors.Is(err, ErrTemplateNotFound):
			errorCode = "TEMPLATE_NOT_FOUND"
		case errors.Is(err, ErrQueryFailed):
			errorCode = "QUERY_EXECUTION_FAILED"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.ContractType {
	case models.ContractTypePermanent, models.ContractTypeInterim, models.ContractTypeTemporary:
	default:
		return nil, fmt.Errorf("%w: unknown contract type %q", ErrInvalidInput, input.ContractType)
	}

	cacheKey := "contract:templates:" + input.ContractType

	// Cache hit path; cache failures fall through to the database
	if cached, err := h.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		var templates []models.ContractTemplate
		if uerr := json.Unmarshal(cached, &templates); uerr == nil && len(templates) > 0 {
			return h.buildOutput(templates, true), nil
		}
	} else if err != redis.Nil {
		h.logger.Warn("template cache read failed", map[string]interface{}{"error": err.Error()})
	}

	templates, err := h.fetchTemplates(ctx, input.ContractType)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: no active templates for contract type %s", ErrTemplateNotFound, input.ContractType)
	}

	if data, merr := json.Marshal(templates); merr == nil {
		if serr := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); serr != nil {
			h.logger.Warn("template cache write failed", map[string]interface{}{"error": serr.Error()})
		}
	}

	return h.buildOutput(templates, false), nil
}

func (h *Handler) fetchTemplates(ctx context.Context, contractType string) ([]models.ContractTemplate, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, name, contract_type, language, is_default, created_at
		FROM contract_templates
		WHERE contract_type = $1 AND active = true
		ORDER BY is_default DESC, name ASC`, contractType)
	if err != nil {
		return nil, fmt.Errorf("%w: template query failed: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var templates []models.ContractTemplate
	for rows.Next() {
		var t models.ContractTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.ContractType, &t.Language, &t.IsDefault, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: template scan failed: %v", ErrQueryFailed, err)
		}
		t.Active = true
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: template rows failed: %v", ErrQueryFailed, err)
	}
	return templates, nil
}

// buildOutput picks the default template when one is flagged, otherwise the
// first in the stable ordering.
func (h *Handler) buildOutput(templates []models.ContractTemplate, fromCache bool) *Output {
	selected := templates[0].ID
	for _, t := range templates {
		if t.IsDefault {
			selected = t.ID
			break
		}
	}
	return &Output{
		Templates:          templates,
		SelectedTemplateID: selected,
		FromCache:          fromCache,
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
