// internal/workers/contract/advance-wizard/handler.go
package advancewizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/wizard"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "advance-wizard"
)

var (
	ErrEventInvalid = errors.New("WIZARD_EVENT_INVALID")
)

type Handler struct {
	config *Config
	store  *wizard.SessionStore
	logger logger.Logger
}

func NewHandler(config *Config, store *wizard.SessionStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
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
		case errors.Is(err, wizard.ErrSessionNotFound):
			errorCode = "WIZARD_SESSION_NOT_FOUND"
		case errors.Is(err, ErrEventInvalid):
			errorCode = "WIZARD_EVENT_INVALID"
		case errors.Is(err, wizard.ErrVersionConflict):
			errorCode = "WIZARD_SESSION_CONFLICT"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Event == EventStart {
		sessionID := input.SessionID
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		session := wizard.NewSession(sessionID, input.UserID)
		if err := h.store.Save(ctx, session); err != nil {
			return nil, err
		}
		return h.buildOutput(session, false, nil), nil
	}

	session, err := h.store.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	var (
		clamped bool
		errs    []wizard.FieldError
	)

	switch input.Event {
	case EventNext:
		before := session.Step
		errs = session.Next()
		clamped = len(errs) == 0 && session.Step == before

	case EventBack:
		before := session.Step
		session.Back()
		clamped = session.Step == before

	case EventSetFields:
		if err := session.MergeFields(input.Fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEventInvalid, err)
		}

	default:
		return nil, fmt.Errorf("%w: unknown event %q", ErrEventInvalid, input.Event)
	}

	// Unclamped navigation and field changes advance the version and must
	// be persisted; a clamped no-op leaves the stored session untouched.
	if !clamped && len(errs) == 0 {
		if err := h.store.Save(ctx, session); err != nil {
			return nil, err
		}
	}

	return h.buildOutput(session, clamped, errs), nil
}

func (h *Handler) buildOutput(session *wizard.Session, clamped bool, errs []wizard.FieldError) *Output {
	output := &Output{
		SessionID:        session.ID,
		Step:             session.Step,
		StepName:         wizard.StepName(session.Step),
		Version:          session.Version,
		Clamped:          clamped,
		ValidationErrors: errs,
	}
	if session.Step == wizard.StepReview && len(session.ValidateAll()) == 0 {
		output.SubmitPayload = session.SubmitPayload()
	}
	return output
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
