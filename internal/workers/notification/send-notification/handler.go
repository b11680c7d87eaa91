// internal/workers/notification/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonerrors "vms-workers/internal/common/errors"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-notification"
)

var (
	ErrInvalidInput      = errors.New("INVALID_INPUT")
	ErrRecipientNotFound = errors.New("RECIPIENT_NOT_FOUND")
	ErrTemplateMissing   = errors.New("TEMPLATE_NOT_FOUND")
	ErrSendFailed        = errors.New("NOTIFICATION_SEND_FAILED")
	ErrQueryFailed       = errors.New("QUERY_EXECUTION_FAILED")
)

// EmailSender is satisfied by internal/common/aws.SESClient.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is satisfied by internal/common/aws.SNSClient.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config   *Config
	db       *sql.DB
	email    EmailSender
	sms      SMSSender
	logger   logger.Logger
	errorHdl *commonerrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		db:       db,
		email:    email,
		sms:      sms,
		logger:   scoped,
		errorHdl: commonerrors.NewErrorHandler(scoped),
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
		// Transient delivery and lookup failures go through the retry-aware
		// handler so the engine retries before raising a BPMN error.
		if errors.Is(err, ErrSendFailed) || errors.Is(err, ErrQueryFailed) {
			code := commonerrors.ErrCodeNotificationSendFailed
			if errors.Is(err, ErrQueryFailed) {
				code = commonerrors.ErrCodeQueryExecutionFailed
			}
			h.errorHdl.HandleJobError(ctx, client, job, &commonerrors.StandardError{
				Code:      code,
				Message:   err.Error(),
				Retryable: true,
				Timestamp: time.Now().UTC(),
			})
			return
		}

		errorCode := "UNKNOWN_ERROR"
		switch {
		case errors.Is(err, ErrInvalidInput):
			errorCode = "INVALID_INPUT"
		case errors.Is(err, ErrRecipientNotFound):
			errorCode = "RECIPIENT_NOT_FOUND"
		case errors.Is(err, ErrTemplateMissing):
			errorCode = "TEMPLATE_NOT_FOUND"
		}
		h.failJob(client, job, errorCode, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Type == "" || input.RecipientID == "" {
		return nil, fmt.Errorf("%w: type and recipientId are required", ErrInvalidInput)
	}
	if input.RecipientType != "BUREAU" && input.RecipientType != "COMPANY" {
		return nil, fmt.Errorf("%w: recipientType must be BUREAU or COMPANY, got %q", ErrInvalidInput, input.RecipientType)
	}
	if _, ok := templates[input.Type]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, input.Type)
	}
	priority := input.Priority
	if priority == "" {
		priority = models.NotificationPriorityNormal
	}

	email, phone, err := h.lookupRecipient(ctx, input.RecipientType, input.RecipientID)
	if err != nil {
		return nil, err
	}

	subject, err := render(input.Type, "subject", input.Variables)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMissing, err)
	}
	body, err := render(input.Type, "body", input.Variables)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMissing, err)
	}

	if err := h.sendEmail(ctx, email, subject, body); err != nil {
		return nil, fmt.Errorf("%w: email to %s: %v", ErrSendFailed, email, err)
	}

	output := &Output{
		Type:      input.Type,
		Recipient: email,
		EmailSent: true,
		SentAt:    time.Now().UTC().Format(time.RFC3339),
	}

	// SMS is best-effort on top of a delivered email: a publish failure is
	// logged but does not fail the job.
	if priority == h.config.SMSPriority && phone != "" {
		smsBody, rerr := render(input.Type, "sms", input.Variables)
		if rerr == nil {
			if serr := h.sendSMS(ctx, phone, smsBody); serr != nil {
				h.logger.Warn("sms publish failed", map[string]interface{}{
					"phone": phone,
					"error": serr.Error(),
				})
			} else {
				output.SMSSent = true
			}
		}
	}

	h.logger.Info("notification sent", map[string]interface{}{
		"type":      input.Type,
		"recipient": email,
		"smsSent":   output.SMSSent,
	})

	return output, nil
}

func (h *Handler) lookupRecipient(ctx context.Context, recipientType, recipientID string) (string, string, error) {
	query := `SELECT contact_email, contact_phone FROM bureaus WHERE id = $1`
	if recipientType == "COMPANY" {
		query = `SELECT contact_email, contact_phone FROM companies WHERE id = $1`
	}

	var email, phone sql.NullString
	err := h.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	if err == sql.ErrNoRows {
		return "", "", fmt.Errorf("%w: %s %s", ErrRecipientNotFound, recipientType, recipientID)
	}
	if err != nil {
		return "", "", fmt.Errorf("%w: recipient lookup failed: %v", ErrQueryFailed, err)
	}
	if !email.Valid || email.String == "" {
		return "", "", fmt.Errorf("%w: %s %s has no contact email", ErrRecipientNotFound, recipientType, recipientID)
	}
	return email.String, phone.String, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.SenderEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, phone, body string) error {
	_, err := h.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(body),
	})
	return err
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
