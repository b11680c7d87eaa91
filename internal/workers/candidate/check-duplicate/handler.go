// internal/workers/candidate/check-duplicate/handler.go
package checkduplicate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/common/metrics"
	"vms-workers/internal/common/validation"
	"vms-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "check-duplicate-candidate"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
	ErrQueryFailed  = errors.New("QUERY_EXECUTION_FAILED")
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
	email := NormalizeEmail(input.Email)
	if email == "" || !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	phone := NormalizePhone(input.Phone)
	name := NormalizeName(input.FirstName, input.LastName)

	match, err := h.findMatch(ctx, email, phone, name)
	if err != nil {
		return nil, err
	}
	if match == nil {
		metrics.DuplicateChecks.WithLabelValues("clean").Inc()
		return &Output{IsDuplicate: false}, nil
	}

	if err := h.attachOwnership(ctx, match); err != nil {
		return nil, err
	}

	metrics.DuplicateChecks.WithLabelValues("duplicate").Inc()
	h.logger.Info("duplicate candidate detected", map[string]interface{}{
		"candidateId": match.CandidateID,
		"matchReason": match.MatchReason,
	})

	return &Output{IsDuplicate: true, Duplicate: match}, nil
}

// findMatch scans for any existing candidate matching the normalized email,
// phone or full name, and classifies the match. Candidate rows keep email and
// phone in normalized form, so the comparison is plain equality.
func (h *Handler) findMatch(ctx context.Context, email, phone, name string) (*models.DuplicateMatch, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone
		FROM candidates
		WHERE email = $1
		   OR ($2 <> '' AND phone = $2)
		   OR ($3 <> '' AND lower(first_name || ' ' || last_name) = $3)
		ORDER BY created_at ASC`,
		email, phone, name)
	if err != nil {
		return nil, fmt.Errorf("%w: candidate query failed: %v", ErrQueryFailed, err)
	}
	defer rows.Close()

	var match *models.DuplicateMatch
	for rows.Next() {
		var c models.Candidate
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone); err != nil {
			return nil, fmt.Errorf("%w: candidate scan failed: %v", ErrQueryFailed, err)
		}
		reason := classify(&c, email, phone, name)
		if match == nil {
			match = &models.DuplicateMatch{
				CandidateID: c.ID,
				FullName:    c.FirstName + " " + c.LastName,
				MatchReason: reason,
			}
			continue
		}
		// Several distinct candidates matched on different criteria.
		if match.MatchReason != reason {
			match.MatchReason = models.MatchReasonMultiple
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: candidate rows failed: %v", ErrQueryFailed, err)
	}
	return match, nil
}

// classify reports which criteria an existing candidate matched on. A hit on
// more than one criterion is MULTIPLE; otherwise the most specific single
// reason wins (email over phone over name).
func classify(c *models.Candidate, email, phone, name string) string {
	hits := 0
	reason := ""
	if NormalizeEmail(c.Email) == email {
		hits++
		reason = models.MatchReasonEmail
	}
	if phone != "" && NormalizePhone(c.Phone) == phone {
		hits++
		if reason == "" {
			reason = models.MatchReasonPhone
		}
	}
	if name != "" && NormalizeName(c.FirstName, c.LastName) == name {
		hits++
		if reason == "" {
			reason = models.MatchReasonName
		}
	}
	if hits > 1 {
		return models.MatchReasonMultiple
	}
	return reason
}

// attachOwnership fills in the active fee-protection window, when one exists.
func (h *Handler) attachOwnership(ctx context.Context, match *models.DuplicateMatch) error {
	var o models.CandidateOwnership
	var bureauName string
	err := h.db.QueryRowContext(ctx, `
		SELECT o.bureau_id, b.name, o.submitted_at, o.ownership_expires_at
		FROM candidate_ownerships o
		JOIN bureaus b ON b.id = o.bureau_id
		WHERE o.candidate_id = $1 AND o.ownership_expires_at > NOW()
		ORDER BY o.submitted_at DESC
		LIMIT 1`, match.CandidateID,
	).Scan(&o.BureauID, &bureauName, &o.SubmittedAt, &o.OwnershipExpiresAt)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: ownership query failed: %v", ErrQueryFailed, err)
	}

	match.OwningBureauID = o.BureauID
	match.OwningBureauName = bureauName
	match.SubmittedAt = &o.SubmittedAt
	match.FeeProtectionExpiresAt = &o.OwnershipExpiresAt
	return nil
}

// NormalizeEmail lowercases and trims an email for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips everything except digits, keeping a leading plus.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeName lowercases and collapses interior whitespace in "first last".
func NormalizeName(first, last string) string {
	full := strings.TrimSpace(first) + " " + strings.TrimSpace(last)
	full = strings.ToLower(strings.TrimSpace(full))
	if full == "" {
		return ""
	}
	return strings.Join(strings.Fields(full), " ")
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
