// Package wizard implements the contract creation wizard: a linear five-step
// machine whose navigation clamps at both ends, plus a redis-backed session
// store. Step validation lives here so the server, not the client, owns it.
package wizard

import (
	"fmt"
	"time"

	"vms-workers/internal/models"
)

// Wizard steps, in order.
const (
	StepType    = 0 // contract type selection
	StepParties = 1 // company, bureau, candidate, MSA
	StepTerms   = 2 // dates and employment terms
	StepRates   = 3 // rate card / salary and fees
	StepReview  = 4 // read-only summary
	StepCount   = 5
)

var stepNames = [StepCount]string{"type", "parties", "terms", "rates", "review"}

// StepName returns the symbolic name for a step index.
func StepName(step int) string {
	if step < 0 || step >= StepCount {
		return "unknown"
	}
	return stepNames[step]
}

// FieldError is a per-field validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Session is one in-progress wizard run. Version increments on every applied
// change; the store refuses writes that would go backwards.
type Session struct {
	ID        string               `json:"id"`
	UserID    string               `json:"userId"`
	Step      int                  `json:"step"`
	Draft     models.ContractDraft `json:"draft"`
	Version   int                  `json:"version"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// NewSession starts a session at the first step.
func NewSession(id, userID string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		UserID:    userID,
		Step:      StepType,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Next advances one step after validating the current one. At the last step
// it is a no-op. Validation failures leave the step unchanged.
func (s *Session) Next() []FieldError {
	if s.Step >= StepReview {
		return nil
	}
	if errs := s.ValidateStep(s.Step); len(errs) > 0 {
		return errs
	}
	s.Step++
	s.touch()
	return nil
}

// Back moves one step back. At the first step it is a no-op.
func (s *Session) Back() {
	if s.Step <= StepType {
		return
	}
	s.Step--
	s.touch()
}

// MergeFields applies field updates to the draft. Unknown fields are rejected
// so typos in workflow variables surface instead of silently dropping data.
func (s *Session) MergeFields(fields map[string]interface{}) error {
	for name, raw := range fields {
		if err := s.setField(name, raw); err != nil {
			return err
		}
	}
	s.touch()
	return nil
}

func (s *Session) setField(name string, raw interface{}) error {
	d := &s.Draft
	switch name {
	case "contractType":
		return setString(&d.ContractType, name, raw)
	case "templateId":
		return setString(&d.TemplateID, name, raw)
	case "companyId":
		return setString(&d.CompanyID, name, raw)
	case "bureauId":
		return setString(&d.BureauID, name, raw)
	case "candidateId":
		return setString(&d.CandidateID, name, raw)
	case "msaId":
		return setString(&d.MSAID, name, raw)
	case "positionTitle":
		return setString(&d.PositionTitle, name, raw)
	case "startDate":
		return setString(&d.StartDate, name, raw)
	case "endDate":
		return setString(&d.EndDate, name, raw)
	case "probationMonths":
		return setInt(&d.ProbationMonths, name, raw)
	case "noticeMonths":
		return setInt(&d.NoticeMonths, name, raw)
	case "vacationDays":
		return setInt(&d.VacationDays, name, raw)
	case "workingHours":
		return setFloat(&d.WorkingHours, name, raw)
	case "rateCardId":
		return setString(&d.RateCardID, name, raw)
	case "annualSalary":
		return setFloat(&d.AnnualSalary, name, raw)
	case "hourlyRate":
		return setFloat(&d.HourlyRate, name, raw)
	case "durationMonths":
		return setInt(&d.DurationMonths, name, raw)
	case "bureauFeePercentage":
		return setFloat(&d.BureauFeePercentage, name, raw)
	case "bureauFeeAmount":
		return setFloat(&d.BureauFeeAmount, name, raw)
	case "notes":
		return setString(&d.Notes, name, raw)
	case "requiresApproval":
		b, ok := raw.(bool)
		if !ok {
			return fmt.Errorf("field %s: expected boolean, got %T", name, raw)
		}
		d.RequiresApproval = b
		return nil
	default:
		return fmt.Errorf("unknown wizard field: %s", name)
	}
}

func setString(dst *string, name string, raw interface{}) error {
	v, ok := raw.(string)
	if !ok {
		return fmt.Errorf("field %s: expected string, got %T", name, raw)
	}
	*dst = v
	return nil
}

func setInt(dst *int, name string, raw interface{}) error {
	switch v := raw.(type) {
	case float64: // JSON numbers
		*dst = int(v)
	case int:
		*dst = v
	default:
		return fmt.Errorf("field %s: expected number, got %T", name, raw)
	}
	return nil
}

func setFloat(dst *float64, name string, raw interface{}) error {
	switch v := raw.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	default:
		return fmt.Errorf("field %s: expected number, got %T", name, raw)
	}
	return nil
}

// ValidateStep runs the validation rules for one step against the draft.
func (s *Session) ValidateStep(step int) []FieldError {
	d := s.Draft
	var errs []FieldError

	switch step {
	case StepType:
		switch d.ContractType {
		case models.ContractTypePermanent, models.ContractTypeInterim, models.ContractTypeTemporary:
		default:
			errs = append(errs, FieldError{"contractType", "must be VAST, INTERIM or UITZENDEN"})
		}

	case StepParties:
		if d.CompanyID == "" {
			errs = append(errs, FieldError{"companyId", "company is required"})
		}
		if d.BureauID == "" {
			errs = append(errs, FieldError{"bureauId", "bureau is required"})
		}
		if d.CandidateID == "" {
			errs = append(errs, FieldError{"candidateId", "candidate is required"})
		}

	case StepTerms:
		errs = append(errs, ValidateTerms(d)...)

	case StepRates:
		if d.ContractType == models.ContractTypePermanent {
			if d.AnnualSalary <= 0 {
				errs = append(errs, FieldError{"annualSalary", "annual salary is required for permanent contracts"})
			}
		} else {
			if d.HourlyRate <= 0 {
				errs = append(errs, FieldError{"hourlyRate", "hourly rate is required"})
			}
			if d.DurationMonths <= 0 {
				errs = append(errs, FieldError{"durationMonths", "duration is required"})
			}
		}

	case StepReview:
		// Review is read-only; submission re-validates everything.
	}

	return errs
}

// ValidateTerms checks the employment-terms step: numeric bounds plus the
// cross-field date rule.
func ValidateTerms(d models.ContractDraft) []FieldError {
	var errs []FieldError

	start, err := time.Parse("2006-01-02", d.StartDate)
	if err != nil {
		errs = append(errs, FieldError{"startDate", "must be a valid yyyy-MM-dd date"})
	}

	if d.ContractType == models.ContractTypePermanent {
		if d.EndDate != "" {
			errs = append(errs, FieldError{"endDate", "permanent contracts have no end date"})
		}
	} else {
		if d.EndDate == "" {
			errs = append(errs, FieldError{"endDate", "end date is required"})
		} else if end, perr := time.Parse("2006-01-02", d.EndDate); perr != nil {
			errs = append(errs, FieldError{"endDate", "must be a valid yyyy-MM-dd date"})
		} else if err == nil && !end.After(start) {
			errs = append(errs, FieldError{"endDate", "end date must be after start date"})
		}
	}

	if d.ProbationMonths < 0 || d.ProbationMonths > 6 {
		errs = append(errs, FieldError{"probationMonths", "must be between 0 and 6"})
	}
	if d.NoticeMonths < 0 || d.NoticeMonths > 6 {
		errs = append(errs, FieldError{"noticeMonths", "must be between 0 and 6"})
	}
	if d.VacationDays < 20 || d.VacationDays > 40 {
		errs = append(errs, FieldError{"vacationDays", "must be between 20 and 40"})
	}
	if d.WorkingHours < 8 || d.WorkingHours > 40 {
		errs = append(errs, FieldError{"workingHours", "must be between 8 and 40"})
	}

	return errs
}

// ValidateAll validates every data-bearing step, for final submission.
func (s *Session) ValidateAll() []FieldError {
	var errs []FieldError
	for step := StepType; step < StepReview; step++ {
		errs = append(errs, s.ValidateStep(step)...)
	}
	return errs
}

// SubmitPayload flattens the draft for the create-record worker. Dates stay
// in yyyy-MM-dd form.
func (s *Session) SubmitPayload() map[string]interface{} {
	d := s.Draft
	payload := map[string]interface{}{
		"contractType":     d.ContractType,
		"templateId":       d.TemplateID,
		"companyId":        d.CompanyID,
		"bureauId":         d.BureauID,
		"candidateId":      d.CandidateID,
		"msaId":            d.MSAID,
		"positionTitle":    d.PositionTitle,
		"startDate":        d.StartDate,
		"probationMonths":  d.ProbationMonths,
		"noticeMonths":     d.NoticeMonths,
		"vacationDays":     d.VacationDays,
		"workingHours":     d.WorkingHours,
		"rateCardId":       d.RateCardID,
		"notes":            d.Notes,
		"requiresApproval": d.RequiresApproval,
	}
	if d.EndDate != "" {
		payload["endDate"] = d.EndDate
	}
	if d.ContractType == models.ContractTypePermanent {
		payload["annualSalary"] = d.AnnualSalary
	} else {
		payload["hourlyRate"] = d.HourlyRate
		payload["durationMonths"] = d.DurationMonths
	}
	return payload
}

func (s *Session) touch() {
	s.Version++
	s.UpdatedAt = time.Now().UTC()
}
