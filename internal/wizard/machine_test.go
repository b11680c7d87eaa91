package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vms-workers/internal/models"
)

func validInterimDraft() models.ContractDraft {
	return models.ContractDraft{
		ContractType:   models.ContractTypeInterim,
		CompanyID:      "company-1",
		BureauID:       "bureau-1",
		CandidateID:    "candidate-1",
		StartDate:      "2026-10-01",
		EndDate:        "2027-03-31",
		ProbationMonths: 1,
		NoticeMonths:   1,
		VacationDays:   25,
		WorkingHours:   40,
		HourlyRate:     75,
		DurationMonths: 6,
	}
}

func TestNavigationClampsAtBounds(t *testing.T) {
	s := NewSession("sess-1", "user-1")

	// Back at the first step is a no-op
	s.Back()
	assert.Equal(t, StepType, s.Step)

	s.Draft = validInterimDraft()
	for i := 0; i < StepCount+3; i++ {
		s.Next()
	}
	// Next at the last step is a no-op
	assert.Equal(t, StepReview, s.Step)
}

func TestNextBlockedByInvalidStep(t *testing.T) {
	s := NewSession("sess-2", "user-1")

	errs := s.Next()
	require.NotEmpty(t, errs)
	assert.Equal(t, StepType, s.Step)
	assert.Equal(t, "contractType", errs[0].Field)

	require.NoError(t, s.MergeFields(map[string]interface{}{"contractType": "INTERIM"}))
	errs = s.Next()
	assert.Empty(t, errs)
	assert.Equal(t, StepParties, s.Step)
}

func TestMergeFieldsRejectsUnknownAndWrongTypes(t *testing.T) {
	s := NewSession("sess-3", "user-1")

	err := s.MergeFields(map[string]interface{}{"salaryBand": "A"})
	assert.Error(t, err)

	err = s.MergeFields(map[string]interface{}{"annualSalary": "sixty thousand"})
	assert.Error(t, err)

	// JSON numbers arrive as float64
	require.NoError(t, s.MergeFields(map[string]interface{}{
		"probationMonths": float64(3),
		"annualSalary":    float64(60000),
	}))
	assert.Equal(t, 3, s.Draft.ProbationMonths)
	assert.Equal(t, 60000.0, s.Draft.AnnualSalary)
}

func TestValidateTerms(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(d *models.ContractDraft)
		wantFields []string
	}{
		{
			name:   "valid interim terms",
			mutate: func(d *models.ContractDraft) {},
		},
		{
			name: "end date before start date",
			mutate: func(d *models.ContractDraft) {
				d.EndDate = "2026-09-30"
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "end date equal to start date",
			mutate: func(d *models.ContractDraft) {
				d.EndDate = d.StartDate
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "permanent contract must not carry an end date",
			mutate: func(d *models.ContractDraft) {
				d.ContractType = models.ContractTypePermanent
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "missing end date for temporary contract",
			mutate: func(d *models.ContractDraft) {
				d.ContractType = models.ContractTypeTemporary
				d.EndDate = ""
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "probation and vacation out of bounds",
			mutate: func(d *models.ContractDraft) {
				d.ProbationMonths = 7
				d.VacationDays = 19
			},
			wantFields: []string{"probationMonths", "vacationDays"},
		},
		{
			name: "working hours out of bounds",
			mutate: func(d *models.ContractDraft) {
				d.WorkingHours = 45
			},
			wantFields: []string{"workingHours"},
		},
		{
			name: "malformed start date",
			mutate: func(d *models.ContractDraft) {
				d.StartDate = "01-10-2026"
			},
			wantFields: []string{"startDate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validInterimDraft()
			tt.mutate(&d)

			errs := ValidateTerms(d)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			if len(tt.wantFields) == 0 {
				assert.Empty(t, errs)
			} else {
				for _, want := range tt.wantFields {
					assert.Contains(t, fields, want)
				}
			}
		})
	}
}

func TestSubmitPayloadShapes(t *testing.T) {
	s := NewSession("sess-4", "user-1")
	s.Draft = validInterimDraft()

	payload := s.SubmitPayload()
	assert.Equal(t, "2026-10-01", payload["startDate"])
	assert.Equal(t, "2027-03-31", payload["endDate"])
	assert.Equal(t, 75.0, payload["hourlyRate"])
	assert.NotContains(t, payload, "annualSalary")

	s.Draft.ContractType = models.ContractTypePermanent
	s.Draft.EndDate = ""
	s.Draft.AnnualSalary = 60000
	payload = s.SubmitPayload()
	assert.Equal(t, 60000.0, payload["annualSalary"])
	assert.NotContains(t, payload, "endDate")
	assert.NotContains(t, payload, "hourlyRate")
}

func TestVersionIncrementsOnChange(t *testing.T) {
	s := NewSession("sess-5", "user-1")
	v := s.Version

	require.NoError(t, s.MergeFields(map[string]interface{}{"contractType": "VAST"}))
	assert.Equal(t, v+1, s.Version)

	s.Next()
	assert.Equal(t, v+2, s.Version)
}
