// internal/workers/contract/validate-terms/handler_test.go
package validateterms

import (
	"context"
	"testing"

	"vms-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() *Input {
	return &Input{
		ContractType:    "INTERIM",
		StartDate:       "2026-10-01",
		EndDate:         "2027-03-31",
		ProbationMonths: 1,
		NoticeMonths:    1,
		VacationDays:    25,
		WorkingHours:    40,
	}
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(in *Input)
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid interim terms",
			mutate:    func(in *Input) {},
			wantValid: true,
		},
		{
			name: "end date not after start date",
			mutate: func(in *Input) {
				in.EndDate = "2026-10-01"
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "permanent contract with end date",
			mutate: func(in *Input) {
				in.ContractType = "VAST"
			},
			wantFields: []string{"endDate"},
		},
		{
			name: "bounds violations accumulate",
			mutate: func(in *Input) {
				in.ProbationMonths = 8
				in.NoticeMonths = -1
				in.VacationDays = 15
				in.WorkingHours = 50
			},
			wantFields: []string{"probationMonths", "noticeMonths", "vacationDays", "workingHours"},
		},
		{
			name: "malformed start date",
			mutate: func(in *Input) {
				in.StartDate = "next monday"
			},
			wantFields: []string{"startDate"},
		},
	}

	handler := NewHandler(LoadConfig(), logger.NewTestLogger(t))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			output, err := handler.Execute(context.Background(), input)
			require.NoError(t, err)

			assert.Equal(t, tt.wantValid, output.Valid)
			var fields []string
			for _, e := range output.ValidationErrors {
				fields = append(fields, e.Field)
			}
			for _, want := range tt.wantFields {
				assert.Contains(t, fields, want)
			}
		})
	}
}
