package feecalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vms-workers/internal/models"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		feeStructure   models.FeeStructure
		params         ContractParams
		expectError    bool
		validateResult func(t *testing.T, calc models.FeeCalculation)
	}{
		{
			name: "percentage fee for permanent placement",
			feeStructure: models.FeeStructure{
				FeeType:                models.FeeTypePercentage,
				PlacementFeePercentage: 20,
				Currency:               "EUR",
			},
			params: ContractParams{
				ContractType: models.ContractTypePermanent,
				AnnualSalary: 60000,
			},
			validateResult: func(t *testing.T, calc models.FeeCalculation) {
				assert.Equal(t, 12000.0, calc.BaseFee)
				assert.Equal(t, 0.0, calc.DiscountAmount)
				assert.Equal(t, 12000.0, calc.TotalFee)
			},
		},
		{
			name: "hourly markup for interim assignment",
			feeStructure: models.FeeStructure{
				FeeType:                models.FeeTypeHourlyMarkup,
				HourlyMarkupPercentage: 20,
				Currency:               "EUR",
			},
			params: ContractParams{
				ContractType:   models.ContractTypeInterim,
				HourlyRate:     75,
				DurationMonths: 6,
			},
			validateResult: func(t *testing.T, calc models.FeeCalculation) {
				assert.Equal(t, 15.0, calc.MarkupPerHour)
				assert.Equal(t, 90.0, calc.BureauRate)
				assert.Equal(t, 960.0, calc.EstimatedHours)
				assert.Equal(t, 14400.0, calc.BaseFee)
				assert.Equal(t, 14400.0, calc.TotalFee)
			},
		},
		{
			name: "fixed amount applies to any contract type",
			feeStructure: models.FeeStructure{
				FeeType:           models.FeeTypeFixedAmount,
				FixedPlacementFee: 5000,
				Currency:          "EUR",
			},
			params: ContractParams{
				ContractType: models.ContractTypeTemporary,
			},
			validateResult: func(t *testing.T, calc models.FeeCalculation) {
				assert.Equal(t, 5000.0, calc.BaseFee)
				assert.Equal(t, 5000.0, calc.TotalFee)
			},
		},
		{
			name: "zero salary yields zero fee without error",
			feeStructure: models.FeeStructure{
				FeeType:                models.FeeTypePercentage,
				PlacementFeePercentage: 20,
			},
			params: ContractParams{
				ContractType: models.ContractTypePermanent,
			},
			validateResult: func(t *testing.T, calc models.FeeCalculation) {
				assert.Equal(t, 0.0, calc.BaseFee)
				assert.Equal(t, 0.0, calc.TotalFee)
			},
		},
		{
			name: "percentage rejected for interim contract",
			feeStructure: models.FeeStructure{
				FeeType:                models.FeeTypePercentage,
				PlacementFeePercentage: 20,
			},
			params: ContractParams{
				ContractType: models.ContractTypeInterim,
				AnnualSalary: 60000,
			},
			expectError: true,
		},
		{
			name: "hourly markup rejected for permanent contract",
			feeStructure: models.FeeStructure{
				FeeType:                models.FeeTypeHourlyMarkup,
				HourlyMarkupPercentage: 15,
			},
			params: ContractParams{
				ContractType: models.ContractTypePermanent,
				HourlyRate:   80,
			},
			expectError: true,
		},
		{
			name: "unknown fee type rejected",
			feeStructure: models.FeeStructure{
				FeeType: "RETAINER",
			},
			params:      ContractParams{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := Calculate(tt.feeStructure, tt.params)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, calc.Breakdown)
			if tt.validateResult != nil {
				tt.validateResult(t, calc)
			}
		})
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	fs := models.FeeStructure{
		FeeType:                models.FeeTypeHourlyMarkup,
		HourlyMarkupPercentage: 17.5,
		Currency:               "EUR",
	}
	params := ContractParams{
		ContractType:   models.ContractTypeTemporary,
		HourlyRate:     62.50,
		DurationMonths: 9,
	}

	first, err := Calculate(fs, params)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Calculate(fs, params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCalculateCustomHoursPerMonth(t *testing.T) {
	fs := models.FeeStructure{
		FeeType:                models.FeeTypeHourlyMarkup,
		HourlyMarkupPercentage: 10,
	}
	calc, err := Calculate(fs, ContractParams{
		ContractType:   models.ContractTypeInterim,
		HourlyRate:     100,
		DurationMonths: 2,
		HoursPerMonth:  120,
	})
	require.NoError(t, err)
	assert.Equal(t, 240.0, calc.EstimatedHours)
	assert.Equal(t, 2400.0, calc.BaseFee)
}
