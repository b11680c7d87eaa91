// Package feecalc computes placement fees for contract drafts. The
// calculation is a pure function of the fee structure and the contract
// parameters; it keeps no state between calls.
package feecalc

import (
	"fmt"

	"vms-workers/internal/models"
)

// Hours assumed per month when estimating hourly-markup fees.
const DefaultHoursPerMonth = 160

// ContractParams carries the draft fields the calculator reads.
type ContractParams struct {
	ContractType   string
	AnnualSalary   float64
	HourlyRate     float64
	DurationMonths int
	HoursPerMonth  float64 // 0 means DefaultHoursPerMonth
}

// Calculate computes the fee breakdown for a fee structure and contract
// parameters. Missing or zero inputs yield a zero-value calculation rather
// than an error; only an unknown fee type or a type/contract mismatch fails.
func Calculate(fs models.FeeStructure, p ContractParams) (models.FeeCalculation, error) {
	calc := models.FeeCalculation{
		FeeType:  fs.FeeType,
		Currency: fs.Currency,
	}

	switch fs.FeeType {
	case models.FeeTypePercentage:
		if p.ContractType != "" && p.ContractType != models.ContractTypePermanent {
			return calc, fmt.Errorf("fee type %s only applies to %s contracts, got %s",
				models.FeeTypePercentage, models.ContractTypePermanent, p.ContractType)
		}
		calc.BaseFee = round2(p.AnnualSalary * fs.PlacementFeePercentage / 100)
		calc.Breakdown = append(calc.Breakdown,
			fmt.Sprintf("Placement fee: %.1f%% of annual salary %.2f = %.2f",
				fs.PlacementFeePercentage, p.AnnualSalary, calc.BaseFee))

	case models.FeeTypeFixedAmount:
		calc.BaseFee = round2(fs.FixedPlacementFee)
		calc.Breakdown = append(calc.Breakdown,
			fmt.Sprintf("Fixed placement fee: %.2f", calc.BaseFee))

	case models.FeeTypeHourlyMarkup:
		if p.ContractType == models.ContractTypePermanent {
			return calc, fmt.Errorf("fee type %s does not apply to %s contracts",
				models.FeeTypeHourlyMarkup, models.ContractTypePermanent)
		}
		hoursPerMonth := p.HoursPerMonth
		if hoursPerMonth == 0 {
			hoursPerMonth = DefaultHoursPerMonth
		}
		calc.MarkupPerHour = round2(p.HourlyRate * fs.HourlyMarkupPercentage / 100)
		calc.BureauRate = round2(p.HourlyRate + calc.MarkupPerHour)
		calc.EstimatedHours = float64(p.DurationMonths) * hoursPerMonth
		calc.BaseFee = round2(calc.MarkupPerHour * calc.EstimatedHours)
		calc.Breakdown = append(calc.Breakdown,
			fmt.Sprintf("Markup: %.1f%% of hourly rate %.2f = %.2f/hour",
				fs.HourlyMarkupPercentage, p.HourlyRate, calc.MarkupPerHour),
			fmt.Sprintf("Bureau rate: %.2f + %.2f = %.2f/hour",
				p.HourlyRate, calc.MarkupPerHour, calc.BureauRate),
			fmt.Sprintf("Estimated hours: %d months x %.0f = %.0f",
				p.DurationMonths, hoursPerMonth, calc.EstimatedHours),
			fmt.Sprintf("Base fee: %.2f/hour x %.0f hours = %.2f",
				calc.MarkupPerHour, calc.EstimatedHours, calc.BaseFee))

	default:
		return calc, fmt.Errorf("unsupported fee type: %q", fs.FeeType)
	}

	// Volume discounts are not implemented yet; the field stays in the
	// shape so downstream consumers do not need to change when they are.
	calc.DiscountAmount = 0
	calc.TotalFee = round2(calc.BaseFee - calc.DiscountAmount)
	calc.Breakdown = append(calc.Breakdown,
		fmt.Sprintf("Total fee: %.2f - %.2f discount = %.2f",
			calc.BaseFee, calc.DiscountAmount, calc.TotalFee))

	return calc, nil
}

func round2(v float64) float64 {
	if v < 0 {
		return float64(int64(v*100-0.5)) / 100
	}
	return float64(int64(v*100+0.5)) / 100
}
