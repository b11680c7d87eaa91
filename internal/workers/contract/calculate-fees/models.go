// internal/workers/contract/calculate-fees/models.go
package calculatefees

import "vms-workers/internal/models"

type Input struct {
	BureauID       string  `json:"bureauId"`
	CompanyID      string  `json:"companyId"`
	ContractType   string  `json:"contractType"`
	AnnualSalary   float64 `json:"annualSalary"`
	HourlyRate     float64 `json:"hourlyRate"`
	DurationMonths int     `json:"durationMonths"`
}

type Output struct {
	FeeStructureID string                `json:"feeStructureId"`
	RateCardID     string                `json:"rateCardId,omitempty"`
	HourlyRateUsed float64               `json:"hourlyRateUsed,omitempty"`
	Fees           models.FeeCalculation `json:"fees"`
}
