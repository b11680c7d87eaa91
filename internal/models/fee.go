// internal/models/fee.go
package models

import "time"

// Fee structure types supported by the platform.
const (
	FeeTypePercentage   = "PERCENTAGE"
	FeeTypeFixedAmount  = "FIXED_AMOUNT"
	FeeTypeHourlyMarkup = "HOURLY_MARKUP"
)

// FeeStructure is a bureau's configured pricing model. A bureau can have
// several; at most one is flagged as default.
type FeeStructure struct {
	ID                     string    `json:"id" db:"id"`
	BureauID               string    `json:"bureauId" db:"bureau_id"`
	Name                   string    `json:"name" db:"name"`
	FeeType                string    `json:"feeType" db:"fee_type"`
	PlacementFeePercentage float64   `json:"placementFeePercentage" db:"placement_fee_percentage"`
	FixedPlacementFee      float64   `json:"fixedPlacementFee" db:"fixed_placement_fee"`
	HourlyMarkupPercentage float64   `json:"hourlyMarkupPercentage" db:"hourly_markup_percentage"`
	PaymentTermsDays       int       `json:"paymentTermsDays" db:"payment_terms_days"`
	GuaranteePeriodDays    int       `json:"guaranteePeriodDays" db:"guarantee_period_days"`
	Currency               string    `json:"currency" db:"currency"`
	IsDefault              bool      `json:"isDefault" db:"is_default"`
	Active                 bool      `json:"active" db:"active"`
	CreatedAt              time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}

// FeeCalculation is the derived fee result for a contract draft. It is fully
// recomputed from its inputs every time; identical inputs yield identical
// results. All monetary values share the fee structure's currency.
type FeeCalculation struct {
	FeeType        string   `json:"feeType"`
	BaseFee        float64  `json:"baseFee"`
	DiscountAmount float64  `json:"discountAmount"`
	TotalFee       float64  `json:"totalFee"`
	MarkupPerHour  float64  `json:"markupPerHour,omitempty"`
	BureauRate     float64  `json:"bureauRate,omitempty"`
	EstimatedHours float64  `json:"estimatedHours,omitempty"`
	Currency       string   `json:"currency"`
	Breakdown      []string `json:"breakdown"`
}
