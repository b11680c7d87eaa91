// internal/models/contract.go
package models

import "time"

// Contract types mirror the Dutch staffing vocabulary used across the platform.
const (
	ContractTypePermanent = "VAST"      // permanent placement
	ContractTypeInterim   = "INTERIM"   // interim assignment
	ContractTypeTemporary = "UITZENDEN" // temporary staffing
)

// Contract statuses.
const (
	ContractStatusDraft           = "DRAFT"
	ContractStatusPendingApproval = "PENDING_APPROVAL"
	ContractStatusActive          = "ACTIVE"
	ContractStatusExpired         = "EXPIRED"
	ContractStatusTerminated      = "TERMINATED"
)

// ContractTemplate is a stored document template for a contract type.
type ContractTemplate struct {
	ID           string    `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	ContractType string    `json:"contractType" db:"contract_type"`
	Language     string    `json:"language" db:"language"`
	Body         string    `json:"body,omitempty" db:"body"`
	IsDefault    bool      `json:"isDefault" db:"is_default"`
	Active       bool      `json:"active" db:"active"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// ContractDraft accumulates the wizard's fields before submission.
type ContractDraft struct {
	ContractType        string  `json:"contractType"`
	TemplateID          string  `json:"templateId"`
	CompanyID           string  `json:"companyId"`
	BureauID            string  `json:"bureauId"`
	CandidateID         string  `json:"candidateId"`
	MSAID               string  `json:"msaId"`
	PositionTitle       string  `json:"positionTitle"`
	StartDate           string  `json:"startDate"` // yyyy-MM-dd
	EndDate             string  `json:"endDate"`   // yyyy-MM-dd, empty for VAST
	ProbationMonths     int     `json:"probationMonths"`
	NoticeMonths        int     `json:"noticeMonths"`
	VacationDays        int     `json:"vacationDays"`
	WorkingHours        float64 `json:"workingHours"`
	RateCardID          string  `json:"rateCardId"`
	AnnualSalary        float64 `json:"annualSalary"`
	HourlyRate          float64 `json:"hourlyRate"`
	DurationMonths      int     `json:"durationMonths"`
	BureauFeePercentage float64 `json:"bureauFeePercentage"`
	BureauFeeAmount     float64 `json:"bureauFeeAmount"`
	Notes               string  `json:"notes"`
	RequiresApproval    bool    `json:"requiresApproval"`
}

// Contract is the persisted record created from a submitted draft.
type Contract struct {
	ID             string          `json:"id" db:"id"`
	ContractNumber string          `json:"contractNumber" db:"contract_number"`
	Status         string          `json:"status" db:"status"`
	Draft          ContractDraft   `json:"draft"`
	Fees           *FeeCalculation `json:"fees,omitempty"`
	CreatedBy      string          `json:"createdBy" db:"created_by"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// RateCard groups the agreed rates between a bureau and a company.
type RateCard struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	BureauID  string         `json:"bureauId" db:"bureau_id"`
	CompanyID string         `json:"companyId" db:"company_id"`
	Currency  string         `json:"currency" db:"currency"`
	Active    bool           `json:"active" db:"active"`
	Lines     []RateCardLine `json:"lines"`
}

// RateCardLine is one priced role within a rate card. Lines are ordered by
// position in the card.
type RateCardLine struct {
	ID         string  `json:"id" db:"id"`
	RateCardID string  `json:"rateCardId" db:"rate_card_id"`
	RoleTitle  string  `json:"roleTitle" db:"role_title"`
	HourlyRate float64 `json:"hourlyRate" db:"hourly_rate"`
	Position   int     `json:"position" db:"position"`
}
