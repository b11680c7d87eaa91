// internal/models/msa.go
package models

import "time"

// MSA statuses. ACTIVE is only reachable once both parties have signed.
const (
	MSAStatusDraft             = "DRAFT"
	MSAStatusPendingSignatures = "PENDING_SIGNATURES"
	MSAStatusFullySigned       = "FULLY_SIGNED"
	MSAStatusActive            = "ACTIVE"
	MSAStatusExpired           = "EXPIRED"
	MSAStatusTerminated        = "TERMINATED"
	MSAStatusRejected          = "REJECTED"
)

// Signing parties.
const (
	MSAPartyCompany = "COMPANY"
	MSAPartyBureau  = "BUREAU"
)

// MSA is a master service agreement between a company and a bureau.
type MSA struct {
	ID              string     `json:"id" db:"id"`
	MSANumber       string     `json:"msaNumber" db:"msa_number"`
	BureauID        string     `json:"bureauId" db:"bureau_id"`
	CompanyID       string     `json:"companyId" db:"company_id"`
	Status          string     `json:"status" db:"status"`
	EffectiveDate   time.Time  `json:"effectiveDate" db:"effective_date"`
	ExpirationDate  time.Time  `json:"expirationDate" db:"expiration_date"`
	CompanySignedAt *time.Time `json:"companySignedAt,omitempty" db:"company_signed_at"`
	CompanySignedBy string     `json:"companySignedBy,omitempty" db:"company_signed_by"`
	BureauSignedAt  *time.Time `json:"bureauSignedAt,omitempty" db:"bureau_signed_at"`
	BureauSignedBy  string     `json:"bureauSignedBy,omitempty" db:"bureau_signed_by"`
	RejectedBy      string     `json:"rejectedBy,omitempty" db:"rejected_by"`
	RejectReason    string     `json:"rejectReason,omitempty" db:"reject_reason"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// BothPartiesSigned reports whether both signature timestamps are set.
func (m *MSA) BothPartiesSigned() bool {
	return m.CompanySignedAt != nil && m.BureauSignedAt != nil
}

// PendingMSA is the summary shape returned by the pending-approval check.
type PendingMSA struct {
	ID               string    `json:"id"`
	MSANumber        string    `json:"msaNumber"`
	CounterpartyName string    `json:"counterpartyName"`
	AwaitingParty    string    `json:"awaitingParty"`
	CreatedAt        time.Time `json:"createdAt"`
}
