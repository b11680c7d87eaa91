// internal/models/candidate.go
package models

import "time"

// Duplicate match reasons, ordered by specificity.
const (
	MatchReasonEmail    = "EMAIL"
	MatchReasonPhone    = "PHONE"
	MatchReasonName     = "NAME"
	MatchReasonMultiple = "MULTIPLE"
)

// Candidate is a person submitted by a bureau.
type Candidate struct {
	ID        string    `json:"id" db:"id"`
	FirstName string    `json:"firstName" db:"first_name"`
	LastName  string    `json:"lastName" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	BureauID  string    `json:"bureauId" db:"bureau_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CandidateOwnership records which bureau holds the fee-protection window for
// a candidate. At most one non-expired ownership exists per candidate.
type CandidateOwnership struct {
	ID                 string    `json:"id" db:"id"`
	CandidateID        string    `json:"candidateId" db:"candidate_id"`
	BureauID           string    `json:"bureauId" db:"bureau_id"`
	SubmittedAt        time.Time `json:"submittedAt" db:"submitted_at"`
	OwnershipExpiresAt time.Time `json:"ownershipExpiresAt" db:"ownership_expires_at"`
}

// Active reports whether the fee-protection window is still open at t.
func (o *CandidateOwnership) Active(t time.Time) bool {
	return t.Before(o.OwnershipExpiresAt)
}

// DuplicateMatch describes an existing candidate that blocks a new submission.
type DuplicateMatch struct {
	CandidateID            string     `json:"candidateId"`
	FullName               string     `json:"fullName"`
	MatchReason            string     `json:"matchReason"`
	OwningBureauID         string     `json:"owningBureauId,omitempty"`
	OwningBureauName       string     `json:"owningBureauName,omitempty"`
	SubmittedAt            *time.Time `json:"submittedAt,omitempty"`
	FeeProtectionExpiresAt *time.Time `json:"feeProtectionExpiresAt,omitempty"`
}
