// internal/workers/candidate/create-record/models.go
package createrecord

type Input struct {
	BureauID  string `json:"bureauId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

type Output struct {
	CandidateID        string `json:"candidateId"`
	OwnershipID        string `json:"ownershipId"`
	BureauID           string `json:"bureauId"`
	SubmittedAt        string `json:"submittedAt"`        // ISO 8601
	OwnershipExpiresAt string `json:"ownershipExpiresAt"` // ISO 8601
}
