// internal/workers/msa/record-approval/models.go
package recordapproval

// Decisions a party can record.
const (
	DecisionApprove = "APPROVE"
	DecisionReject  = "REJECT"
)

type Input struct {
	MSAID        string `json:"msaId"`
	Party        string `json:"party"` // COMPANY or BUREAU
	Decision     string `json:"decision"`
	DecidedBy    string `json:"decidedBy"`
	RejectReason string `json:"rejectReason,omitempty"`
}

type Output struct {
	MSAID       string `json:"msaId"`
	Status      string `json:"status"`
	FullySigned bool   `json:"fullySigned"`
	DecidedAt   string `json:"decidedAt"` // ISO 8601
}
