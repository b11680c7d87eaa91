// internal/workers/msa/check-pending/models.go
package checkpending

import "vms-workers/internal/models"

type Input struct {
	Party   string `json:"party"`   // COMPANY or BUREAU
	PartyID string `json:"partyId"` // company or bureau id
}

type Output struct {
	Party        string              `json:"party"`
	PartyID      string              `json:"partyId"`
	PendingCount int                 `json:"pendingCount"`
	PendingMSAs  []models.PendingMSA `json:"pendingMsas"`
	FromCache    bool                `json:"fromCache"`
}
