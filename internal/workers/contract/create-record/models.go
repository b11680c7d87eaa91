// internal/workers/contract/create-record/models.go
package createrecord

import "vms-workers/internal/models"

type Input struct {
	Draft     models.ContractDraft   `json:"draft"`
	Fees      *models.FeeCalculation `json:"fees,omitempty"`
	CreatedBy string                 `json:"createdBy"`
}

type Output struct {
	ContractID     string `json:"contractId"`
	ContractNumber string `json:"contractNumber"`
	ContractStatus string `json:"contractStatus"`
	CreatedAt      string `json:"createdAt"` // ISO 8601
}
