// internal/workers/contract/select-template/models.go
package selecttemplate

import "vms-workers/internal/models"

type Input struct {
	ContractType string `json:"contractType"`
}

type Output struct {
	Templates          []models.ContractTemplate `json:"templates"`
	SelectedTemplateID string                    `json:"selectedTemplateId"`
	FromCache          bool                      `json:"fromCache"`
}
