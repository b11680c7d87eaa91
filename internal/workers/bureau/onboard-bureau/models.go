// internal/workers/bureau/onboard-bureau/models.go
package onboardbureau

type Input struct {
	Name         string `json:"name"`
	OrgNumber    string `json:"orgNumber"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone,omitempty"`
	Website      string `json:"website,omitempty"`
}

type Output struct {
	BureauID       string `json:"bureauId"`
	FeeStructureID string `json:"feeStructureId"`
	Status         string `json:"status"`
	RegistryName   string `json:"registryName,omitempty"`
}
