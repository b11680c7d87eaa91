// internal/workers/contract/lookup-active-msa/models.go
package lookupactivemsa

type Input struct {
	CompanyID string `json:"companyId"`
	BureauID  string `json:"bureauId"`
}

type Output struct {
	MSAID          string `json:"msaId"`
	MSANumber      string `json:"msaNumber"`
	Status         string `json:"status"`
	EffectiveDate  string `json:"effectiveDate"`  // yyyy-MM-dd
	ExpirationDate string `json:"expirationDate"` // yyyy-MM-dd
	HasActiveMSA   bool   `json:"hasActiveMsa"`
}
