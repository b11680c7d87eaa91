// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

type Input struct {
	QueryType   string                 `json:"queryType"`
	ContractID  string                 `json:"contractId,omitempty"`
	BureauID    string                 `json:"bureauId,omitempty"`
	CompanyID   string                 `json:"companyId,omitempty"`
	CandidateID string                 `json:"candidateId,omitempty"`
	Filters     map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
