// internal/models/query.go
package models

// QueryType names a registered read-model query.
type QueryType string

const (
	QueryTypeContractDetails QueryType = "contract_details"
	QueryTypeMSAList         QueryType = "msa_list"
	QueryTypeRateCards       QueryType = "rate_cards"
	QueryTypeFeeStructure    QueryType = "fee_structure"
	QueryTypeBureauDashboard QueryType = "bureau_dashboard"
)

// Elasticsearch query types.
const (
	QueryTypeCandidateSearch QueryType = "candidate_search"
	QueryTypeJobSearch       QueryType = "job_search"
)
