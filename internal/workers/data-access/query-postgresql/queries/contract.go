// internal/workers/data-access/query-postgresql/queries/contract.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func ContractDetails(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	contractID, ok := stringParam(params, "contractId")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, contractNumber, contractType, status string
	var companyID, bureauID, candidateID string
	var startDate string
	var endDate sql.NullString
	var totalFee float64
	var currency, createdAt string

	err := db.QueryRowContext(ctx, `
		SELECT id, contract_number, contract_type, status,
		       company_id, bureau_id, candidate_id,
		       start_date, end_date, total_fee, currency, created_at
		FROM contracts
		WHERE id = $1`, contractID).Scan(
		&id, &contractNumber, &contractType, &status,
		&companyID, &bureauID, &candidateID,
		&startDate, &endDate, &totalFee, &currency, &createdAt,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":             id,
		"contractNumber": contractNumber,
		"contractType":   contractType,
		"status":         status,
		"companyId":      companyID,
		"bureauId":       bureauID,
		"candidateId":    candidateID,
		"startDate":      startDate,
		"endDate":        endDate.String,
		"totalFee":       totalFee,
		"currency":       currency,
		"createdAt":      createdAt,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

func RateCards(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	bureauID, ok := stringParam(params, "bureauId")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}
	companyID, _ := stringParam(params, "companyId")

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT rc.id, rc.name, rc.bureau_id, rc.company_id,
		       l.position, l.job_title, l.hourly_rate, l.currency
		FROM rate_cards rc
		JOIN rate_card_lines l ON l.rate_card_id = rc.id
		WHERE rc.bureau_id = $1
		  AND ($2 = '' OR rc.company_id = $2)
		ORDER BY rc.id, l.position`, bureauID, companyID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, name, rcBureauID, rcCompanyID, jobTitle, currency string
		var position int
		var hourlyRate float64
		if err := rows.Scan(&id, &name, &rcBureauID, &rcCompanyID, &position, &jobTitle, &hourlyRate, &currency); err != nil {
			return nil, 0, 0, err
		}
		results = append(results, map[string]interface{}{
			"rateCardId": id,
			"name":       name,
			"bureauId":   rcBureauID,
			"companyId":  rcCompanyID,
			"position":   position,
			"jobTitle":   jobTitle,
			"hourlyRate": hourlyRate,
			"currency":   currency,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
