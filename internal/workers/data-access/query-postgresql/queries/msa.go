// internal/workers/data-access/query-postgresql/queries/msa.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func MSAList(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	bureauID, hasBureau := stringParam(params, "bureauId")
	companyID, hasCompany := stringParam(params, "companyId")
	if !hasBureau && !hasCompany {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	rows, err := db.QueryContext(ctx, `
		SELECT id, msa_number, bureau_id, company_id, status,
		       effective_date, expiration_date,
		       company_signed_at, bureau_signed_at
		FROM msas
		WHERE ($1 = '' OR bureau_id = $1)
		  AND ($2 = '' OR company_id = $2)
		ORDER BY effective_date DESC`, bureauID, companyID)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var id, msaNumber, rowBureauID, rowCompanyID, status string
		var effectiveDate, expirationDate time.Time
		var companySignedAt, bureauSignedAt sql.NullTime
		if err := rows.Scan(&id, &msaNumber, &rowBureauID, &rowCompanyID, &status,
			&effectiveDate, &expirationDate, &companySignedAt, &bureauSignedAt); err != nil {
			return nil, 0, 0, err
		}
		entry := map[string]interface{}{
			"id":             id,
			"msaNumber":      msaNumber,
			"bureauId":       rowBureauID,
			"companyId":      rowCompanyID,
			"status":         status,
			"effectiveDate":  effectiveDate.Format("2006-01-02"),
			"expirationDate": expirationDate.Format("2006-01-02"),
		}
		if companySignedAt.Valid {
			entry["companySignedAt"] = companySignedAt.Time.Format(time.RFC3339)
		}
		if bureauSignedAt.Valid {
			entry["bureauSignedAt"] = bureauSignedAt.Time.Format(time.RFC3339)
		}
		results = append(results, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	execTime := time.Since(start).Milliseconds()
	return results, len(results), execTime, nil
}
