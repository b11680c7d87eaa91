// internal/workers/data-access/query-postgresql/queries/bureau.go
package queries

import (
	"context"
	"database/sql"
	"time"
)

func FeeStructure(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	bureauID, ok := stringParam(params, "bureauId")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var id, name, feeType, currency string
	var placementFeePct, fixedFee, markupPct float64
	var paymentTerms, guaranteeDays int
	var isDefault bool

	err := db.QueryRowContext(ctx, `
		SELECT id, name, fee_type, placement_fee_percentage, fixed_placement_fee,
		       hourly_markup_percentage, payment_terms_days, guarantee_period_days,
		       currency, is_default
		FROM fee_structures
		WHERE bureau_id = $1 AND active = true
		ORDER BY is_default DESC, created_at DESC
		LIMIT 1`, bureauID).Scan(
		&id, &name, &feeType, &placementFeePct, &fixedFee,
		&markupPct, &paymentTerms, &guaranteeDays, &currency, &isDefault,
	)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"id":                     id,
		"name":                   name,
		"feeType":                feeType,
		"placementFeePercentage": placementFeePct,
		"fixedPlacementFee":      fixedFee,
		"hourlyMarkupPercentage": markupPct,
		"paymentTermsDays":       paymentTerms,
		"guaranteePeriodDays":    guaranteeDays,
		"currency":               currency,
		"isDefault":              isDefault,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}

// BureauDashboard aggregates the headline numbers shown on a bureau's home
// screen in one round trip.
func BureauDashboard(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error) {
	bureauID, ok := stringParam(params, "bureauId")
	if !ok {
		return nil, 0, 0, ErrMissingParam
	}

	start := time.Now()

	var activeContracts, activeMSAs, protectedCandidates, pendingSignatures int
	var totalFees sql.NullFloat64

	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM contracts WHERE bureau_id = $1 AND status = 'ACTIVE'),
			(SELECT COUNT(*) FROM msas WHERE bureau_id = $1 AND status = 'ACTIVE'),
			(SELECT COUNT(*) FROM candidate_ownerships WHERE bureau_id = $1 AND ownership_expires_at > NOW()),
			(SELECT COUNT(*) FROM msas WHERE bureau_id = $1 AND status = 'PENDING_SIGNATURES' AND bureau_signed_at IS NULL),
			(SELECT COALESCE(SUM(total_fee), 0) FROM contracts WHERE bureau_id = $1 AND status NOT IN ('TERMINATED', 'EXPIRED'))`,
		bureauID).Scan(&activeContracts, &activeMSAs, &protectedCandidates, &pendingSignatures, &totalFees)
	if err != nil {
		return nil, 0, 0, err
	}

	result := map[string]interface{}{
		"bureauId":            bureauID,
		"activeContracts":     activeContracts,
		"activeMsas":          activeMSAs,
		"protectedCandidates": protectedCandidates,
		"pendingSignatures":   pendingSignatures,
		"totalFees":           totalFees.Float64,
	}

	execTime := time.Since(start).Milliseconds()
	return result, 1, execTime, nil
}
