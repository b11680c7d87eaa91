// internal/workers/msa/record-approval/handler_test.go
package recordapproval

import (
	"context"
	"errors"
	"testing"
	"time"

	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pg := &database.PostgresClient{DB: db}
	return NewHandler(LoadConfig(), pg, logger.NewTestLogger(t)), mock
}

func TestHandler_Execute_FirstApprovalStaysPending(t *testing.T) {
	handler, mock := newTestHandler(t)

	effective := time.Now().UTC().AddDate(0, 1, 0)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE msas`).
		WithArgs(sqlmock.AnyArg(), "legal@company.example", "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT company_signed_at, bureau_signed_at, effective_date`).
		WithArgs("msa-1").
		WillReturnRows(sqlmock.NewRows([]string{"company_signed_at", "bureau_signed_at", "effective_date"}).
			AddRow(time.Now().UTC(), nil, effective))
	mock.ExpectExec(`UPDATE msas SET status`).
		WithArgs(models.MSAStatusPendingSignatures, sqlmock.AnyArg(), "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "msa-1",
		Party:     models.MSAPartyCompany,
		Decision:  DecisionApprove,
		DecidedBy: "legal@company.example",
	})

	require.NoError(t, err)
	assert.Equal(t, models.MSAStatusPendingSignatures, output.Status)
	assert.False(t, output.FullySigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SecondApprovalFullySigned(t *testing.T) {
	handler, mock := newTestHandler(t)

	// Effective date in the future: fully signed but not yet active.
	effective := time.Now().UTC().AddDate(0, 2, 0)
	signed := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE msas`).
		WithArgs(sqlmock.AnyArg(), "ops@bureau.example", "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT company_signed_at, bureau_signed_at, effective_date`).
		WithArgs("msa-1").
		WillReturnRows(sqlmock.NewRows([]string{"company_signed_at", "bureau_signed_at", "effective_date"}).
			AddRow(signed, time.Now().UTC(), effective))
	mock.ExpectExec(`UPDATE msas SET status`).
		WithArgs(models.MSAStatusFullySigned, sqlmock.AnyArg(), "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "msa-1",
		Party:     models.MSAPartyBureau,
		Decision:  DecisionApprove,
		DecidedBy: "ops@bureau.example",
	})

	require.NoError(t, err)
	assert.Equal(t, models.MSAStatusFullySigned, output.Status)
	assert.True(t, output.FullySigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_SecondApprovalActivatesWhenEffective(t *testing.T) {
	handler, mock := newTestHandler(t)

	effective := time.Now().UTC().AddDate(0, 0, -3)
	signed := time.Now().UTC().Add(-time.Hour)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE msas`).
		WithArgs(sqlmock.AnyArg(), "ops@bureau.example", "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT company_signed_at, bureau_signed_at, effective_date`).
		WithArgs("msa-1").
		WillReturnRows(sqlmock.NewRows([]string{"company_signed_at", "bureau_signed_at", "effective_date"}).
			AddRow(signed, time.Now().UTC(), effective))
	mock.ExpectExec(`UPDATE msas SET status`).
		WithArgs(models.MSAStatusActive, sqlmock.AnyArg(), "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "msa-1",
		Party:     models.MSAPartyBureau,
		Decision:  DecisionApprove,
		DecidedBy: "ops@bureau.example",
	})

	require.NoError(t, err)
	assert.Equal(t, models.MSAStatusActive, output.Status)
	assert.True(t, output.FullySigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApprovalAlreadyDecided(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE msas`).
		WithArgs(sqlmock.AnyArg(), "legal@company.example", "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM msas`).
		WithArgs("msa-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("PENDING_SIGNATURES"))
	mock.ExpectRollback()

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "msa-1",
		Party:     models.MSAPartyCompany,
		Decision:  DecisionApprove,
		DecidedBy: "legal@company.example",
	})

	assert.True(t, errors.Is(err, ErrAlreadyDecided))
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApprovalMSANotFound(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE msas`).
		WithArgs(sqlmock.AnyArg(), "legal@company.example", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM msas`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "missing",
		Party:     models.MSAPartyCompany,
		Decision:  DecisionApprove,
		DecidedBy: "legal@company.example",
	})

	assert.True(t, errors.Is(err, ErrMSANotFound))
	assert.Nil(t, output)
}

func TestHandler_Execute_Reject(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectExec(`UPDATE msas`).
		WithArgs("legal@company.example", "liability cap too low", sqlmock.AnyArg(), "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:        "msa-1",
		Party:        models.MSAPartyCompany,
		Decision:     DecisionReject,
		DecidedBy:    "legal@company.example",
		RejectReason: "liability cap too low",
	})

	require.NoError(t, err)
	assert.Equal(t, models.MSAStatusRejected, output.Status)
	assert.False(t, output.FullySigned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RejectRequiresReason(t *testing.T) {
	handler, _ := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:     "msa-1",
		Party:     models.MSAPartyBureau,
		Decision:  DecisionReject,
		DecidedBy: "ops@bureau.example",
	})

	assert.True(t, errors.Is(err, ErrRejectReasonMissing))
	assert.Nil(t, output)
}

func TestHandler_Execute_RejectAlreadyDecided(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectExec(`UPDATE msas`).
		WithArgs("legal@company.example", "terms changed", sqlmock.AnyArg(), "msa-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM msas`).
		WithArgs("msa-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("FULLY_SIGNED"))

	output, err := handler.Execute(context.Background(), &Input{
		MSAID:        "msa-1",
		Party:        models.MSAPartyCompany,
		Decision:     DecisionReject,
		DecidedBy:    "legal@company.example",
		RejectReason: "terms changed",
	})

	assert.True(t, errors.Is(err, ErrAlreadyDecided))
	assert.Nil(t, output)
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []Input{
		{Party: models.MSAPartyCompany, Decision: DecisionApprove, DecidedBy: "x"},
		{MSAID: "msa-1", Party: "NOBODY", Decision: DecisionApprove, DecidedBy: "x"},
		{MSAID: "msa-1", Party: models.MSAPartyCompany, Decision: "MAYBE", DecidedBy: "x"},
		{MSAID: "msa-1", Party: models.MSAPartyCompany, Decision: DecisionApprove},
	}
	for _, input := range cases {
		_, err := handler.Execute(context.Background(), &input)
		assert.True(t, errors.Is(err, ErrInvalidInput), "input %+v", input)
	}
}
