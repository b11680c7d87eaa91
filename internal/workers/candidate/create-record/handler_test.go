// internal/workers/candidate/create-record/handler_test.go
package createrecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"

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

func validInput() *Input {
	return &Input{
		BureauID:  "bureau-1",
		FirstName: "Jan",
		LastName:  "Dekker",
		Email:     "Jan.Dekker@example.com",
		Phone:     "+31 6 1234 5678",
	}
}

func TestHandler_Execute_CreatesCandidateWithOwnership(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT id FROM candidates`).
		WithArgs("jan.dekker@example.com", "+31612345678", "jan dekker").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT guarantee_period_days`).
		WithArgs("bureau-1").
		WillReturnRows(sqlmock.NewRows([]string{"guarantee_period_days"}).AddRow(180))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidates`).
		WithArgs(sqlmock.AnyArg(), "Jan", "Dekker", "jan.dekker@example.com", "+31612345678", "bureau-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_ownerships`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "bureau-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.CandidateID)
	assert.NotEmpty(t, output.OwnershipID)
	assert.Equal(t, "bureau-1", output.BureauID)

	submitted, err := time.Parse(time.RFC3339, output.SubmittedAt)
	require.NoError(t, err)
	expires, err := time.Parse(time.RFC3339, output.OwnershipExpiresAt)
	require.NoError(t, err)
	assert.Equal(t, submitted.AddDate(0, 0, 180), expires)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DefaultOwnershipWindow(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT id FROM candidates`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	// No fee structure for this bureau.
	mock.ExpectQuery(`SELECT guarantee_period_days`).
		WithArgs("bureau-1").
		WillReturnRows(sqlmock.NewRows([]string{"guarantee_period_days"}))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidates`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_ownerships`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	submitted, _ := time.Parse(time.RFC3339, output.SubmittedAt)
	expires, _ := time.Parse(time.RFC3339, output.OwnershipExpiresAt)
	assert.Equal(t, submitted.AddDate(0, 0, 365), expires)
}

func TestHandler_Execute_NullGuaranteePeriodFallsBack(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT id FROM candidates`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT guarantee_period_days`).
		WithArgs("bureau-1").
		WillReturnRows(sqlmock.NewRows([]string{"guarantee_period_days"}).AddRow(nil))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidates`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_ownerships`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	submitted, _ := time.Parse(time.RFC3339, output.SubmittedAt)
	expires, _ := time.Parse(time.RFC3339, output.OwnershipExpiresAt)
	assert.Equal(t, submitted.AddDate(0, 0, 365), expires)
}

func TestHandler_Execute_RefusesDuplicate(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT id FROM candidates`).
		WithArgs("jan.dekker@example.com", "+31612345678", "jan dekker").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("cand-existing"))

	output, err := handler.Execute(context.Background(), validInput())

	assert.True(t, errors.Is(err, ErrDuplicateCandidate))
	assert.Contains(t, err.Error(), "cand-existing")
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InsertRollsBackOnOwnershipFailure(t *testing.T) {
	handler, mock := newTestHandler(t)

	mock.ExpectQuery(`SELECT id FROM candidates`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT guarantee_period_days`).
		WillReturnRows(sqlmock.NewRows([]string{"guarantee_period_days"}).AddRow(365))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO candidates`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO candidate_ownerships`).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	output, err := handler.Execute(context.Background(), validInput())

	assert.True(t, errors.Is(err, ErrInsertFailed))
	assert.Nil(t, output)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler, _ := newTestHandler(t)

	cases := []Input{
		{FirstName: "Jan", LastName: "Dekker", Email: "jan@example.com"},
		{BureauID: "bureau-1", LastName: "Dekker", Email: "jan@example.com"},
		{BureauID: "bureau-1", FirstName: "Jan", Email: "jan@example.com"},
		{BureauID: "bureau-1", FirstName: "Jan", LastName: "Dekker", Email: "not-an-email"},
	}
	for _, input := range cases {
		_, err := handler.Execute(context.Background(), &input)
		assert.True(t, errors.Is(err, ErrInvalidInput), "input %+v", input)
	}
}
