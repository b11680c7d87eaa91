// internal/workers/contract/lookup-active-msa/handler_test.go
package lookupactivemsa

import (
	"context"
	"errors"
	"testing"
	"time"

	"vms-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute_ActiveMSAFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	effective := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiration := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, msa_number, status`).
		WithArgs("company-1", "bureau-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "msa_number", "status", "effective_date", "expiration_date"}).
			AddRow("msa-1", "MSA-2026-0001", "ACTIVE", effective, expiration))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CompanyID: "company-1", BureauID: "bureau-1"})

	require.NoError(t, err)
	assert.True(t, output.HasActiveMSA)
	assert.Equal(t, "msa-1", output.MSAID)
	assert.Equal(t, "MSA-2026-0001", output.MSANumber)
	assert.Equal(t, "2026-01-01", output.EffectiveDate)
	assert.Equal(t, "2027-01-01", output.ExpirationDate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoActiveMSA(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, msa_number, status`).
		WithArgs("company-1", "bureau-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "msa_number", "status", "effective_date", "expiration_date"}))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CompanyID: "company-1", BureauID: "bureau-2"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoActiveMSA))
	assert.Nil(t, output)
}

func TestHandler_Execute_DatabaseError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, msa_number, status`).
		WithArgs("company-1", "bureau-1").
		WillReturnError(errors.New("connection reset"))

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{CompanyID: "company-1", BureauID: "bureau-1"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrLookupFailed))
	assert.Nil(t, output)
}

func TestHandler_Execute_MissingInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(LoadConfig(), db, logger.NewTestLogger(t))

	_, err = handler.Execute(context.Background(), &Input{CompanyID: "company-1"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = handler.Execute(context.Background(), &Input{BureauID: "bureau-1"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
