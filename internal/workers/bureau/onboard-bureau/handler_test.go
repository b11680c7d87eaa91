// internal/workers/bureau/onboard-bureau/handler_test.go
package onboardbureau

import (
	"context"
	"errors"
	"testing"

	"vms-workers/internal/common/bizregistry"
	"vms-workers/internal/common/database"
	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRegistry struct {
	record *bizregistry.CompanyRecord
	err    error
}

func (s *stubRegistry) GetCompany(ctx context.Context, orgNumber string) (*bizregistry.CompanyRecord, error) {
	return s.record, s.err
}

func newTestHandler(t *testing.T, registry RegistryLookup) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	pg := &database.PostgresClient{DB: db}
	return NewHandler(LoadConfig(), pg, registry, logger.NewTestLogger(t)), mock
}

func validInput() *Input {
	return &Input{
		Name:         "Tech Staffing AS",
		OrgNumber:    "912345678",
		ContactName:  "Kari Nordmann",
		ContactEmail: "kari@techstaffing.example",
		ContactPhone: "+47 22 33 44 55",
		Website:      "https://techstaffing.example",
	}
}

func activeRecord() *bizregistry.CompanyRecord {
	return &bizregistry.CompanyRecord{
		OrgNumber: "912345678",
		Name:      "TECH STAFFING AS",
	}
}

func TestHandler_Execute_OnboardsBureau(t *testing.T) {
	handler, mock := newTestHandler(t, &stubRegistry{record: activeRecord()})

	mock.ExpectQuery(`SELECT id FROM bureaus`).
		WithArgs("912345678").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bureaus`).
		WithArgs(sqlmock.AnyArg(), "Tech Staffing AS", "912345678", "Kari Nordmann",
			"kari@techstaffing.example", "+47 22 33 44 55", "https://techstaffing.example",
			models.BureauStatusPendingReview, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO fee_structures`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Standard placement fee", models.FeeTypePercentage,
			20.0, 30, 90, "EUR", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(sqlmock.AnyArg(), `{"actor": "kari@techstaffing.example", "orgNumber": "912345678"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, output.BureauID)
	assert.NotEmpty(t, output.FeeStructureID)
	assert.Equal(t, models.BureauStatusPendingReview, output.Status)
	assert.Equal(t, "TECH STAFFING AS", output.RegistryName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RejectsBankruptCompany(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRegistry{record: &bizregistry.CompanyRecord{
		OrgNumber: "912345678",
		Name:      "BROKE AS",
		Bankrupt:  true,
	}})

	output, err := handler.Execute(context.Background(), validInput())

	assert.True(t, errors.Is(err, ErrCompanyNotInGood))
	assert.Nil(t, output)
}

func TestHandler_Execute_RegistryLookupFailure(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRegistry{err: errors.New("registry timeout")})

	output, err := handler.Execute(context.Background(), validInput())

	assert.True(t, errors.Is(err, ErrRegistryLookup))
	assert.Nil(t, output)
}

func TestHandler_Execute_DuplicateOrgNumber(t *testing.T) {
	handler, mock := newTestHandler(t, &stubRegistry{record: activeRecord()})

	mock.ExpectQuery(`SELECT id FROM bureaus`).
		WithArgs("912345678").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("bureau-existing"))

	output, err := handler.Execute(context.Background(), validInput())

	assert.True(t, errors.Is(err, ErrBureauExists))
	assert.Nil(t, output)
}

func TestHandler_Execute_SkipRegistryValidation(t *testing.T) {
	handler, mock := newTestHandler(t, &stubRegistry{err: errors.New("should not be called")})
	handler.config.SkipRegistryValidation = true

	mock.ExpectQuery(`SELECT id FROM bureaus`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO bureaus`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO fee_structures`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := handler.Execute(context.Background(), validInput())

	require.NoError(t, err)
	assert.Empty(t, output.RegistryName)
}

func TestHandler_Execute_ValidationErrors(t *testing.T) {
	handler, _ := newTestHandler(t, &stubRegistry{record: activeRecord()})

	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing name", func(i *Input) { i.Name = "" }},
		{"bad org number", func(i *Input) { i.OrgNumber = "12345" }},
		{"missing contact name", func(i *Input) { i.ContactName = "" }},
		{"bad email", func(i *Input) { i.ContactEmail = "nope" }},
		{"bad phone", func(i *Input) { i.ContactPhone = "abc" }},
		{"bad website", func(i *Input) { i.Website = "not a url" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(input)
			_, err := handler.Execute(context.Background(), input)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}
