// internal/workers/notification/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"errors"
	"testing"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmail struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSMS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSMS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, f.err
}

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, *fakeEmail, *fakeSMS) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	email := &fakeEmail{}
	sms := &fakeSMS{}
	return NewHandler(LoadConfig(), db, email, sms, logger.NewTestLogger(t)), mock, email, sms
}

func bureauContactRows(email, phone string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"contact_email", "contact_phone"}).AddRow(email, phone)
}

func TestHandler_Execute_SendsEmail(t *testing.T) {
	handler, mock, email, sms := newTestHandler(t)

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("bureau-1").
		WillReturnRows(bureauContactRows("ops@bureau.example", "+4722334455"))

	output, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationMSAPendingApproval,
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
		Variables: map[string]interface{}{
			"msaNumber":        "MSA-2026-0001",
			"counterpartyName": "Acme BV",
		},
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Equal(t, "ops@bureau.example", output.Recipient)

	require.Len(t, email.inputs, 1)
	sent := email.inputs[0]
	assert.Equal(t, []string{"ops@bureau.example"}, sent.Destination.ToAddresses)
	assert.Contains(t, *sent.Message.Subject.Data, "MSA-2026-0001")
	assert.Contains(t, *sent.Message.Body.Text.Data, "Acme BV")
	assert.Empty(t, sms.inputs)
}

func TestHandler_Execute_HighPrioritySendsSMS(t *testing.T) {
	handler, mock, email, sms := newTestHandler(t)

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("bureau-1").
		WillReturnRows(bureauContactRows("ops@bureau.example", "+4722334455"))

	output, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationMSARejected,
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
		Priority:      models.NotificationPriorityHigh,
		Variables: map[string]interface{}{
			"msaNumber":    "MSA-2026-0001",
			"rejectReason": "liability cap too low",
		},
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.True(t, output.SMSSent)

	require.Len(t, email.inputs, 1)
	require.Len(t, sms.inputs, 1)
	assert.Equal(t, "+4722334455", *sms.inputs[0].PhoneNumber)
	assert.Contains(t, *sms.inputs[0].Message, "MSA-2026-0001")
}

func TestHandler_Execute_HighPriorityWithoutPhoneSkipsSMS(t *testing.T) {
	handler, mock, _, sms := newTestHandler(t)

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("bureau-1").
		WillReturnRows(bureauContactRows("ops@bureau.example", ""))

	output, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationMSARejected,
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
		Priority:      models.NotificationPriorityHigh,
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Empty(t, sms.inputs)
}

func TestHandler_Execute_SMSFailureDoesNotFailJob(t *testing.T) {
	handler, mock, _, sms := newTestHandler(t)
	sms.err = errors.New("throttled")

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("bureau-1").
		WillReturnRows(bureauContactRows("ops@bureau.example", "+4722334455"))

	output, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationMSAFullySigned,
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
		Priority:      models.NotificationPriorityHigh,
	})

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
}

func TestHandler_Execute_CompanyRecipientLookup(t *testing.T) {
	handler, mock, email, _ := newTestHandler(t)

	mock.ExpectQuery(`FROM companies`).
		WithArgs("company-1").
		WillReturnRows(bureauContactRows("legal@acme.example", ""))

	output, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationContractCreated,
		RecipientType: "COMPANY",
		RecipientID:   "company-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "legal@acme.example", output.Recipient)
	require.Len(t, email.inputs, 1)
}

func TestHandler_Execute_RecipientNotFound(t *testing.T) {
	handler, mock, _, _ := newTestHandler(t)

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"contact_email", "contact_phone"}))

	_, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationBureauOnboarded,
		RecipientType: "BUREAU",
		RecipientID:   "missing",
	})

	assert.True(t, errors.Is(err, ErrRecipientNotFound))
}

func TestHandler_Execute_EmailFailure(t *testing.T) {
	handler, mock, email, _ := newTestHandler(t)
	email.err = errors.New("ses unavailable")

	mock.ExpectQuery(`FROM bureaus`).
		WithArgs("bureau-1").
		WillReturnRows(bureauContactRows("ops@bureau.example", ""))

	_, err := handler.Execute(context.Background(), &Input{
		Type:          models.NotificationBureauOnboarded,
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
	})

	assert.True(t, errors.Is(err, ErrSendFailed))
}

func TestHandler_Execute_UnknownTemplate(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{
		Type:          "SOMETHING_ELSE",
		RecipientType: "BUREAU",
		RecipientID:   "bureau-1",
	})

	assert.True(t, errors.Is(err, ErrTemplateMissing))
}

func TestHandler_Execute_InvalidInput(t *testing.T) {
	handler, _, _, _ := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{RecipientType: "BUREAU", RecipientID: "x"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = handler.Execute(context.Background(), &Input{
		Type:          models.NotificationMSARejected,
		RecipientType: "PERSON",
		RecipientID:   "x",
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
