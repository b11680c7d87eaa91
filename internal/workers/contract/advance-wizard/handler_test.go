// internal/workers/contract/advance-wizard/handler_test.go
package advancewizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"vms-workers/internal/common/logger"
	"vms-workers/internal/wizard"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := wizard.NewSessionStore(client, 60*time.Minute)
	return NewHandler(LoadConfig(), store, logger.NewTestLogger(t))
}

func startSession(t *testing.T, handler *Handler) string {
	t.Helper()
	output, err := handler.Execute(context.Background(), &Input{Event: EventStart, UserID: "user-1"})
	require.NoError(t, err)
	require.NotEmpty(t, output.SessionID)
	return output.SessionID
}

func TestHandler_Execute_StartCreatesSession(t *testing.T) {
	handler := newTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{Event: EventStart, UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Step)
	assert.Equal(t, "type", output.StepName)
	assert.False(t, output.Clamped)
}

func TestHandler_Execute_BackAtFirstStepClamps(t *testing.T) {
	handler := newTestHandler(t)
	sessionID := startSession(t, handler)

	output, err := handler.Execute(context.Background(), &Input{SessionID: sessionID, Event: EventBack})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Step)
	assert.True(t, output.Clamped)
}

func TestHandler_Execute_NextBlockedByValidation(t *testing.T) {
	handler := newTestHandler(t)
	sessionID := startSession(t, handler)

	// Empty draft: step 0 requires a contract type
	output, err := handler.Execute(context.Background(), &Input{SessionID: sessionID, Event: EventNext})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Step)
	assert.NotEmpty(t, output.ValidationErrors)
}

func TestHandler_Execute_FullWalkToReview(t *testing.T) {
	handler := newTestHandler(t)
	sessionID := startSession(t, handler)
	ctx := context.Background()

	_, err := handler.Execute(ctx, &Input{SessionID: sessionID, Event: EventSetFields, Fields: map[string]interface{}{
		"contractType":    "INTERIM",
		"companyId":       "company-1",
		"bureauId":        "bureau-1",
		"candidateId":     "candidate-1",
		"startDate":       "2026-10-01",
		"endDate":         "2027-03-31",
		"probationMonths": float64(1),
		"noticeMonths":    float64(1),
		"vacationDays":    float64(25),
		"workingHours":    float64(40),
		"hourlyRate":      float64(75),
		"durationMonths":  float64(6),
	}})
	require.NoError(t, err)

	var output *Output
	for i := 0; i < 4; i++ {
		output, err = handler.Execute(ctx, &Input{SessionID: sessionID, Event: EventNext})
		require.NoError(t, err)
		require.Empty(t, output.ValidationErrors)
	}

	assert.Equal(t, wizard.StepReview, output.Step)
	assert.Equal(t, "review", output.StepName)
	require.NotNil(t, output.SubmitPayload)
	assert.Equal(t, "2026-10-01", output.SubmitPayload["startDate"])

	// One more Next clamps at review
	output, err = handler.Execute(ctx, &Input{SessionID: sessionID, Event: EventNext})
	require.NoError(t, err)
	assert.Equal(t, wizard.StepReview, output.Step)
	assert.True(t, output.Clamped)
}

func TestHandler_Execute_UnknownEvent(t *testing.T) {
	handler := newTestHandler(t)
	sessionID := startSession(t, handler)

	_, err := handler.Execute(context.Background(), &Input{SessionID: sessionID, Event: "SKIP_TO_END"})

	assert.True(t, errors.Is(err, ErrEventInvalid))
}

func TestHandler_Execute_MissingSession(t *testing.T) {
	handler := newTestHandler(t)

	_, err := handler.Execute(context.Background(), &Input{SessionID: "ghost", Event: EventNext})

	assert.True(t, errors.Is(err, wizard.ErrSessionNotFound))
}

func TestHandler_Execute_UnknownFieldRejected(t *testing.T) {
	handler := newTestHandler(t)
	sessionID := startSession(t, handler)

	_, err := handler.Execute(context.Background(), &Input{
		SessionID: sessionID,
		Event:     EventSetFields,
		Fields:    map[string]interface{}{"salaryBand": "A"},
	})

	assert.True(t, errors.Is(err, ErrEventInvalid))
}
