package services

import (
	"context"
	"testing"
	"time"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markPaid records a terminal successful payment directly in the fake,
// without moving the application anywhere.
func markPaid(t *testing.T, env *testEnv, applicationID uint) *models.Payment {
	t.Helper()

	now := time.Now()
	payment := &models.Payment{
		ApplicationID:    applicationID,
		Amount:           3000,
		GatewayRequestID: "MOJO-SEED",
		RequestStatus:    models.RequestStatusCompleted,
		PaymentStatus:    models.PaymentStatusCredit,
		PaidAt:           &now,
	}
	require.NoError(t, env.paymentRepo.Create(context.Background(), payment))
	return payment
}

func TestAdvance_PaymentStageRequiresSuccessfulPayment(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)

	_, err := env.stageService.Advance(context.Background(), app.ID, 1, "application fee paid")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestAdvance_MovesToNextStageAndRecordsTransition(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)
	markPaid(t, env, app.ID)

	next, err := env.stageService.Advance(context.Background(), app.ID, 1, "application fee paid")
	require.NoError(t, err)
	assert.Equal(t, 2, next.Number)

	stored, err := env.appRepo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Stage.Number)

	history, err := env.stageService.History(context.Background(), app.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "application fee paid", history[0].Reason)
	require.NotNil(t, history[0].FromStageID)
}

func TestAdvance_DuplicateCallIsNoOp(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)
	markPaid(t, env, app.ID)

	_, err := env.stageService.Advance(context.Background(), app.ID, 1, "application fee paid")
	require.NoError(t, err)

	// Replay anchored at the old stage: returns the current stage, adds
	// nothing to the audit.
	current, err := env.stageService.Advance(context.Background(), app.ID, 1, "application fee paid")
	require.NoError(t, err)
	assert.Equal(t, 2, current.Number)
	assert.Equal(t, 1, env.transitionRepo.countFor(app.ID))
}

func TestAdvance_AnchorAheadOfCurrentStageFails(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)

	_, err := env.stageService.Advance(context.Background(), app.ID, 3, "screening passed")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestAdvance_FinalStageCannotAdvance(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)

	// Move the application to the final stage directly.
	final := env.stageRepo.stages[len(env.stageRepo.stages)-1]
	stored, err := env.appRepo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	stored.StageID = final.ID
	require.NoError(t, env.appRepo.Update(context.Background(), stored))

	_, err = env.stageService.Advance(context.Background(), app.ID, final.Number, "operator action")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestAdvance_LaterStagesNeedNoPayment(t *testing.T) {
	env := newTestEnv()
	app := env.seedApplication("lead@example.com", 2)
	markPaid(t, env, app.ID)

	_, err := env.stageService.Advance(context.Background(), app.ID, 1, "application fee paid")
	require.NoError(t, err)

	next, err := env.stageService.Advance(context.Background(), app.ID, 2, "screening passed")
	require.NoError(t, err)
	assert.Equal(t, 3, next.Number)
}

func TestAdvance_UnknownApplication(t *testing.T) {
	env := newTestEnv()

	_, err := env.stageService.Advance(context.Background(), 9999, 1, "application fee paid")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
