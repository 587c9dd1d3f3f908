package services

import (
	"context"
	"errors"
	"fmt"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/core/domain"

	"gorm.io/gorm"
)

// StageService tracks an application's progress through the ordered
// application stages. Stage numbers only ever increase; every applied
// transition is recorded in the append-only stage_transitions audit.
type StageService struct {
	stageRepo      repositories.StageRepository
	appRepo        repositories.ApplicationRepository
	paymentRepo    repositories.PaymentRepository
	transitionRepo repositories.TransitionRepository
}

// NewStageService creates a new stage service
func NewStageService(
	stageRepo repositories.StageRepository,
	appRepo repositories.ApplicationRepository,
	paymentRepo repositories.PaymentRepository,
	transitionRepo repositories.TransitionRepository,
) *StageService {
	return &StageService{
		stageRepo:      stageRepo,
		appRepo:        appRepo,
		paymentRepo:    paymentRepo,
		transitionRepo: transitionRepo,
	}
}

// Advance moves the application from stage fromNumber to fromNumber+1 when
// the completion criteria of fromNumber hold. If the application already
// moved past fromNumber the call is a no-op returning the current stage, so
// reconciler retries are harmless. Unmet criteria fail with
// ErrPreconditionFailed and leave the application untouched.
func (s *StageService) Advance(ctx context.Context, applicationID uint, fromNumber int, reason string) (*models.ApplicationStage, error) {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if app.Stage == nil {
		return nil, fmt.Errorf("%w: application %d has no stage", domain.ErrInternalServer, applicationID)
	}

	current := app.Stage

	// Duplicate call after the transition was already applied.
	if current.Number > fromNumber {
		return current, nil
	}
	if current.Number < fromNumber {
		return nil, fmt.Errorf("%w: application is at stage %d, not %d",
			domain.ErrPreconditionFailed, current.Number, fromNumber)
	}

	maxNumber, err := s.stageRepo.MaxNumber(ctx)
	if err != nil {
		return nil, err
	}
	if current.Number >= maxNumber {
		return nil, fmt.Errorf("%w: application already completed the final stage", domain.ErrPreconditionFailed)
	}

	met, err := s.criteriaMet(ctx, app)
	if err != nil {
		return nil, err
	}
	if !met {
		return nil, fmt.Errorf("%w: stage %d criteria unmet for application %d",
			domain.ErrPreconditionFailed, current.Number, applicationID)
	}

	next, err := s.stageRepo.GetByNumber(ctx, current.Number+1)
	if err != nil {
		return nil, notFoundOr(err)
	}

	fromStageID := current.ID
	app.StageID = next.ID
	app.Stage = next
	if err := s.appRepo.Update(ctx, app); err != nil {
		return nil, err
	}

	transition := &models.StageTransition{
		ApplicationID: app.ID,
		FromStageID:   &fromStageID,
		ToStageID:     next.ID,
		Reason:        reason,
	}
	if err := s.transitionRepo.Create(ctx, transition); err != nil {
		return nil, err
	}

	return next, nil
}

// History returns the application's stage transition audit, newest first.
func (s *StageService) History(ctx context.Context, applicationID uint) ([]*models.StageTransition, error) {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return nil, notFoundOr(err)
	}
	return s.transitionRepo.ListByApplication(ctx, applicationID)
}

// criteriaMet checks the completion criteria of the application's current
// stage. The payment stage requires a terminal successful payment; later
// stages are gated by humans, so the core imposes no further criteria.
func (s *StageService) criteriaMet(ctx context.Context, app *models.Application) (bool, error) {
	if app.Stage.Number != models.InitialStageNumber {
		return true, nil
	}
	return s.paymentRepo.HasSuccessfulByApplication(ctx, app.ID)
}

// notFoundOr maps a gorm record-not-found to the domain error.
func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
