package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/core/domain"

	"gorm.io/gorm"
)

// ApplicationService is the top-level use-case coordinator for the admission
// flow: start an application, resume it by token, size the team, request and
// confirm the fee payment.
type ApplicationService struct {
	batchRepo      repositories.BatchRepository
	stageRepo      repositories.StageRepository
	universityRepo repositories.UniversityRepository
	applicantRepo  repositories.ApplicantRepository
	appRepo        repositories.ApplicationRepository
	transitionRepo repositories.TransitionRepository
	paymentRepo    repositories.PaymentRepository
	tokenService   *TokenService
	feeService     *FeeService
	paymentService *PaymentService
	notifier       Notifier

	now func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	batchRepo repositories.BatchRepository,
	stageRepo repositories.StageRepository,
	universityRepo repositories.UniversityRepository,
	applicantRepo repositories.ApplicantRepository,
	appRepo repositories.ApplicationRepository,
	transitionRepo repositories.TransitionRepository,
	paymentRepo repositories.PaymentRepository,
	tokenService *TokenService,
	feeService *FeeService,
	paymentService *PaymentService,
	notifier Notifier,
) *ApplicationService {
	return &ApplicationService{
		batchRepo:      batchRepo,
		stageRepo:      stageRepo,
		universityRepo: universityRepo,
		applicantRepo:  applicantRepo,
		appRepo:        appRepo,
		transitionRepo: transitionRepo,
		paymentRepo:    paymentRepo,
		tokenService:   tokenService,
		feeService:     feeService,
		paymentService: paymentService,
		notifier:       notifier,
		now:            time.Now,
	}
}

// StartApplicationInput represents start application input
type StartApplicationInput struct {
	BatchID      uint   `json:"batch_id" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required"`
	UniversityID uint   `json:"university_id" validate:"required"`
	College      string `json:"college" validate:"required"`
	SharedDevice bool   `json:"shared_device"`
}

// StartApplication creates the applicant and their application at the
// initial stage and issues a resumption token. A closed batch fails with
// ErrBatchClosed. If the team lead already applied to the batch, no
// duplicate is created: a fresh resume-link notification is emitted and the
// call fails with ErrDuplicateApplicant.
func (s *ApplicationService) StartApplication(ctx context.Context, input *StartApplicationInput) (*models.Application, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || input.Email == "" || input.Phone == "" {
		return nil, fmt.Errorf("%w: name, email and phone are required", domain.ErrValidation)
	}

	batch, err := s.batchRepo.GetByID(ctx, input.BatchID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !batch.IsOpen(s.now()) {
		return nil, domain.ErrBatchClosed
	}

	if _, err := s.universityRepo.GetByID(ctx, input.UniversityID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown university", domain.ErrValidation)
		}
		return nil, err
	}

	applicant, err := s.applicantRepo.GetByEmail(ctx, input.Email)
	switch {
	case err == nil:
		// Returning team lead: hand back a resume link instead of a
		// duplicate application.
		existing, appErr := s.appRepo.GetByBatchAndTeamLead(ctx, batch.ID, applicant.ID)
		if appErr == nil {
			s.emitStarted(ctx, existing.ID, applicant, input.SharedDevice)
			return nil, domain.ErrDuplicateApplicant
		}
		if !errors.Is(appErr, gorm.ErrRecordNotFound) && !errors.Is(appErr, domain.ErrNotFound) {
			return nil, appErr
		}
	case errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound):
		applicant = &models.Applicant{
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
		}
		if err := s.applicantRepo.Create(ctx, applicant); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	initial, err := s.stageRepo.GetInitial(ctx)
	if err != nil {
		return nil, err
	}

	application := &models.Application{
		BatchID:      batch.ID,
		TeamLeadID:   applicant.ID,
		UniversityID: input.UniversityID,
		College:      input.College,
		StageID:      initial.ID,
	}
	if err := s.appRepo.Create(ctx, application); err != nil {
		return nil, err
	}
	application.TeamLead = applicant
	application.Stage = initial
	application.Batch = batch

	transition := &models.StageTransition{
		ApplicationID: application.ID,
		ToStageID:     initial.ID,
		Reason:        "application submitted",
	}
	if err := s.transitionRepo.Create(ctx, transition); err != nil {
		return nil, err
	}

	s.emitStarted(ctx, application.ID, applicant, input.SharedDevice)

	return application, nil
}

// emitStarted issues (or re-issues) the resumption token and emits the
// continue-application notification.
func (s *ApplicationService) emitStarted(ctx context.Context, applicationID uint, applicant *models.Applicant, sharedDevice bool) {
	token, err := s.tokenService.Issue(ctx, applicant)
	if err != nil {
		// Without a token there is nothing to mail; the applicant can
		// re-submit the form to trigger a fresh attempt.
		return
	}

	s.notifier.ApplicationStarted(ctx, domain.ApplicationStartedEvent{
		Event:          domain.NewEvent(domain.EventApplicationStarted),
		ApplicationID:  applicationID,
		ApplicantName:  applicant.Name,
		ApplicantEmail: applicant.Email,
		ResumeToken:    token,
		SharedDevice:   sharedDevice,
	})
}

// ResumeApplication resolves a resumption token to the applicant's current
// application. An unresolvable token fails with ErrInvalidToken.
func (s *ApplicationService) ResumeApplication(ctx context.Context, token string) (*models.Application, error) {
	applicant, err := s.tokenService.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}

	application, err := s.appRepo.GetLatestByTeamLead(ctx, applicant.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	return application, nil
}

// SetTeamSize stores the co-founder count and returns the recomputed fee.
// The payment record is untouched until RequestPayment is invoked.
func (s *ApplicationService) SetTeamSize(ctx context.Context, applicationID uint, cofounderCount int) (int64, error) {
	fee, err := s.feeService.Fee(cofounderCount)
	if err != nil {
		return 0, err
	}

	application, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return 0, notFoundOr(err)
	}

	paid, err := s.paymentRepo.HasSuccessfulByApplication(ctx, applicationID)
	if err != nil {
		return 0, err
	}
	if paid {
		return 0, fmt.Errorf("%w: team size is fixed after payment", domain.ErrApplicationLocked)
	}

	application.CofounderCount = cofounderCount
	if err := s.appRepo.Update(ctx, application); err != nil {
		return 0, err
	}

	return fee, nil
}

// CofounderInput represents add co-founder input
type CofounderInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// AddCofounder attaches a co-founder to the application roster. The roster
// can only change before the fee is paid.
func (s *ApplicationService) AddCofounder(ctx context.Context, applicationID uint, input *CofounderInput) (*models.Applicant, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}

	application, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	paid, err := s.paymentRepo.HasSuccessfulByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, fmt.Errorf("%w: team is fixed after payment", domain.ErrApplicationLocked)
	}

	if len(application.Cofounders) >= s.feeService.MaxCofounders() {
		return nil, fmt.Errorf("%w: at most %d co-founders allowed", domain.ErrValidation, s.feeService.MaxCofounders())
	}

	cofounder, err := s.applicantRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		cofounder = &models.Applicant{
			Name:  input.Name,
			Email: input.Email,
			Phone: input.Phone,
		}
		if err := s.applicantRepo.Create(ctx, cofounder); err != nil {
			return nil, err
		}
	}

	if cofounder.ID == application.TeamLeadID {
		return nil, fmt.Errorf("%w: team lead cannot be a co-founder", domain.ErrValidation)
	}

	if err := s.appRepo.AddCofounder(ctx, applicationID, cofounder); err != nil {
		return nil, err
	}

	return cofounder, nil
}

// RemoveCofounder detaches a co-founder before payment.
func (s *ApplicationService) RemoveCofounder(ctx context.Context, applicationID, cofounderID uint) error {
	if _, err := s.appRepo.GetByID(ctx, applicationID); err != nil {
		return notFoundOr(err)
	}

	paid, err := s.paymentRepo.HasSuccessfulByApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if paid {
		return fmt.Errorf("%w: team is fixed after payment", domain.ErrApplicationLocked)
	}

	return s.appRepo.RemoveCofounder(ctx, applicationID, cofounderID)
}

// RequestPayment delegates to the payment reconciler and returns the payment
// whose redirect URL the caller must send the payer to.
func (s *ApplicationService) RequestPayment(ctx context.Context, applicationID uint) (*models.Payment, error) {
	return s.paymentService.RequestPayment(ctx, applicationID)
}

// ConfirmPayment delegates an external confirmation to the reconciler.
func (s *ApplicationService) ConfirmPayment(ctx context.Context, paymentID uint, requestStatus, paymentStatus string, paidAt *time.Time) (*models.Payment, error) {
	return s.paymentService.ConfirmPayment(ctx, paymentID, requestStatus, paymentStatus, paidAt)
}

// BatchStatsOutput represents batch statistics output
type BatchStatsOutput struct {
	BatchID           uint                      `json:"batch_id"`
	BatchNumber       int                       `json:"batch_number"`
	TotalApplications int64                     `json:"total_applications"`
	ByStage           []repositories.StageCount `json:"by_stage"`
	FeesCollected     int64                     `json:"fees_collected"`
}

// BatchStats aggregates per-stage application counts and collected fees.
func (s *ApplicationService) BatchStats(ctx context.Context, batchID uint) (*BatchStatsOutput, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	counts, err := s.appRepo.CountByStage(ctx, batchID)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, c := range counts {
		total += c.Count
	}

	fees, err := s.paymentRepo.SumCompletedByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return &BatchStatsOutput{
		BatchID:           batch.ID,
		BatchNumber:       batch.BatchNumber,
		TotalApplications: total,
		ByStage:           counts,
		FeesCollected:     fees,
	}, nil
}

// ListApplications lists a batch's applications with pagination.
func (s *ApplicationService) ListApplications(ctx context.Context, batchID uint, offset, limit int) ([]*models.Application, int64, error) {
	if _, err := s.batchRepo.GetByID(ctx, batchID); err != nil {
		return nil, 0, notFoundOr(err)
	}
	return s.appRepo.ListByBatch(ctx, batchID, offset, limit)
}
