package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/core/domain"

	"gorm.io/gorm"
)

// PaymentService is the payment reconciler. It owns the Payment record: it
// creates the gateway request at most once per application, and applies the
// post-payment task sequence exactly once no matter how often or in what
// order gateway confirmations arrive.
//
// All payment mutations for one application are serialized on a per-
// application mutex; work for different applications proceeds in parallel.
// The unique pending-payment index in the schema backs the lock for
// deployments running more than one process.
type PaymentService struct {
	paymentRepo  repositories.PaymentRepository
	appRepo      repositories.ApplicationRepository
	feeService   *FeeService
	stageService *StageService
	gateway      PaymentGateway
	notifier     Notifier

	mu    sync.Mutex
	locks map[uint]*sync.Mutex // key = application ID
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	appRepo repositories.ApplicationRepository,
	feeService *FeeService,
	stageService *StageService,
	gateway PaymentGateway,
	notifier Notifier,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		appRepo:      appRepo,
		feeService:   feeService,
		stageService: stageService,
		gateway:      gateway,
		notifier:     notifier,
		locks:        make(map[uint]*sync.Mutex),
	}
}

// lockFor returns the serialization mutex for one application.
func (s *PaymentService) lockFor(applicationID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lk, ok := s.locks[applicationID]
	if !ok {
		lk = &sync.Mutex{}
		s.locks[applicationID] = lk
	}
	return lk
}

// RequestPayment returns the application's pending payment, creating one via
// the gateway if none exists. Idempotent: a second call without an
// intervening terminal confirmation returns the same payment and never
// reaches the gateway. An application whose fee is already paid cannot be
// charged again and fails with ErrApplicationLocked. On gateway failure
// nothing is persisted, so a retry is safe.
func (s *PaymentService) RequestPayment(ctx context.Context, applicationID uint) (*models.Payment, error) {
	lk := s.lockFor(applicationID)
	lk.Lock()
	defer lk.Unlock()

	pending, err := s.paymentRepo.GetPendingByApplication(ctx, applicationID)
	if err == nil {
		return pending, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	paid, err := s.paymentRepo.HasSuccessfulByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, fmt.Errorf("%w: application fee already paid", domain.ErrApplicationLocked)
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if app.TeamLead == nil {
		return nil, fmt.Errorf("%w: application %d has no team lead", domain.ErrInternalServer, applicationID)
	}

	amount, err := s.feeService.Fee(app.CofounderCount)
	if err != nil {
		return nil, err
	}

	request, err := s.gateway.CreateRequest(ctx, CreateRequestInput{
		Amount:    amount,
		BuyerName: app.TeamLead.Name,
		Email:     app.TeamLead.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	active := true
	payment := &models.Payment{
		ApplicationID:    app.ID,
		Amount:           amount,
		GatewayRequestID: request.ID,
		RequestStatus:    models.RequestStatusPending,
		LongURL:          request.LongURL,
		ShortURL:         request.ShortURL,
		ActiveFlag:       &active,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return payment, nil
}

// ConfirmPayment applies an external confirmation, whether pushed by a
// webhook or pulled by the poller. Guarded transition:
//
//   - already terminal: no-op, returns the stored terminal state (replayed
//     and duplicate confirmations are never errors)
//   - Completed + Credit: terminal success; the post-payment tasks (stage
//     advancement, payment-accepted event) run exactly once
//   - Failed: terminal failure; a later RequestPayment may create a fresh
//     payment
//   - anything else: the payment stays pending (the gateway's vocabulary may
//     grow; unknown statuses are not errors)
func (s *PaymentService) ConfirmPayment(ctx context.Context, paymentID uint, requestStatus, paymentStatus string, paidAt *time.Time) (*models.Payment, error) {
	// Fetch once outside the lock to learn the application identity.
	probe, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	lk := s.lockFor(probe.ApplicationID)
	lk.Lock()
	defer lk.Unlock()

	// Re-read under the lock; a concurrent confirmation may have won.
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	if payment.IsTerminal() {
		// A replayed success also re-drives the stage advancement in case
		// an earlier attempt was cut short after the payment went terminal.
		if payment.IsSuccessful() {
			s.ensureAdvanced(ctx, payment)
		}
		return payment, nil
	}

	switch {
	case requestStatus == models.RequestStatusCompleted && paymentStatus == models.PaymentStatusCredit:
		return s.confirmSuccess(ctx, payment, paidAt)
	case requestStatus == models.RequestStatusFailed:
		return s.confirmFailure(ctx, payment)
	default:
		log.Printf("payment %d: gateway status %q/%q left pending", payment.ID, requestStatus, paymentStatus)
		return payment, nil
	}
}

// ConfirmByGatewayRequestID resolves a gateway request identifier, as carried
// by webhook payloads, and applies the confirmation. An unknown identifier
// fails with ErrNotFound.
func (s *PaymentService) ConfirmByGatewayRequestID(ctx context.Context, gatewayRequestID, requestStatus, paymentStatus string, paidAt *time.Time) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByGatewayRequestID(ctx, gatewayRequestID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return s.ConfirmPayment(ctx, payment.ID, requestStatus, paymentStatus, paidAt)
}

func (s *PaymentService) confirmSuccess(ctx context.Context, payment *models.Payment, paidAt *time.Time) (*models.Payment, error) {
	now := time.Now()
	if paidAt == nil {
		paidAt = &now
	}

	payment.RequestStatus = models.RequestStatusCompleted
	payment.PaymentStatus = models.PaymentStatusCredit
	payment.PaidAt = paidAt
	payment.ActiveFlag = nil
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	app, err := s.appRepo.GetByID(ctx, payment.ApplicationID)
	if err != nil {
		return nil, notFoundOr(err)
	}

	// Anchored at the payment stage: a payment event can only ever move an
	// application out of the payment stage, never past screening.
	if _, err := s.stageService.Advance(ctx, app.ID, models.InitialStageNumber, "application fee paid"); err != nil {
		// The payment is terminal either way; a replayed confirmation or a
		// poller pass re-drives the advancement via ensureAdvanced.
		log.Printf("payment %d: stage advancement failed: %v", payment.ID, err)
	}

	event := domain.PaymentAcceptedEvent{
		Event:         domain.NewEvent(domain.EventPaymentAccepted),
		ApplicationID: payment.ApplicationID,
		PaymentID:     payment.ID,
		Amount:        payment.Amount,
		PaidAt:        *paidAt,
	}
	if app.TeamLead != nil {
		event.ApplicantEmail = app.TeamLead.Email
	}
	s.notifier.PaymentAccepted(ctx, event)

	return payment, nil
}

// ensureAdvanced retries the post-payment stage advancement for a terminal
// successful payment whose application is still stuck at the payment stage.
// An earlier advancement attempt can be lost when the process dies between
// marking the payment terminal and moving the application; any later
// confirmation of the same payment repairs it here. No event is emitted on
// this path, the original confirmation already did that.
func (s *PaymentService) ensureAdvanced(ctx context.Context, payment *models.Payment) {
	app, err := s.appRepo.GetByID(ctx, payment.ApplicationID)
	if err != nil || app.Stage == nil || app.Stage.Number != models.InitialStageNumber {
		return
	}
	if _, err := s.stageService.Advance(ctx, app.ID, models.InitialStageNumber, "application fee paid"); err != nil {
		log.Printf("payment %d: stage advancement retry failed: %v", payment.ID, err)
	}
}

func (s *PaymentService) confirmFailure(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	payment.RequestStatus = models.RequestStatusFailed
	payment.PaymentStatus = models.PaymentStatusFailed
	payment.ActiveFlag = nil
	if err := s.paymentRepo.Update(ctx, payment); err != nil {
		return nil, err
	}

	event := domain.PaymentFailedEvent{
		Event:         domain.NewEvent(domain.EventPaymentFailed),
		ApplicationID: payment.ApplicationID,
		PaymentID:     payment.ID,
	}
	if app, err := s.appRepo.GetByID(ctx, payment.ApplicationID); err == nil && app.TeamLead != nil {
		event.ApplicantEmail = app.TeamLead.Email
	}
	s.notifier.PaymentFailed(ctx, event)

	return payment, nil
}
