package services

import (
	"context"
	"log"
	"time"

	"svco-apply/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// PaymentPollService periodically reconciles pending payments by pulling
// their status from the gateway. It covers the cases a webhook never
// arrives for: the payer closed the tab, the gateway dropped the callback,
// or delivery is simply late.
type PaymentPollService struct {
	paymentRepo    repositories.PaymentRepository
	paymentService *PaymentService
	gateway        PaymentGateway
	cron           *cron.Cron

	schedule   string
	staleAfter time.Duration
	batchSize  int
}

// NewPaymentPollService creates a new payment poll service
func NewPaymentPollService(
	paymentRepo repositories.PaymentRepository,
	paymentService *PaymentService,
	gateway PaymentGateway,
	schedule string,
	staleAfter time.Duration,
) *PaymentPollService {
	if schedule == "" {
		schedule = "@every 2m"
	}
	return &PaymentPollService{
		paymentRepo:    paymentRepo,
		paymentService: paymentService,
		gateway:        gateway,
		cron:           cron.New(),
		schedule:       schedule,
		staleAfter:     staleAfter,
		batchSize:      50,
	}
}

// Start launches the reconciliation schedule.
func (s *PaymentPollService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.ReconcilePending); err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("payment poller started (%s)", s.schedule)
	return nil
}

// Stop stops the schedule and waits for a running pass to finish.
func (s *PaymentPollService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("payment poller stopped")
}

// ReconcilePending runs one reconciliation pass. Exported so an operator
// endpoint or test can trigger it directly.
func (s *PaymentPollService) ReconcilePending() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.staleAfter)
	payments, err := s.paymentRepo.ListPendingCreatedBefore(ctx, cutoff, s.batchSize)
	if err != nil {
		log.Printf("payment poller: query error: %v", err)
		return
	}

	for _, payment := range payments {
		status, err := s.gateway.FetchStatus(ctx, payment.GatewayRequestID)
		if err != nil {
			// The gateway being down is routine; the next pass retries.
			log.Printf("payment poller: fetch %s: %v", payment.GatewayRequestID, err)
			continue
		}

		if _, err := s.paymentService.ConfirmPayment(ctx, payment.ID, status.Status, status.PaymentStatus, status.PaidAt); err != nil {
			log.Printf("payment poller: confirm payment %d: %v", payment.ID, err)
		}
	}
}
