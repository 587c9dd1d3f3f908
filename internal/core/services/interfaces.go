package services

import (
	"context"
	"time"

	"svco-apply/internal/core/domain"
)

// Note: fee calculation is in fee_service.go
// Note: resumption tokens are in token_service.go
// Note: the payment reconciler is in payment_service.go

// CreateRequestInput is the gateway create-request payload.
type CreateRequestInput struct {
	Amount    int64
	BuyerName string
	Email     string
}

// GatewayRequest is the gateway's view of a created payment request.
type GatewayRequest struct {
	ID       string
	Status   string
	LongURL  string
	ShortURL string
}

// GatewayStatus is the gateway's view of a payment request's progress.
type GatewayStatus struct {
	Status        string
	PaymentStatus string
	PaidAt        *time.Time
}

// PaymentGateway is the boundary to the remote payment provider. The remote
// side is untrusted: it may be slow, deliver status updates more than once,
// or never deliver them at all. Callers must tolerate duplicate invocations
// for the same logical intent.
type PaymentGateway interface {
	CreateRequest(ctx context.Context, in CreateRequestInput) (*GatewayRequest, error)
	FetchStatus(ctx context.Context, requestID string) (*GatewayStatus, error)
}

// Notifier receives the notification events the core emits. Delivery
// mechanics (email and so on) belong to an external collaborator; a failed
// delivery never fails the emitting operation.
type Notifier interface {
	ApplicationStarted(ctx context.Context, event domain.ApplicationStartedEvent)
	PaymentAccepted(ctx context.Context, event domain.PaymentAcceptedEvent)
	PaymentFailed(ctx context.Context, event domain.PaymentFailedEvent)
}
