package domain

import (
	"time"

	"github.com/google/uuid"
)

// Notification event names
const (
	EventApplicationStarted = "application.started"
	EventPaymentAccepted    = "payment.accepted"
	EventPaymentFailed      = "payment.failed"
)

// Event is the envelope shared by all notification events. Delivery is owned
// by an external collaborator; the core only guarantees the payload contract.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ApplicationStartedEvent is emitted once a team lead submits the initial
// form, and again when a returning applicant asks for a fresh resume link.
type ApplicationStartedEvent struct {
	Event
	ApplicationID  uint   `json:"application_id"`
	ApplicantName  string `json:"applicant_name"`
	ApplicantEmail string `json:"applicant_email"`
	ResumeToken    string `json:"resume_token"`
	SharedDevice   bool   `json:"shared_device"`
}

// PaymentAcceptedEvent is emitted exactly once per successful payment.
type PaymentAcceptedEvent struct {
	Event
	ApplicationID  uint      `json:"application_id"`
	PaymentID      uint      `json:"payment_id"`
	Amount         int64     `json:"amount"`
	PaidAt         time.Time `json:"paid_at"`
	ApplicantEmail string    `json:"applicant_email"`
}

// PaymentFailedEvent is emitted when the gateway reports a terminal failure.
type PaymentFailedEvent struct {
	Event
	ApplicationID  uint   `json:"application_id"`
	PaymentID      uint   `json:"payment_id"`
	ApplicantEmail string `json:"applicant_email"`
}

// NewEvent builds an event envelope.
func NewEvent(name string) Event {
	return Event{
		ID:         uuid.New(),
		Name:       name,
		OccurredAt: time.Now(),
	}
}
