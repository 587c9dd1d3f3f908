package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"svco-apply/internal/core/domain"
)

// NotificationService posts notification events to the delivery
// collaborator's webhook. When no webhook is configured the service logs
// and drops events, which keeps local development mail-free.
type NotificationService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		enabled:    webhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if notification delivery is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// post delivers one event payload. Best effort: delivery failures are logged
// and never surfaced to the emitting use case.
func (s *NotificationService) post(ctx context.Context, name string, payload interface{}) {
	if !s.enabled {
		log.Printf("notification %s dropped (no webhook configured)", name)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("notification %s: marshal error: %v", name, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("notification %s: request error: %v", name, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("notification %s: delivery error: %v", name, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("notification %s: delivery returned %d", name, resp.StatusCode)
	}
}

// ApplicationStarted emits the continue-application notification.
func (s *NotificationService) ApplicationStarted(ctx context.Context, event domain.ApplicationStartedEvent) {
	s.post(ctx, event.Name, event)
}

// PaymentAccepted emits the payment-accepted notification.
func (s *NotificationService) PaymentAccepted(ctx context.Context, event domain.PaymentAcceptedEvent) {
	s.post(ctx, event.Name, event)
}

// PaymentFailed emits the payment-failed notification.
func (s *NotificationService) PaymentFailed(ctx context.Context, event domain.PaymentFailedEvent) {
	s.post(ctx, event.Name, event)
}
