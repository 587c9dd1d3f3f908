package repositories

import (
	"context"
	"time"

	"svco-apply/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository handles payment data access
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment. The unique index on
// (application_id, active_flag) rejects a second pending payment for the
// same application.
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// GetByID gets a payment by ID with its application
func (r *paymentRepository) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Application").
		Preload("Application.TeamLead").
		Preload("Application.Stage").
		First(&payment, id).Error
	return &payment, err
}

// GetByGatewayRequestID gets a payment by the gateway's request identifier.
// Webhook confirmations carry this identifier, not the local payment ID.
func (r *paymentRepository) GetByGatewayRequestID(ctx context.Context, gatewayRequestID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_request_id = ?", gatewayRequestID).
		First(&payment).Error
	return &payment, err
}

// GetPendingByApplication gets the application's pending payment, if any
func (r *paymentRepository) GetPendingByApplication(ctx context.Context, applicationID uint) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND request_status = ?", applicationID, models.RequestStatusPending).
		First(&payment).Error
	return &payment, err
}

// HasSuccessfulByApplication reports whether the application already has a
// terminal successful payment.
func (r *paymentRepository) HasSuccessfulByApplication(ctx context.Context, applicationID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("application_id = ? AND request_status = ? AND payment_status = ?",
			applicationID, models.RequestStatusCompleted, models.PaymentStatusCredit).
		Count(&count).Error
	return count > 0, err
}

// Update updates a payment
func (r *paymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// ListPendingCreatedBefore lists pending payments created before the cutoff,
// oldest first, for the reconciliation poller.
func (r *paymentRepository) ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("request_status = ? AND created_at < ?", models.RequestStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

// SumCompletedByBatch totals successful payment amounts for a batch
func (r *paymentRepository) SumCompletedByBatch(ctx context.Context, batchID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COALESCE(SUM(payments.amount), 0)").
		Joins("JOIN applications ON applications.id = payments.application_id").
		Where("applications.batch_id = ? AND payments.request_status = ? AND payments.payment_status = ?",
			batchID, models.RequestStatusCompleted, models.PaymentStatusCredit).
		Scan(&total).Error
	return total, err
}
