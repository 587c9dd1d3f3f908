package repositories

import (
	"context"

	"svco-apply/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// applicantRepository handles applicant data access
type applicantRepository struct {
	db *gorm.DB
}

// NewApplicantRepository creates a new applicant repository
func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

// Create creates a new applicant
func (r *applicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	return r.db.WithContext(ctx).Create(applicant).Error
}

// GetByID gets an applicant by ID
func (r *applicantRepository) GetByID(ctx context.Context, id uint) (*models.Applicant, error) {
	var applicant models.Applicant
	err := r.db.WithContext(ctx).First(&applicant, id).Error
	return &applicant, err
}

// GetByEmail gets an applicant by email
func (r *applicantRepository) GetByEmail(ctx context.Context, email string) (*models.Applicant, error) {
	var applicant models.Applicant
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&applicant).Error
	return &applicant, err
}

// GetByTokenDigest gets an applicant by resumption token digest
func (r *applicantRepository) GetByTokenDigest(ctx context.Context, digest string) (*models.Applicant, error) {
	var applicant models.Applicant
	err := r.db.WithContext(ctx).Where("token_digest = ?", digest).First(&applicant).Error
	return &applicant, err
}

// Update updates an applicant
func (r *applicantRepository) Update(ctx context.Context, applicant *models.Applicant) error {
	return r.db.WithContext(ctx).Save(applicant).Error
}
