package repositories

import (
	"context"

	"svco-apply/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// applicationRepository handles application data access
type applicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// Create creates a new application
func (r *applicationRepository) Create(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Create(application).Error
}

// GetByID gets an application by ID with relations
func (r *applicationRepository) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Batch").
		Preload("Batch.CurrentStage").
		Preload("TeamLead").
		Preload("University").
		Preload("Stage").
		Preload("Cofounders").
		First(&application, id).Error
	return &application, err
}

// GetByBatchAndTeamLead gets the application a team lead submitted to a batch
func (r *applicationRepository) GetByBatchAndTeamLead(ctx context.Context, batchID, teamLeadID uint) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("TeamLead").
		Preload("Stage").
		Where("batch_id = ? AND team_lead_id = ?", batchID, teamLeadID).
		First(&application).Error
	return &application, err
}

// GetLatestByTeamLead gets the team lead's most recent application
func (r *applicationRepository) GetLatestByTeamLead(ctx context.Context, teamLeadID uint) (*models.Application, error) {
	var application models.Application
	err := r.db.WithContext(ctx).
		Preload("Batch").
		Preload("Batch.CurrentStage").
		Preload("TeamLead").
		Preload("University").
		Preload("Stage").
		Preload("Cofounders").
		Where("team_lead_id = ?", teamLeadID).
		Order("created_at DESC").
		First(&application).Error
	return &application, err
}

// Update updates an application
func (r *applicationRepository) Update(ctx context.Context, application *models.Application) error {
	return r.db.WithContext(ctx).Save(application).Error
}

// ListByBatch lists a batch's applications with pagination
func (r *applicationRepository) ListByBatch(ctx context.Context, batchID uint, offset, limit int) ([]*models.Application, int64, error) {
	var applications []*models.Application
	var total int64

	r.db.WithContext(ctx).Model(&models.Application{}).Where("batch_id = ?", batchID).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("TeamLead").
		Preload("University").
		Preload("Stage").
		Where("batch_id = ?", batchID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&applications).Error

	return applications, total, err
}

// CountByStage tallies a batch's applications per stage number
func (r *applicationRepository) CountByStage(ctx context.Context, batchID uint) ([]StageCount, error) {
	var counts []StageCount
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("application_stages.number AS stage_number, COUNT(applications.id) AS count").
		Joins("JOIN application_stages ON application_stages.id = applications.stage_id").
		Where("applications.batch_id = ?", batchID).
		Group("application_stages.number").
		Order("application_stages.number ASC").
		Scan(&counts).Error
	return counts, err
}

// AddCofounder attaches a co-founder to an application
func (r *applicationRepository) AddCofounder(ctx context.Context, applicationID uint, cofounder *models.Applicant) error {
	application := models.Application{ID: applicationID}
	return r.db.WithContext(ctx).Model(&application).Association("Cofounders").Append(cofounder)
}

// RemoveCofounder detaches a co-founder from an application
func (r *applicationRepository) RemoveCofounder(ctx context.Context, applicationID, cofounderID uint) error {
	application := models.Application{ID: applicationID}
	cofounder := models.Applicant{ID: cofounderID}
	return r.db.WithContext(ctx).Model(&application).Association("Cofounders").Delete(&cofounder)
}

// transitionRepository handles stage transition audit data access
type transitionRepository struct {
	db *gorm.DB
}

// NewTransitionRepository creates a new transition repository
func NewTransitionRepository(db *gorm.DB) TransitionRepository {
	return &transitionRepository{db: db}
}

// Create appends a stage transition record
func (r *transitionRepository) Create(ctx context.Context, transition *models.StageTransition) error {
	return r.db.WithContext(ctx).Create(transition).Error
}

// ListByApplication gets an application's stage history, newest first
func (r *transitionRepository) ListByApplication(ctx context.Context, applicationID uint) ([]*models.StageTransition, error) {
	var transitions []*models.StageTransition
	err := r.db.WithContext(ctx).
		Preload("FromStage").
		Preload("ToStage").
		Where("application_id = ?", applicationID).
		Order("created_at DESC").
		Find(&transitions).Error
	return transitions, err
}
