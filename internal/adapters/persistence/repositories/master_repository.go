package repositories

import (
	"context"

	"svco-apply/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// stageRepository handles application stage data access
type stageRepository struct {
	db *gorm.DB
}

// NewStageRepository creates a new stage repository
func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{db: db}
}

// GetByID gets a stage by ID
func (r *stageRepository) GetByID(ctx context.Context, id uint) (*models.ApplicationStage, error) {
	var stage models.ApplicationStage
	err := r.db.WithContext(ctx).First(&stage, id).Error
	return &stage, err
}

// GetByNumber gets a stage by its ordinal number
func (r *stageRepository) GetByNumber(ctx context.Context, number int) (*models.ApplicationStage, error) {
	var stage models.ApplicationStage
	err := r.db.WithContext(ctx).Where("number = ?", number).First(&stage).Error
	return &stage, err
}

// GetInitial gets the stage new applications start at
func (r *stageRepository) GetInitial(ctx context.Context) (*models.ApplicationStage, error) {
	return r.GetByNumber(ctx, models.InitialStageNumber)
}

// MaxNumber returns the highest defined stage number
func (r *stageRepository) MaxNumber(ctx context.Context) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&models.ApplicationStage{}).
		Select("COALESCE(MAX(number), 0)").
		Scan(&max).Error
	return max, err
}

// batchRepository handles batch data access
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

// GetByID gets a batch by ID with its current stage
func (r *batchRepository) GetByID(ctx context.Context, id uint) (*models.Batch, error) {
	var batch models.Batch
	err := r.db.WithContext(ctx).
		Preload("CurrentStage").
		First(&batch, id).Error
	return &batch, err
}

// universityRepository handles university reference data access
type universityRepository struct {
	db *gorm.DB
}

// NewUniversityRepository creates a new university repository
func NewUniversityRepository(db *gorm.DB) UniversityRepository {
	return &universityRepository{db: db}
}

// GetByID gets a university by ID
func (r *universityRepository) GetByID(ctx context.Context, id uint) (*models.University, error) {
	var university models.University
	err := r.db.WithContext(ctx).First(&university, id).Error
	return &university, err
}

// List lists all universities
func (r *universityRepository) List(ctx context.Context) ([]*models.University, error) {
	var universities []*models.University
	err := r.db.WithContext(ctx).Order("name ASC").Find(&universities).Error
	return universities, err
}
