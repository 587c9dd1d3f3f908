package repositories

import (
	"context"
	"time"

	"svco-apply/internal/adapters/persistence/models"
)

// StageRepository defines application stage repository interface
type StageRepository interface {
	GetByID(ctx context.Context, id uint) (*models.ApplicationStage, error)
	GetByNumber(ctx context.Context, number int) (*models.ApplicationStage, error)
	GetInitial(ctx context.Context) (*models.ApplicationStage, error)
	MaxNumber(ctx context.Context) (int, error)
}

// BatchRepository defines batch repository interface
type BatchRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Batch, error)
}

// UniversityRepository defines university repository interface
type UniversityRepository interface {
	GetByID(ctx context.Context, id uint) (*models.University, error)
	List(ctx context.Context) ([]*models.University, error)
}

// ApplicantRepository defines applicant repository interface
type ApplicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	GetByID(ctx context.Context, id uint) (*models.Applicant, error)
	GetByEmail(ctx context.Context, email string) (*models.Applicant, error)
	GetByTokenDigest(ctx context.Context, digest string) (*models.Applicant, error)
	Update(ctx context.Context, applicant *models.Applicant) error
}

// StageCount is a per-stage application tally for batch statistics.
type StageCount struct {
	StageNumber int   `json:"stage_number"`
	Count       int64 `json:"count"`
}

// ApplicationRepository defines application repository interface
type ApplicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id uint) (*models.Application, error)
	GetByBatchAndTeamLead(ctx context.Context, batchID, teamLeadID uint) (*models.Application, error)
	GetLatestByTeamLead(ctx context.Context, teamLeadID uint) (*models.Application, error)
	Update(ctx context.Context, application *models.Application) error
	ListByBatch(ctx context.Context, batchID uint, offset, limit int) ([]*models.Application, int64, error)
	CountByStage(ctx context.Context, batchID uint) ([]StageCount, error)
	AddCofounder(ctx context.Context, applicationID uint, cofounder *models.Applicant) error
	RemoveCofounder(ctx context.Context, applicationID, cofounderID uint) error
}

// TransitionRepository defines stage transition audit repository interface
type TransitionRepository interface {
	Create(ctx context.Context, transition *models.StageTransition) error
	ListByApplication(ctx context.Context, applicationID uint) ([]*models.StageTransition, error)
}

// PaymentRepository defines payment repository interface
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uint) (*models.Payment, error)
	GetByGatewayRequestID(ctx context.Context, gatewayRequestID string) (*models.Payment, error)
	GetPendingByApplication(ctx context.Context, applicationID uint) (*models.Payment, error)
	HasSuccessfulByApplication(ctx context.Context, applicationID uint) (bool, error)
	Update(ctx context.Context, payment *models.Payment) error
	ListPendingCreatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Payment, error)
	SumCompletedByBatch(ctx context.Context, batchID uint) (int64, error)
}
