package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Master Tables
// ============================================================

// ApplicationStage is an ordered checkpoint an application passes through.
// Stage numbers are a dense sequence starting at 1.
type ApplicationStage struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Number      int            `gorm:"uniqueIndex;not null" json:"number"`
	Code        string         `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ApplicationStage) TableName() string {
	return "application_stages"
}

// InitialStageNumber is the number of the stage new applications start at.
const InitialStageNumber = 1

// University is reference data for the application form.
type University struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Location  string         `gorm:"size:100" json:"location"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (University) TableName() string {
	return "universities"
}

// ============================================================
// Main Tables
// ============================================================

// Batch is a time-boxed admission cohort.
type Batch struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	BatchNumber         int       `gorm:"uniqueIndex;not null" json:"batch_number"`
	CurrentStageID      uint      `gorm:"not null" json:"current_stage_id"`
	ApplicationDeadline time.Time `gorm:"not null" json:"application_deadline"`
	NextStageStartsOn   time.Time `json:"next_stage_starts_on"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	CurrentStage *ApplicationStage `gorm:"foreignKey:CurrentStageID" json:"current_stage,omitempty"`
}

func (Batch) TableName() string {
	return "batches"
}

// IsOpen reports whether the batch still accepts new applications: the
// deadline has not passed and the batch sits at the initial stage.
func (b *Batch) IsOpen(now time.Time) bool {
	if !now.Before(b.ApplicationDeadline) {
		return false
	}
	return b.CurrentStage != nil && b.CurrentStage.Number == InitialStageNumber
}

// Applicant is a natural person identified by email. TokenDigest holds the
// SHA-256 digest of the applicant's resumption token; the plaintext is never
// persisted.
type Applicant struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:100;not null" json:"name"`
	Email       string         `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone       string         `gorm:"size:20" json:"phone"`
	TokenDigest string         `gorm:"size:64;index" json:"-"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Applicant) TableName() string {
	return "applicants"
}

// Application is one team's submission to one batch. Applications are never
// hard-deleted; stage history lives in stage_transitions.
type Application struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BatchID        uint           `gorm:"not null;uniqueIndex:uniq_applications_batch_lead" json:"batch_id"`
	TeamLeadID     uint           `gorm:"not null;uniqueIndex:uniq_applications_batch_lead" json:"team_lead_id"`
	UniversityID   uint           `gorm:"not null" json:"university_id"`
	College        string         `gorm:"size:150" json:"college"`
	StageID        uint           `gorm:"not null" json:"stage_id"`
	CofounderCount int            `gorm:"not null;default:0" json:"cofounder_count"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Batch      *Batch            `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
	TeamLead   *Applicant        `gorm:"foreignKey:TeamLeadID" json:"team_lead,omitempty"`
	University *University       `gorm:"foreignKey:UniversityID" json:"university,omitempty"`
	Stage      *ApplicationStage `gorm:"foreignKey:StageID" json:"stage,omitempty"`
	Cofounders []Applicant       `gorm:"many2many:application_cofounders" json:"cofounders,omitempty"`
	Payments   []Payment         `gorm:"foreignKey:ApplicationID" json:"payments,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// ApplicationResponse DTO
type ApplicationResponse struct {
	ID             uint      `json:"id"`
	BatchID        uint      `json:"batch_id"`
	BatchNumber    int       `json:"batch_number,omitempty"`
	TeamLeadName   string    `json:"team_lead_name,omitempty"`
	TeamLeadEmail  string    `json:"team_lead_email,omitempty"`
	UniversityName string    `json:"university_name,omitempty"`
	College        string    `json:"college"`
	StageNumber    int       `json:"stage_number"`
	StageName      string    `json:"stage_name,omitempty"`
	CofounderCount int       `json:"cofounder_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func (a *Application) ToResponse() *ApplicationResponse {
	resp := &ApplicationResponse{
		ID:             a.ID,
		BatchID:        a.BatchID,
		College:        a.College,
		CofounderCount: a.CofounderCount,
		CreatedAt:      a.CreatedAt,
	}

	if a.Batch != nil {
		resp.BatchNumber = a.Batch.BatchNumber
	}
	if a.TeamLead != nil {
		resp.TeamLeadName = a.TeamLead.Name
		resp.TeamLeadEmail = a.TeamLead.Email
	}
	if a.University != nil {
		resp.UniversityName = a.University.Name
	}
	if a.Stage != nil {
		resp.StageNumber = a.Stage.Number
		resp.StageName = a.Stage.Name
	}

	return resp
}

// StageTransition is the append-only audit of stage advancements.
type StageTransition struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ApplicationID uint      `gorm:"not null;index" json:"application_id"`
	FromStageID   *uint     `json:"from_stage_id"`
	ToStageID     uint      `gorm:"not null" json:"to_stage_id"`
	Reason        string    `gorm:"type:text" json:"reason"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Application *Application      `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	FromStage   *ApplicationStage `gorm:"foreignKey:FromStageID" json:"from_stage,omitempty"`
	ToStage     *ApplicationStage `gorm:"foreignKey:ToStageID" json:"to_stage,omitempty"`
}

func (StageTransition) TableName() string {
	return "stage_transitions"
}

// ============================================================
// Payment
// ============================================================

// Gateway request statuses (mirror remote state)
const (
	RequestStatusPending   = "Pending"
	RequestStatusCompleted = "Completed"
	RequestStatusFailed    = "Failed"
)

// Gateway payment statuses
const (
	PaymentStatusCredit = "Credit"
	PaymentStatusFailed = "Failed"
)

// Payment is one fee-collection attempt tied to exactly one application.
// Amount is in the smallest currency unit and immutable once the gateway
// request is created.
//
// ActiveFlag is true while the payment is pending and NULL after a terminal
// transition. Together with ApplicationID it forms a unique index, so the
// schema itself enforces at most one pending payment per application (MySQL
// unique indexes ignore NULLs).
type Payment struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	ApplicationID    uint       `gorm:"not null;uniqueIndex:uniq_payments_active" json:"application_id"`
	Amount           int64      `gorm:"not null" json:"amount"`
	GatewayRequestID string     `gorm:"size:64;index" json:"gateway_request_id"`
	RequestStatus    string     `gorm:"size:20;not null;default:'Pending'" json:"request_status"`
	PaymentStatus    string     `gorm:"size:20" json:"payment_status"`
	PaidAt           *time.Time `json:"paid_at"`
	LongURL          string     `gorm:"size:255" json:"long_url"`
	ShortURL         string     `gorm:"size:255" json:"short_url"`
	ActiveFlag       *bool      `gorm:"uniqueIndex:uniq_payments_active" json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsTerminal reports whether the payment reached a final state. Terminal
// transitions are never reversed.
func (p *Payment) IsTerminal() bool {
	return p.RequestStatus == RequestStatusCompleted || p.RequestStatus == RequestStatusFailed
}

// IsSuccessful reports whether the payment completed with a credit.
func (p *Payment) IsSuccessful() bool {
	return p.RequestStatus == RequestStatusCompleted && p.PaymentStatus == PaymentStatusCredit
}

// PaymentResponse DTO
type PaymentResponse struct {
	ID               uint       `json:"id"`
	ApplicationID    uint       `json:"application_id"`
	Amount           int64      `json:"amount"`
	GatewayRequestID string     `json:"gateway_request_id"`
	RequestStatus    string     `json:"request_status"`
	PaymentStatus    string     `json:"payment_status,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	RedirectURL      string     `json:"redirect_url,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:               p.ID,
		ApplicationID:    p.ApplicationID,
		Amount:           p.Amount,
		GatewayRequestID: p.GatewayRequestID,
		RequestStatus:    p.RequestStatus,
		PaymentStatus:    p.PaymentStatus,
		PaidAt:           p.PaidAt,
		RedirectURL:      p.LongURL,
		CreatedAt:        p.CreatedAt,
	}
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Master tables
		&ApplicationStage{},
		&University{},
		// Main tables
		&Batch{},
		&Applicant{},
		&Application{},
		&StageTransition{},
		&Payment{},
	)
}
