package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"svco-apply/internal/adapters/persistence/models"
	"svco-apply/internal/adapters/persistence/repositories"
	"svco-apply/internal/core/domain"
)

// ============================================================
// In-memory fakes
// ============================================================

type fakeStageRepo struct {
	mu     sync.Mutex
	stages []*models.ApplicationStage
}

func newFakeStageRepo() *fakeStageRepo {
	return &fakeStageRepo{
		stages: []*models.ApplicationStage{
			{ID: 1, Number: 1, Code: "PAYMENT", Name: "Application fee payment"},
			{ID: 2, Number: 2, Code: "SCREENING", Name: "Screening"},
			{ID: 3, Number: 3, Code: "INTERVIEW", Name: "Interview"},
			{ID: 4, Number: 4, Code: "COMPLETED", Name: "Admission decided"},
		},
	}
}

func (r *fakeStageRepo) GetByID(_ context.Context, id uint) (*models.ApplicationStage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stages {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeStageRepo) GetByNumber(_ context.Context, number int) (*models.ApplicationStage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stages {
		if s.Number == number {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeStageRepo) GetInitial(ctx context.Context) (*models.ApplicationStage, error) {
	return r.GetByNumber(ctx, models.InitialStageNumber)
}

func (r *fakeStageRepo) MaxNumber(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, s := range r.stages {
		if s.Number > max {
			max = s.Number
		}
	}
	return max, nil
}

type fakeBatchRepo struct {
	mu      sync.Mutex
	batches map[uint]*models.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: make(map[uint]*models.Batch)}
}

func (r *fakeBatchRepo) GetByID(_ context.Context, id uint) (*models.Batch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

type fakeUniversityRepo struct {
	mu           sync.Mutex
	universities map[uint]*models.University
}

func newFakeUniversityRepo() *fakeUniversityRepo {
	return &fakeUniversityRepo{
		universities: map[uint]*models.University{
			1: {ID: 1, Name: "Indian Institute of Technology Madras"},
			2: {ID: 2, Name: "Other"},
		},
	}
}

func (r *fakeUniversityRepo) GetByID(_ context.Context, id uint) (*models.University, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.universities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (r *fakeUniversityRepo) List(_ context.Context) ([]*models.University, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.University, 0, len(r.universities))
	for _, u := range r.universities {
		out = append(out, u)
	}
	return out, nil
}

type fakeApplicantRepo struct {
	mu         sync.Mutex
	nextID     uint
	applicants map[uint]models.Applicant
}

func newFakeApplicantRepo() *fakeApplicantRepo {
	return &fakeApplicantRepo{nextID: 1, applicants: make(map[uint]models.Applicant)}
}

func (r *fakeApplicantRepo) Create(_ context.Context, applicant *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	applicant.ID = r.nextID
	r.nextID++
	r.applicants[applicant.ID] = *applicant
	return nil
}

func (r *fakeApplicantRepo) GetByID(_ context.Context, id uint) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applicants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (r *fakeApplicantRepo) GetByEmail(_ context.Context, email string) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applicants {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeApplicantRepo) GetByTokenDigest(_ context.Context, digest string) (*models.Applicant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applicants {
		if a.TokenDigest != "" && a.TokenDigest == digest {
			found := a
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeApplicantRepo) Update(_ context.Context, applicant *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applicants[applicant.ID]; !ok {
		return domain.ErrNotFound
	}
	r.applicants[applicant.ID] = *applicant
	return nil
}

type fakeApplicationRepo struct {
	mu           sync.Mutex
	nextID       uint
	applications map[uint]models.Application

	// Backing repos used to emulate relation preloading on reads.
	applicantRepo *fakeApplicantRepo
	stageRepo     *fakeStageRepo
}

func newFakeApplicationRepo(applicantRepo *fakeApplicantRepo, stageRepo *fakeStageRepo) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		nextID:        1,
		applications:  make(map[uint]models.Application),
		applicantRepo: applicantRepo,
		stageRepo:     stageRepo,
	}
}

// hydrate resolves the relations a real repository would preload.
func (r *fakeApplicationRepo) hydrate(a models.Application) *models.Application {
	if lead, err := r.applicantRepo.GetByID(context.Background(), a.TeamLeadID); err == nil {
		a.TeamLead = lead
	}
	if stage, err := r.stageRepo.GetByID(context.Background(), a.StageID); err == nil {
		a.Stage = stage
	}
	return &a
}

func (r *fakeApplicationRepo) Create(_ context.Context, application *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applications {
		if a.BatchID == application.BatchID && a.TeamLeadID == application.TeamLeadID {
			return fmt.Errorf("duplicate application for batch %d lead %d", a.BatchID, a.TeamLeadID)
		}
	}
	application.ID = r.nextID
	application.CreatedAt = time.Now()
	r.nextID++
	r.applications[application.ID] = *application
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id uint) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.hydrate(a), nil
}

func (r *fakeApplicationRepo) GetByBatchAndTeamLead(_ context.Context, batchID, teamLeadID uint) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.applications {
		if a.BatchID == batchID && a.TeamLeadID == teamLeadID {
			return r.hydrate(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeApplicationRepo) GetLatestByTeamLead(_ context.Context, teamLeadID uint) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.Application
	for _, a := range r.applications {
		if a.TeamLeadID != teamLeadID {
			continue
		}
		if latest == nil || a.ID > latest.ID {
			found := a
			latest = &found
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return r.hydrate(*latest), nil
}

func (r *fakeApplicationRepo) Update(_ context.Context, application *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applications[application.ID]; !ok {
		return domain.ErrNotFound
	}
	r.applications[application.ID] = *application
	return nil
}

func (r *fakeApplicationRepo) ListByBatch(_ context.Context, batchID uint, offset, limit int) ([]*models.Application, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.Application
	for _, a := range r.applications {
		if a.BatchID == batchID {
			all = append(all, r.hydrate(a))
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeApplicationRepo) CountByStage(_ context.Context, batchID uint) ([]repositories.StageCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byNumber := make(map[int]int64)
	for _, a := range r.applications {
		if a.BatchID != batchID {
			continue
		}
		if stage, err := r.stageRepo.GetByID(context.Background(), a.StageID); err == nil {
			byNumber[stage.Number]++
		}
	}
	var counts []repositories.StageCount
	for number, count := range byNumber {
		counts = append(counts, repositories.StageCount{StageNumber: number, Count: count})
	}
	return counts, nil
}

func (r *fakeApplicationRepo) AddCofounder(_ context.Context, applicationID uint, cofounder *models.Applicant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[applicationID]
	if !ok {
		return domain.ErrNotFound
	}
	for _, c := range a.Cofounders {
		if c.ID == cofounder.ID {
			return nil
		}
	}
	a.Cofounders = append(a.Cofounders, *cofounder)
	r.applications[applicationID] = a
	return nil
}

func (r *fakeApplicationRepo) RemoveCofounder(_ context.Context, applicationID, cofounderID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.applications[applicationID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := a.Cofounders[:0]
	for _, c := range a.Cofounders {
		if c.ID != cofounderID {
			kept = append(kept, c)
		}
	}
	a.Cofounders = kept
	r.applications[applicationID] = a
	return nil
}

type fakeTransitionRepo struct {
	mu          sync.Mutex
	nextID      uint
	transitions []models.StageTransition
}

func newFakeTransitionRepo() *fakeTransitionRepo {
	return &fakeTransitionRepo{nextID: 1}
}

func (r *fakeTransitionRepo) Create(_ context.Context, transition *models.StageTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	transition.ID = r.nextID
	r.nextID++
	r.transitions = append(r.transitions, *transition)
	return nil
}

func (r *fakeTransitionRepo) ListByApplication(_ context.Context, applicationID uint) ([]*models.StageTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.StageTransition
	for i := len(r.transitions) - 1; i >= 0; i-- {
		if r.transitions[i].ApplicationID == applicationID {
			t := r.transitions[i]
			out = append(out, &t)
		}
	}
	return out, nil
}

func (r *fakeTransitionRepo) countFor(applicationID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.transitions {
		if t.ApplicationID == applicationID {
			n++
		}
	}
	return n
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	nextID   uint
	payments map[uint]models.Payment
	appRepo  *fakeApplicationRepo
}

func newFakePaymentRepo(appRepo *fakeApplicationRepo) *fakePaymentRepo {
	return &fakePaymentRepo{nextID: 1, payments: make(map[uint]models.Payment), appRepo: appRepo}
}

func (r *fakePaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ApplicationID == payment.ApplicationID && p.ActiveFlag != nil && *p.ActiveFlag {
			return fmt.Errorf("duplicate pending payment for application %d", payment.ApplicationID)
		}
	}
	payment.ID = r.nextID
	payment.CreatedAt = time.Now()
	r.nextID++
	r.payments[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *fakePaymentRepo) GetByGatewayRequestID(_ context.Context, gatewayRequestID string) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.GatewayRequestID == gatewayRequestID {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePaymentRepo) GetPendingByApplication(_ context.Context, applicationID uint) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ApplicationID == applicationID && p.RequestStatus == models.RequestStatusPending {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakePaymentRepo) HasSuccessfulByApplication(_ context.Context, applicationID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.ApplicationID == applicationID &&
			p.RequestStatus == models.RequestStatusCompleted &&
			p.PaymentStatus == models.PaymentStatusCredit {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return domain.ErrNotFound
	}
	r.payments[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) ListPendingCreatedBefore(_ context.Context, cutoff time.Time, limit int) ([]*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Payment
	for _, p := range r.payments {
		if p.RequestStatus == models.RequestStatusPending && p.CreatedAt.Before(cutoff) {
			found := p
			out = append(out, &found)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) SumCompletedByBatch(ctx context.Context, batchID uint) (int64, error) {
	r.mu.Lock()
	payments := make([]models.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		payments = append(payments, p)
	}
	r.mu.Unlock()

	var total int64
	for _, p := range payments {
		if p.RequestStatus != models.RequestStatusCompleted || p.PaymentStatus != models.PaymentStatusCredit {
			continue
		}
		app, err := r.appRepo.GetByID(ctx, p.ApplicationID)
		if err != nil {
			continue
		}
		if app.BatchID == batchID {
			total += p.Amount
		}
	}
	return total, nil
}

// fakeGateway counts calls and can be told to fail.
type fakeGateway struct {
	mu          sync.Mutex
	createCalls int
	fetchCalls  int
	createErr   error
	status      GatewayStatus
}

func (g *fakeGateway) CreateRequest(_ context.Context, in CreateRequestInput) (*GatewayRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	if g.createErr != nil {
		return nil, g.createErr
	}
	id := fmt.Sprintf("MOJO-%d", g.createCalls)
	return &GatewayRequest{
		ID:       id,
		Status:   models.RequestStatusPending,
		LongURL:  "https://gateway.test/pay/" + id,
		ShortURL: "https://gw.test/" + id,
	}, nil
}

func (g *fakeGateway) FetchStatus(_ context.Context, _ string) (*GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchCalls++
	status := g.status
	return &status, nil
}

func (g *fakeGateway) creates() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createCalls
}

// fakeNotifier records emitted events.
type fakeNotifier struct {
	mu       sync.Mutex
	started  []domain.ApplicationStartedEvent
	accepted []domain.PaymentAcceptedEvent
	failed   []domain.PaymentFailedEvent
}

func (n *fakeNotifier) ApplicationStarted(_ context.Context, event domain.ApplicationStartedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, event)
}

func (n *fakeNotifier) PaymentAccepted(_ context.Context, event domain.PaymentAcceptedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, event)
}

func (n *fakeNotifier) PaymentFailed(_ context.Context, event domain.PaymentFailedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, event)
}

func (n *fakeNotifier) startedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.started)
}

func (n *fakeNotifier) acceptedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.accepted)
}

func (n *fakeNotifier) failedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.failed)
}

// ============================================================
// Test environment
// ============================================================

type testEnv struct {
	stageRepo      *fakeStageRepo
	batchRepo      *fakeBatchRepo
	universityRepo *fakeUniversityRepo
	applicantRepo  *fakeApplicantRepo
	appRepo        *fakeApplicationRepo
	transitionRepo *fakeTransitionRepo
	paymentRepo    *fakePaymentRepo
	gateway        *fakeGateway
	notifier       *fakeNotifier

	feeService         *FeeService
	tokenService       *TokenService
	stageService       *StageService
	paymentService     *PaymentService
	applicationService *ApplicationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		stageRepo:      newFakeStageRepo(),
		batchRepo:      newFakeBatchRepo(),
		universityRepo: newFakeUniversityRepo(),
		applicantRepo:  newFakeApplicantRepo(),
		transitionRepo: newFakeTransitionRepo(),
		gateway:        &fakeGateway{},
		notifier:       &fakeNotifier{},
	}
	env.appRepo = newFakeApplicationRepo(env.applicantRepo, env.stageRepo)
	env.paymentRepo = newFakePaymentRepo(env.appRepo)

	env.feeService = NewFeeService(FeeTable{Base: 2000, Increment: 1000, MaxCofounders: 5})
	env.tokenService = NewTokenService(env.applicantRepo)
	env.stageService = NewStageService(env.stageRepo, env.appRepo, env.paymentRepo, env.transitionRepo)
	env.paymentService = NewPaymentService(
		env.paymentRepo, env.appRepo, env.feeService, env.stageService, env.gateway, env.notifier)
	env.applicationService = NewApplicationService(
		env.batchRepo, env.stageRepo, env.universityRepo, env.applicantRepo,
		env.appRepo, env.transitionRepo, env.paymentRepo,
		env.tokenService, env.feeService, env.paymentService, env.notifier)

	// One open batch by default.
	env.batchRepo.batches[1] = &models.Batch{
		ID:                  1,
		BatchNumber:         5,
		ApplicationDeadline: time.Now().Add(7 * 24 * time.Hour),
		CurrentStage:        env.stageRepo.stages[0],
		CurrentStageID:      env.stageRepo.stages[0].ID,
	}

	return env
}

// seedApplication creates an applicant and their application directly in the
// fakes, at the payment stage, with the given co-founder count.
func (env *testEnv) seedApplication(email string, cofounderCount int) *models.Application {
	applicant := &models.Applicant{Name: "Team Lead", Email: email, Phone: "9000000000"}
	if err := env.applicantRepo.Create(context.Background(), applicant); err != nil {
		panic(err)
	}

	app := &models.Application{
		BatchID:        1,
		TeamLeadID:     applicant.ID,
		UniversityID:   1,
		College:        "Test College",
		StageID:        env.stageRepo.stages[0].ID,
		Stage:          env.stageRepo.stages[0],
		TeamLead:       applicant,
		CofounderCount: cofounderCount,
	}
	if err := env.appRepo.Create(context.Background(), app); err != nil {
		panic(err)
	}
	return app
}
