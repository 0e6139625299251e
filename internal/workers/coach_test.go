package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/queue"
	"github.com/zenithflow/zenithflow/internal/services/ai"
)

// mockProvider returns canned results and records the inputs it was called with
type mockProvider struct {
	plan       models.RitualPlan
	reflection models.ReflectionAnalysis
	weekly     models.WeeklyAnalysis
	finance    models.FinanceAnalysis
	err        error

	ritualInput  *ai.RitualInput
	financeInput *ai.FinanceInput
}

func (m *mockProvider) GenerateRitualPlan(ctx context.Context, input ai.RitualInput) (models.RitualPlan, error) {
	m.ritualInput = &input
	return m.plan, m.err
}

func (m *mockProvider) AnalyzeReflection(ctx context.Context, input ai.ReflectionInput) (models.ReflectionAnalysis, error) {
	return m.reflection, m.err
}

func (m *mockProvider) SynthesizePeriod(ctx context.Context, input ai.PeriodInput) (models.WeeklyAnalysis, error) {
	return m.weekly, m.err
}

func (m *mockProvider) AnalyzeFinances(ctx context.Context, input ai.FinanceInput) (models.FinanceAnalysis, error) {
	m.financeInput = &input
	return m.finance, m.err
}

var _ ai.Provider = (*mockProvider)(nil)

// mockStates is an in-memory stand-in for the app state repository
type mockStates struct {
	mu     sync.Mutex
	states map[uuid.UUID]models.AppState
	getErr error
}

func newMockStates() *mockStates {
	return &mockStates{states: make(map[uuid.UUID]models.AppState)}
}

func (m *mockStates) Save(ctx context.Context, userID uuid.UUID, state models.AppState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state.Clone()
	return nil
}

func (m *mockStates) Get(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		return models.AppState{}, errors.New("not found")
	}
	return st.Clone(), nil
}

func (m *mockStates) GetOrDefault(ctx context.Context, userID uuid.UUID) (models.AppState, error) {
	if m.getErr != nil {
		return models.AppState{}, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[userID]
	if !ok {
		return models.NewAppState(), nil
	}
	return st.Clone(), nil
}

// mockResults records staged coaching results
type mockResults struct {
	mu     sync.Mutex
	staged []models.CoachResult
	addErr error
}

func (m *mockResults) Add(ctx context.Context, userID uuid.UUID, result models.CoachResult) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = append(m.staged, result)
	return nil
}

func (m *mockResults) Drain(ctx context.Context, userID uuid.UUID) ([]models.CoachResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	results := m.staged
	m.staged = nil
	return results, nil
}

// mockJobQueue records enqueued jobs
type mockJobQueue struct {
	mu       sync.Mutex
	enqueued []*queue.Job
}

func (m *mockJobQueue) Enqueue(ctx context.Context, job *queue.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enqueued = append(m.enqueued, job)
	return nil
}

func (m *mockJobQueue) Dequeue(ctx context.Context) (*queue.Message, error) {
	return nil, errors.New("not implemented")
}

func (m *mockJobQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (m *mockJobQueue) Close() error {
	return nil
}

func (m *mockJobQueue) HealthCheck(ctx context.Context) error {
	return nil
}

var _ queue.JobQueue = (*mockJobQueue)(nil)

// mockMessage is a mock implementation of MessageInterface
type mockMessage struct {
	job     *queue.Job
	acked   bool
	nacked  bool
	requeue bool
}

func (m *mockMessage) Ack() error {
	m.acked = true
	return nil
}

func (m *mockMessage) Nack(requeue bool) error {
	m.nacked = true
	m.requeue = requeue
	return nil
}

func (m *mockMessage) GetJob() *queue.Job {
	return m.job
}

var _ queue.MessageInterface = (*mockMessage)(nil)

func TestCoach_ProcessRitualPlan(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	states := newMockStates()

	seed := models.NewAppState()
	seed.Goals = []string{"Pass the exam", "", ""}
	seed.Tasks = []models.Task{
		{ID: "t1", Title: "Read chapter 4", Date: "2026-03-02", Status: models.TaskStatusPlanned},
		{ID: "t0", Title: "English conversation", Date: "2026-03-01", Status: models.TaskStatusCompleted},
	}
	seed.Knowledge = []models.KnowledgeItem{
		{ID: "k1", BookTitle: "Deep Work", Content: "Schedule every minute.", Category: models.KnowledgeCategoryDeepWork},
	}
	if err := states.Save(context.Background(), userID, seed); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	provider := &mockProvider{
		plan: models.RitualPlan{
			Advice: "Start with the hardest thing.",
			Tasks: []models.RitualTask{
				{Title: "Study lecture notes", StartTime: "09:00", DurationMinutes: 60, IsEssential: true},
			},
		},
	}
	results := &mockResults{}
	coach := NewCoach(provider, states, results, &mockJobQueue{}, nil)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeRitualPlan, userID, "2026-03-02")}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("expected message to be acked")
	}

	if provider.ritualInput == nil {
		t.Fatal("provider was not called")
	}
	if len(provider.ritualInput.OpenTasks) != 1 || provider.ritualInput.OpenTasks[0].ID != "t1" {
		t.Errorf("OpenTasks = %+v, want the day's planned task", provider.ritualInput.OpenTasks)
	}
	if len(provider.ritualInput.RecentTitles) != 1 || provider.ritualInput.RecentTitles[0] != "English conversation" {
		t.Errorf("RecentTitles = %v, want earlier completed title", provider.ritualInput.RecentTitles)
	}
	if len(provider.ritualInput.Knowledge) != 1 || provider.ritualInput.Knowledge[0].BookTitle != "Deep Work" {
		t.Errorf("Knowledge = %+v, want the seeded entry", provider.ritualInput.Knowledge)
	}

	if len(results.staged) != 1 {
		t.Fatalf("len(staged) = %d, want 1", len(results.staged))
	}
	staged := results.staged[0]
	if staged.Kind != models.CoachResultRitual || staged.Key != "2026-03-02" {
		t.Errorf("staged result = %+v", staged)
	}
	if staged.Ritual == nil || staged.Ritual.Advice != "Start with the hardest thing." {
		t.Fatalf("staged plan = %+v", staged.Ritual)
	}

	// The blob is read-only for the worker: the API folds staged results into
	// the workspace, so a workspace persist can never lose them.
	saved, err := states.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(saved.Tasks) != 2 || saved.Mantra != "" {
		t.Errorf("worker modified the state blob: %+v", saved)
	}
}

func TestCoach_ProcessReflection(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	states := newMockStates()

	seed := models.NewAppState()
	seed.Review = "Focused well in the morning, drifted after lunch."
	if err := states.Save(context.Background(), userID, seed); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	provider := &mockProvider{
		reflection: models.ReflectionAnalysis{
			Insight:    "Afternoon slumps follow skipped breaks.",
			ActionItem: "Schedule a 10 minute walk at 13:00.",
		},
	}
	results := &mockResults{}
	coach := NewCoach(provider, states, results, &mockJobQueue{}, nil)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypeReflection, userID, "2026-03-02")}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if len(results.staged) != 1 {
		t.Fatalf("len(staged) = %d, want 1", len(results.staged))
	}
	staged := results.staged[0]
	if staged.Kind != models.CoachResultReflection || staged.Key != "2026-03-02" {
		t.Errorf("staged result = %+v", staged)
	}
	if staged.Reflection == nil || staged.Reflection.Insight != provider.reflection.Insight {
		t.Errorf("staged analysis = %+v, want %+v", staged.Reflection, provider.reflection)
	}
}

func TestCoach_ProcessPeriodSynthesis(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	states := newMockStates()

	seed := models.NewAppState()
	seed.DailyAnalyses["2026-03-02"] = models.ReflectionAnalysis{Insight: "in range"}
	seed.DailyAnalyses["2026-03-08"] = models.ReflectionAnalysis{Insight: "last day in range"}
	seed.DailyAnalyses["2026-03-09"] = models.ReflectionAnalysis{Insight: "out of range"}
	if err := states.Save(context.Background(), userID, seed); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	provider := &mockProvider{
		weekly: models.WeeklyAnalysis{Summary: "A steady week.", Improvement: "Protect the afternoon."},
	}
	results := &mockResults{}
	coach := NewCoach(provider, states, results, &mockJobQueue{}, nil)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypePeriodSynthesis, userID, "2026-03-02")}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if len(results.staged) != 1 {
		t.Fatalf("len(staged) = %d, want 1", len(results.staged))
	}
	staged := results.staged[0]
	if staged.Kind != models.CoachResultWeekly || staged.Key != "2026-03-02" {
		t.Errorf("staged result = %+v", staged)
	}
	if staged.Weekly == nil || staged.Weekly.Summary != "A steady week." {
		t.Errorf("staged synthesis = %+v", staged.Weekly)
	}
}

func TestCoach_ProcessPeriodSynthesisNoInsights(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{err: errors.New("should not be called")}
	coach := NewCoach(provider, newMockStates(), &mockResults{}, &mockJobQueue{}, nil)

	msg := &mockMessage{job: queue.NewJob(queue.JobTypePeriodSynthesis, userID, "2026-03-02")}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("empty period should ack without calling the provider")
	}
}

func TestCoach_ProcessFinanceReviewFiltersByMonth(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	states := newMockStates()

	seed := models.NewAppState()
	seed.Transactions = []models.Transaction{
		{ID: "tx1", Date: "2026-02-10"},
		{ID: "tx2", Date: "2026-02-28"},
		{ID: "tx3", Date: "2026-03-01"},
	}
	if err := states.Save(context.Background(), userID, seed); err != nil {
		t.Fatalf("seed state: %v", err)
	}

	provider := &mockProvider{
		finance: models.FinanceAnalysis{OverallStatus: "Growth", Summary: "Under budget."},
	}
	results := &mockResults{}
	coach := NewCoach(provider, states, results, &mockJobQueue{}, nil)

	job := queue.NewJob(queue.JobTypeFinanceReview, userID, "2026-02")
	job.Metadata["monthlyBudget"] = 1500.0
	msg := &mockMessage{job: job}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}

	if provider.financeInput == nil {
		t.Fatal("provider was not called")
	}
	if len(provider.financeInput.Transactions) != 2 {
		t.Errorf("len(Transactions) = %d, want 2 for the month", len(provider.financeInput.Transactions))
	}
	if provider.financeInput.MonthlyBudget != 1500.0 {
		t.Errorf("MonthlyBudget = %v, want 1500", provider.financeInput.MonthlyBudget)
	}

	if len(results.staged) != 1 {
		t.Fatalf("len(staged) = %d, want 1", len(results.staged))
	}
	staged := results.staged[0]
	if staged.Kind != models.CoachResultFinance || staged.Key != "2026-02" {
		t.Errorf("staged result = %+v", staged)
	}
	if staged.Finance == nil || staged.Finance.OverallStatus != "Growth" {
		t.Errorf("staged review = %+v", staged.Finance)
	}
}

func TestCoach_QuotaErrorReEnqueuesDelayed(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{err: &ai.APIError{
		Message:     "quota exceeded",
		Code:        "insufficient_quota",
		StatusCode:  429,
		IsPermanent: true,
	}}
	jobQueue := &mockJobQueue{}
	coach := NewCoach(provider, newMockStates(), &mockResults{}, jobQueue, nil)

	job := queue.NewJob(queue.JobTypeReflection, userID, "2026-03-02")
	job.Metadata["review"] = "a review"
	msg := &mockMessage{job: job}

	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v, throttled jobs should not error", err)
	}
	if !msg.acked {
		t.Error("throttled message should be acked, not nacked")
	}
	if len(jobQueue.enqueued) != 1 {
		t.Fatalf("len(enqueued) = %d, want 1", len(jobQueue.enqueued))
	}
	delayed := jobQueue.enqueued[0]
	if delayed.NotBefore == nil || !delayed.NotBefore.After(time.Now()) {
		t.Error("re-enqueued job should carry a future NotBefore")
	}
	if delayed.RetryCount != 1 {
		t.Errorf("RetryCount = %d, want 1", delayed.RetryCount)
	}
}

func TestCoach_FailureRetriesThenDeadLetters(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	provider := &mockProvider{err: errors.New("model returned garbage")}
	coach := NewCoach(provider, newMockStates(), &mockResults{}, &mockJobQueue{}, nil)

	job := queue.NewJob(queue.JobTypeReflection, userID, "2026-03-02")

	msg := &mockMessage{job: job}
	if err := coach.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error on provider failure")
	}
	if !msg.nacked || !msg.requeue {
		t.Error("first failure should nack with requeue")
	}

	job.RetryCount = job.MaxRetries
	msg = &mockMessage{job: job}
	if err := coach.ProcessJob(context.Background(), msg); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if !msg.nacked || msg.requeue {
		t.Error("exhausted job should nack without requeue")
	}
}

func TestCoach_DeferredJobAcks(t *testing.T) {
	t.Parallel()

	future := time.Now().Add(time.Hour)
	job := queue.NewJob(queue.JobTypeRitualPlan, uuid.New(), "2026-03-02")
	job.NotBefore = &future

	provider := &mockProvider{err: errors.New("should not be called")}
	coach := NewCoach(provider, newMockStates(), &mockResults{}, &mockJobQueue{}, nil)

	msg := &mockMessage{job: job}
	if err := coach.ProcessJob(context.Background(), msg); err != nil {
		t.Fatalf("ProcessJob() error = %v", err)
	}
	if !msg.acked {
		t.Error("deferred job should be acked for redelivery by the delayed exchange")
	}
}
