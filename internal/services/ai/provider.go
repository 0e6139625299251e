package ai

import (
	"context"

	"github.com/zenithflow/zenithflow/internal/models"
)

// Provider is the interface for AI coaching backends. Every operation fails
// closed: an unparseable model response is an error, never a partial result.
type Provider interface {
	// GenerateRitualPlan produces the morning plan: a short piece of advice
	// plus suggested task slots for the day.
	GenerateRitualPlan(ctx context.Context, input RitualInput) (models.RitualPlan, error)

	// AnalyzeReflection turns a freeform daily review into a structured
	// insight with a book reference and an action item.
	AnalyzeReflection(ctx context.Context, input ReflectionInput) (models.ReflectionAnalysis, error)

	// SynthesizePeriod condenses a run of daily insights into recurring
	// patterns and one concrete improvement.
	SynthesizePeriod(ctx context.Context, input PeriodInput) (models.WeeklyAnalysis, error)

	// AnalyzeFinances reviews a period of ledger entries against the user's
	// monthly budget.
	AnalyzeFinances(ctx context.Context, input FinanceInput) (models.FinanceAnalysis, error)
}

// RitualInput carries the state the morning plan is built from.
type RitualInput struct {
	Date         string                 `json:"date"`
	Goals        []string               `json:"goals"`
	Routine      models.Routine         `json:"routine"`
	OpenTasks    []models.Task          `json:"openTasks"`
	Todos        []models.TodoItem      `json:"todos"`
	Knowledge    []models.KnowledgeItem `json:"knowledge"`
	RecentTitles []string               `json:"recentTitles"`
}

// ReflectionInput carries a single day's review and its context.
type ReflectionInput struct {
	Date           string                 `json:"date"`
	Review         string                 `json:"review"`
	CompletedTasks []models.Task          `json:"completedTasks"`
	Knowledge      []models.KnowledgeItem `json:"knowledge"`
	FocusMinutes   int                    `json:"focusMinutes"`
}

// PeriodInput carries the daily insights of a week or month.
type PeriodInput struct {
	StartDate string                               `json:"startDate"`
	EndDate   string                               `json:"endDate"`
	Insights  map[string]models.ReflectionAnalysis `json:"insights"`
}

// FinanceInput carries a period of ledger entries and the budget they are
// judged against.
type FinanceInput struct {
	Period        string               `json:"period"`
	Transactions  []models.Transaction `json:"transactions"`
	MonthlyBudget float64              `json:"monthlyBudget"`
}

// ProviderFactory creates a provider from flat string configuration.
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available coaching backends by name.
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates an empty provider registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory under a name.
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider builds a provider by name.
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return factory(config)
}

// ErrProviderNotFound is returned when a provider name is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "AI provider not found: " + e.Name
}
