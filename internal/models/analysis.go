package models

// RitualPlan is the AI-generated morning plan: a short mantra plus suggested
// task slots for the day.
type RitualPlan struct {
	Advice string       `json:"advice"`
	Tasks  []RitualTask `json:"tasks"`
}

// RitualTask is one suggested slot inside a ritual plan.
type RitualTask struct {
	Title           string `json:"title"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
	IsEssential     bool   `json:"isEssential"`
	Reason          string `json:"reason,omitempty"`
}

// ReflectionAnalysis is the AI result for a single day's review, stored
// verbatim and keyed by date. Replaceable by a later same-key write.
type ReflectionAnalysis struct {
	Insight       string `json:"insight"`
	BookReference string `json:"bookReference"`
	Concept       string `json:"concept"`
	ActionItem    string `json:"actionItem"`
}

// WeeklyAnalysis is the AI synthesis of a week or month of daily insights,
// keyed by the period's start date.
type WeeklyAnalysis struct {
	Summary     string   `json:"summary"`
	Patterns    []string `json:"patterns"`
	Suggestions string   `json:"suggestions"`
	Improvement string   `json:"improvement"`
}

// CoachResultKind names which coaching output a result row carries.
type CoachResultKind string

const (
	CoachResultRitual     CoachResultKind = "ritual"
	CoachResultReflection CoachResultKind = "reflection"
	CoachResultWeekly     CoachResultKind = "weekly"
	CoachResultFinance    CoachResultKind = "finance"
)

// CoachResult is one finished coaching job, staged for the API to fold into
// the live workspace. The worker never touches the state blob; it only
// appends results here, and the API drains them through the workspace store
// so debounced persists cannot overwrite them.
type CoachResult struct {
	Kind       CoachResultKind     `json:"kind"`
	Key        string              `json:"key"`
	Ritual     *RitualPlan         `json:"ritual,omitempty"`
	Reflection *ReflectionAnalysis `json:"reflection,omitempty"`
	Weekly     *WeeklyAnalysis     `json:"weekly,omitempty"`
	Finance    *FinanceAnalysis    `json:"finance,omitempty"`
}

// FinanceAnalysis is the AI result for a financial period.
type FinanceAnalysis struct {
	OverallStatus  string `json:"overallStatus"` // Growth, Refining, or Cautious
	Summary        string `json:"summary"`
	EURInsights    string `json:"eurInsights"`
	CryptoInsights string `json:"cryptoInsights"`
	ActionableStep string `json:"actionableStep"`
	BookQuote      string `json:"bookQuote"`
}
