package models

import "encoding/json"

// TodoItem is a freeform checklist entry outside the scheduled timeline.
type TodoItem struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// AppState is the aggregate value object holding every collection the app
// owns. It is used for the undo ring buffer and as the cloud-save payload;
// nothing else should hold a long-lived reference to one.
type AppState struct {
	Tasks             []Task                        `json:"tasks"`
	Events            []CalendarEvent               `json:"events"`
	Transactions      []Transaction                 `json:"transactions"`
	Routine           Routine                       `json:"routine"`
	Goals             []string                      `json:"goals"`
	Mantra            string                        `json:"mantra"`
	Review            string                        `json:"review"`
	Todos             []TodoItem                    `json:"todos"`
	Knowledge         []KnowledgeItem               `json:"knowledge"`
	DailyStats        map[string]DailyStats         `json:"dailyStats"`
	DailyAnalyses     map[string]ReflectionAnalysis `json:"dailyAnalyses"`
	WeeklyAnalyses    map[string]WeeklyAnalysis     `json:"weeklyAnalyses"`
	FinanceAnalyses   map[string]FinanceAnalysis    `json:"financeAnalyses"`
	TotalFocusMinutes int                           `json:"totalFocusMinutes"`
	TimerSessions     int                           `json:"timerSessions"`
}

// NewAppState returns an empty state with all maps allocated and default
// scalar fields.
func NewAppState() AppState {
	return AppState{
		Goals:           []string{"", "", ""},
		Routine:         DefaultRoutine(),
		DailyStats:      make(map[string]DailyStats),
		DailyAnalyses:   make(map[string]ReflectionAnalysis),
		WeeklyAnalyses:  make(map[string]WeeklyAnalysis),
		FinanceAnalyses: make(map[string]FinanceAnalysis),
	}
}

// Clone returns a deep copy of the state via a JSON round trip. The undo
// buffer and the cloud saver both depend on snapshots sharing nothing with
// the live state.
func (s AppState) Clone() AppState {
	data, err := json.Marshal(s)
	if err != nil {
		// AppState contains only JSON-serializable fields; this cannot fail.
		panic("models: appstate marshal: " + err.Error())
	}
	var out AppState
	if err := json.Unmarshal(data, &out); err != nil {
		panic("models: appstate unmarshal: " + err.Error())
	}
	if out.DailyStats == nil {
		out.DailyStats = make(map[string]DailyStats)
	}
	if out.DailyAnalyses == nil {
		out.DailyAnalyses = make(map[string]ReflectionAnalysis)
	}
	if out.WeeklyAnalyses == nil {
		out.WeeklyAnalyses = make(map[string]WeeklyAnalysis)
	}
	if out.FinanceAnalyses == nil {
		out.FinanceAnalyses = make(map[string]FinanceAnalysis)
	}
	return out
}
