package cloudsync

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/state"
)

const (
	// SpreadsheetTitle is the name of the user's backing spreadsheet
	SpreadsheetTitle = "ZenithFlow Data"
	// StateSheetName is the hidden tab holding the chunked compressed state
	StateSheetName = "_zenithflow_state"
	// DailyLogSheetName is the human-readable daily stats tab
	DailyLogSheetName = "DailyLogs"
	// DefaultSaveDelay is the auto-save debounce window
	DefaultSaveDelay = 3 * time.Second
	// saveTimeout bounds a single save attempt
	saveTimeout = 30 * time.Second
)

var dailyLogHeader = []string{
	"Date", "Wake Time", "Focus Minutes", "Completion %", "Reflection", "Insight", "Key Concept", "Action Item",
}

// Saver persists the full application state to the remote spreadsheet with
// debounced, chunked, compressed writes, and mirrors transactions into
// readable per-month sheets. Auto-save failures never propagate; the next
// debounce window simply retries.
type Saver struct {
	store   *state.Store
	sheets  SheetStore
	session SessionState
	logger  *zap.Logger
	deb     *state.Debouncer
	now     func() time.Time
}

// NewSaver wires a saver to the store's change notifications. Every mutation
// restarts the debounce window; the write itself only fires while a sync
// session is established.
func NewSaver(store *state.Store, sheets SheetStore, session SessionState, logger *zap.Logger, delay time.Duration) *Saver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	s := &Saver{store: store, sheets: sheets, session: session, logger: logger, now: time.Now}
	s.deb = state.NewDebouncer(delay, s.autoSave)
	store.OnChange(s.deb.Trigger)
	return s
}

// Trigger restarts the auto-save debounce window. Exposed for callers that
// replace the store's change callback with a composite one.
func (s *Saver) Trigger() {
	s.deb.Trigger()
}

// Stop cancels any pending auto-save.
func (s *Saver) Stop() {
	s.deb.Stop()
}

// Flush runs any pending save immediately, e.g. on shutdown.
func (s *Saver) Flush() {
	s.deb.Flush()
}

func (s *Saver) autoSave() {
	if !s.session.Synced() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.Save(ctx); err != nil {
		s.logger.Warn("cloud_autosave_failed", zap.Error(err))
	}
}

// Save writes the current state to the hidden sheet: serialize, compress,
// chunk, clear the previous column contents, then write. Only explicit manual
// sync callers should surface the returned error to the user.
func (s *Saver) Save(ctx context.Context) error {
	st := s.store.State()

	chunks, err := EncodeState(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	spreadsheetID, err := s.ensureSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve spreadsheet: %w", err)
	}

	if err := s.sheets.EnsureSheet(ctx, spreadsheetID, StateSheetName, true); err != nil {
		return fmt.Errorf("failed to ensure state sheet: %w", err)
	}

	// Clear first so a shrinking payload leaves no stale trailing chunks.
	if err := s.sheets.Clear(ctx, spreadsheetID, StateSheetName+"!A:A"); err != nil {
		return fmt.Errorf("failed to clear state column: %w", err)
	}

	rows := make([][]string, len(chunks))
	for i, chunk := range chunks {
		rows[i] = []string{chunk}
	}
	if err := s.sheets.Update(ctx, spreadsheetID, StateSheetName+"!A1", rows); err != nil {
		return fmt.Errorf("failed to write state chunks: %w", err)
	}

	s.logger.Debug("cloud_state_saved",
		zap.Int("chunks", len(chunks)),
		zap.String("spreadsheet_id", spreadsheetID),
	)

	// Readable mirrors are best-effort: failures are logged and must not
	// fail the overall save.
	if err := s.mirrorTransactions(ctx, spreadsheetID, st.Transactions); err != nil {
		s.logger.Warn("transaction_mirror_failed", zap.Error(err))
	}
	if err := s.syncDailyLog(ctx, spreadsheetID, st); err != nil {
		s.logger.Warn("daily_log_sync_failed", zap.Error(err))
	}

	return nil
}

// Load reads the state column back, concatenates chunks in row order, and
// decodes. Any failure yields ok=false and the caller falls back to local
// defaults.
func (s *Saver) Load(ctx context.Context) (models.AppState, bool) {
	spreadsheetID, err := s.ensureSpreadsheet(ctx)
	if err != nil {
		s.logger.Warn("cloud_load_no_spreadsheet", zap.Error(err))
		return models.AppState{}, false
	}

	rows, err := s.sheets.Read(ctx, spreadsheetID, StateSheetName+"!A:A")
	if err != nil {
		s.logger.Warn("cloud_load_read_failed", zap.Error(err))
		return models.AppState{}, false
	}

	chunks := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			chunks = append(chunks, row[0])
		}
	}
	st, ok := DecodeState(chunks)
	if !ok {
		s.logger.Info("cloud_load_no_remote_state")
	}
	return st, ok
}

// ensureSpreadsheet resolves the backing spreadsheet id: a cached id is
// verified with a cheap read and discarded when stale, then discovery by
// title, then creation with the daily log header seeded.
func (s *Saver) ensureSpreadsheet(ctx context.Context) (string, error) {
	if id := s.session.SpreadsheetID(); id != "" {
		if err := s.sheets.Verify(ctx, id); err == nil {
			return id, nil
		}
		s.logger.Info("cached_spreadsheet_id_stale", zap.String("spreadsheet_id", id))
		s.session.SetSpreadsheetID("")
	}

	id, err := s.sheets.FindSpreadsheet(ctx, SpreadsheetTitle)
	if err != nil {
		return "", fmt.Errorf("failed to search for spreadsheet: %w", err)
	}
	if id != "" {
		s.session.SetSpreadsheetID(id)
		return id, nil
	}

	id, err = s.sheets.CreateSpreadsheet(ctx, SpreadsheetTitle)
	if err != nil {
		return "", fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	if err := s.sheets.EnsureSheet(ctx, id, DailyLogSheetName, false); err != nil {
		return "", fmt.Errorf("failed to create daily log sheet: %w", err)
	}
	if err := s.sheets.Append(ctx, id, DailyLogSheetName+"!A1", [][]string{dailyLogHeader}); err != nil {
		return "", fmt.Errorf("failed to seed daily log header: %w", err)
	}
	s.session.SetSpreadsheetID(id)
	s.logger.Info("spreadsheet_created", zap.String("spreadsheet_id", id))
	return id, nil
}

// mirrorTransactions rewrites one readable sheet per transaction month,
// independent of the compressed blob, for manual inspection.
func (s *Saver) mirrorTransactions(ctx context.Context, spreadsheetID string, txs []models.Transaction) error {
	byMonth := make(map[string][]models.Transaction)
	for _, tx := range txs {
		if len(tx.Date) < 7 {
			continue
		}
		month := tx.Date[:7] // YYYY-MM
		byMonth[month] = append(byMonth[month], tx)
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	for _, month := range months {
		title := "Transactions " + month
		if err := s.sheets.EnsureSheet(ctx, spreadsheetID, title, false); err != nil {
			return fmt.Errorf("failed to ensure sheet %q: %w", title, err)
		}
		a1 := fmt.Sprintf("'%s'!A:F", title)
		if err := s.sheets.Clear(ctx, spreadsheetID, a1); err != nil {
			return fmt.Errorf("failed to clear sheet %q: %w", title, err)
		}

		rows := [][]string{{"Date", "Amount", "Currency", "Category", "Profit", "Notes"}}
		for _, tx := range byMonth[month] {
			profit := ""
			if tx.IsProfit != nil {
				profit = strconv.FormatBool(*tx.IsProfit)
			}
			rows = append(rows, []string{
				tx.Date,
				strconv.FormatFloat(tx.Amount, 'f', 2, 64),
				string(tx.Currency),
				tx.Category,
				profit,
				tx.Notes,
			})
		}
		if err := s.sheets.Update(ctx, spreadsheetID, fmt.Sprintf("'%s'!A1", title), rows); err != nil {
			return fmt.Errorf("failed to write sheet %q: %w", title, err)
		}
	}
	return nil
}

// syncDailyLog upserts today's row in the readable daily log, keyed by date.
func (s *Saver) syncDailyLog(ctx context.Context, spreadsheetID string, st models.AppState) error {
	date := s.now().Format("2006-01-02")
	stats := st.DailyStats[date]
	analysis := st.DailyAnalyses[date]

	rowData := []string{
		date,
		stats.WakeTime,
		strconv.Itoa(stats.FocusMinutes),
		strconv.Itoa(stats.CompletionRate),
		st.Review,
		analysis.Insight,
		analysis.Concept,
		analysis.ActionItem,
	}

	rows, err := s.sheets.Read(ctx, spreadsheetID, DailyLogSheetName+"!A:A")
	if err != nil {
		return fmt.Errorf("failed to read daily log: %w", err)
	}

	rowIndex := -1
	for i, row := range rows {
		if len(row) > 0 && row[0] == date {
			rowIndex = i
			break
		}
	}

	if rowIndex != -1 {
		// A1 notation is 1-based.
		a1 := fmt.Sprintf("%s!A%d", DailyLogSheetName, rowIndex+1)
		if err := s.sheets.Update(ctx, spreadsheetID, a1, [][]string{rowData}); err != nil {
			return fmt.Errorf("failed to update daily log row: %w", err)
		}
		return nil
	}
	if err := s.sheets.Append(ctx, spreadsheetID, DailyLogSheetName+"!A1", [][]string{rowData}); err != nil {
		return fmt.Errorf("failed to append daily log row: %w", err)
	}
	return nil
}
