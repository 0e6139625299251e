// Package workers holds the background consumers of the coaching job queue.
package workers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/zenithflow/zenithflow/internal/database"
	"github.com/zenithflow/zenithflow/internal/models"
	"github.com/zenithflow/zenithflow/internal/queue"
	"github.com/zenithflow/zenithflow/internal/services/ai"
)

const recentTitleLimit = 10

// Coach consumes coaching jobs: it loads the user's state blob, asks the AI
// provider for the requested analysis, and stages the result for the API.
// The state blob is read-only here; the API owns every write to it, so a
// workspace persist can never race a worker save.
type Coach struct {
	provider ai.Provider
	states   database.AppStateRepositoryInterface
	results  database.CoachResultRepositoryInterface
	jobQueue queue.JobQueue // for re-enqueueing delayed retries
	logger   *zap.Logger
}

// NewCoach creates a new coach worker
func NewCoach(provider ai.Provider, states database.AppStateRepositoryInterface, results database.CoachResultRepositoryInterface, jobQueue queue.JobQueue, logger *zap.Logger) *Coach {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coach{
		provider: provider,
		states:   states,
		results:  results,
		jobQueue: jobQueue,
		logger:   logger,
	}
}

// ProcessJob dispatches a message to the processor for its job type and
// handles ack/nack and retry policy.
func (c *Coach) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if !job.ShouldProcess() {
		c.logger.Info("coaching_job_deferred",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore),
		)
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("job_ack_failed", zap.Error(ackErr))
		}
		return nil
	}

	var err error
	switch job.Type {
	case queue.JobTypeRitualPlan:
		err = c.processRitualPlan(ctx, job)
	case queue.JobTypeReflection:
		err = c.processReflection(ctx, job)
	case queue.JobTypePeriodSynthesis:
		err = c.processPeriodSynthesis(ctx, job)
	case queue.JobTypeFinanceReview:
		err = c.processFinanceReview(ctx, job)
	default:
		if nackErr := msg.Nack(false); nackErr != nil {
			c.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return c.handleJobError(ctx, msg, job, err)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	c.logger.Info("coaching_job_completed",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("user_id", job.UserID.String()),
	)
	return nil
}

func (c *Coach) processRitualPlan(ctx context.Context, job *queue.Job) error {
	st, err := c.states.GetOrDefault(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	input := ai.RitualInput{
		Date:      job.Date,
		Goals:     st.Goals,
		Routine:   st.Routine,
		Todos:     st.Todos,
		Knowledge: st.Knowledge,
	}
	for _, t := range st.Tasks {
		if t.Date == job.Date && t.Status == models.TaskStatusPlanned {
			input.OpenTasks = append(input.OpenTasks, t)
		}
	}
	input.RecentTitles = recentCompletedTitles(st.Tasks, job.Date)

	plan, err := c.provider.GenerateRitualPlan(ctx, input)
	if err != nil {
		return err
	}

	return c.stage(ctx, job, models.CoachResult{Kind: models.CoachResultRitual, Key: job.Date, Ritual: &plan})
}

func (c *Coach) processReflection(ctx context.Context, job *queue.Job) error {
	st, err := c.states.GetOrDefault(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	input := ai.ReflectionInput{
		Date:         job.Date,
		Review:       st.Review,
		Knowledge:    st.Knowledge,
		FocusMinutes: st.DailyStats[job.Date].FocusMinutes,
	}
	if review, ok := job.Metadata["review"].(string); ok && review != "" {
		input.Review = review
	}
	for _, t := range st.Tasks {
		if t.Date == job.Date && t.Status == models.TaskStatusCompleted {
			input.CompletedTasks = append(input.CompletedTasks, t)
		}
	}

	analysis, err := c.provider.AnalyzeReflection(ctx, input)
	if err != nil {
		return err
	}

	return c.stage(ctx, job, models.CoachResult{Kind: models.CoachResultReflection, Key: job.Date, Reflection: &analysis})
}

func (c *Coach) processPeriodSynthesis(ctx context.Context, job *queue.Job) error {
	st, err := c.states.GetOrDefault(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	endDate := periodEnd(job)
	input := ai.PeriodInput{
		StartDate: job.Date,
		EndDate:   endDate,
		Insights:  make(map[string]models.ReflectionAnalysis),
	}
	for date, insight := range st.DailyAnalyses {
		if date >= job.Date && date <= endDate {
			input.Insights[date] = insight
		}
	}
	if len(input.Insights) == 0 {
		c.logger.Info("period_synthesis_skipped_no_insights",
			zap.String("user_id", job.UserID.String()),
			zap.String("start", job.Date),
		)
		return nil
	}

	analysis, err := c.provider.SynthesizePeriod(ctx, input)
	if err != nil {
		return err
	}

	return c.stage(ctx, job, models.CoachResult{Kind: models.CoachResultWeekly, Key: job.Date, Weekly: &analysis})
}

func (c *Coach) processFinanceReview(ctx context.Context, job *queue.Job) error {
	st, err := c.states.GetOrDefault(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	input := ai.FinanceInput{Period: job.Date}
	if budget, ok := job.Metadata["monthlyBudget"].(float64); ok {
		input.MonthlyBudget = budget
	}
	for _, tx := range st.Transactions {
		if len(tx.Date) >= len(job.Date) && tx.Date[:len(job.Date)] == job.Date {
			input.Transactions = append(input.Transactions, tx)
		}
	}

	analysis, err := c.provider.AnalyzeFinances(ctx, input)
	if err != nil {
		return err
	}

	return c.stage(ctx, job, models.CoachResult{Kind: models.CoachResultFinance, Key: job.Date, Finance: &analysis})
}

// stage hands a finished result to the API via the staging table.
func (c *Coach) stage(ctx context.Context, job *queue.Job, result models.CoachResult) error {
	if err := c.results.Add(ctx, job.UserID, result); err != nil {
		return fmt.Errorf("failed to stage result: %w", err)
	}
	return nil
}

// handleJobError applies the retry policy: quota and rate-limit errors are
// re-enqueued through the delayed exchange, other errors retry in place until
// the budget is spent, then dead-letter.
func (c *Coach) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	if ai.IsQuotaError(err) || ai.IsRateLimitError(err) {
		retryDelay := ai.GetRetryDelay(err, job.RetryCount)
		notBefore := time.Now().Add(retryDelay)

		if c.jobQueue != nil && job.CanRetry() {
			delayed := *job
			delayed.NotBefore = &notBefore
			delayed.RetryCount = job.RetryCount + 1

			if ackErr := msg.Ack(); ackErr != nil {
				c.logger.Warn("job_ack_failed", zap.Error(ackErr))
			}
			if enqueueErr := c.jobQueue.Enqueue(ctx, &delayed); enqueueErr != nil {
				return fmt.Errorf("failed to re-enqueue throttled job: %w", enqueueErr)
			}
			c.logger.Info("coaching_job_delayed",
				zap.String("job_id", job.ID.String()),
				zap.Duration("retry_delay", retryDelay),
				zap.Error(err),
			)
			return nil
		}

		if nackErr := msg.Nack(false); nackErr != nil {
			c.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("provider throttled, retries exhausted: %w", err)
	}

	if job.CanRetry() {
		job.IncrementRetry()
		c.logger.Warn("coaching_job_retrying",
			zap.String("job_id", job.ID.String()),
			zap.Int("attempt", job.RetryCount),
			zap.Int("max_retries", job.MaxRetries),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			c.logger.Warn("job_nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	c.logger.Error("coaching_job_dead_lettered",
		zap.String("job_id", job.ID.String()),
		zap.Error(err),
	)
	if nackErr := msg.Nack(false); nackErr != nil {
		c.logger.Warn("job_nack_failed", zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", err)
}

// recentCompletedTitles returns up to recentTitleLimit titles completed
// before the plan's date, newest first.
func recentCompletedTitles(tasks []models.Task, before string) []string {
	type done struct {
		date  string
		title string
	}
	var completed []done
	for _, t := range tasks {
		if t.Status == models.TaskStatusCompleted && t.Date < before {
			completed = append(completed, done{date: t.Date, title: t.Title})
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].date > completed[j].date })

	titles := make([]string, 0, recentTitleLimit)
	for _, d := range completed {
		if len(titles) >= recentTitleLimit {
			break
		}
		titles = append(titles, d.title)
	}
	return titles
}

// periodEnd resolves the inclusive end date: an explicit endDate in metadata
// wins, otherwise the period is a calendar week.
func periodEnd(job *queue.Job) string {
	if end, ok := job.Metadata["endDate"].(string); ok && end != "" {
		return end
	}
	start, err := time.Parse("2006-01-02", job.Date)
	if err != nil {
		return job.Date
	}
	return start.AddDate(0, 0, 6).Format("2006-01-02")
}
