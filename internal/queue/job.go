package queue

import (
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of coaching job
type JobType string

const (
	// JobTypeRitualPlan generates the morning plan for a date
	JobTypeRitualPlan JobType = "ritual_plan"
	// JobTypeReflection analyzes a daily review
	JobTypeReflection JobType = "reflection"
	// JobTypePeriodSynthesis condenses a week or month of insights
	JobTypePeriodSynthesis JobType = "period_synthesis"
	// JobTypeFinanceReview analyzes a period of ledger entries
	JobTypeFinanceReview JobType = "finance_review"
)

// Job represents a coaching job in the queue. Date is the target date for
// daily jobs and the period start for synthesis and finance jobs.
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	UserID     uuid.UUID      `json:"user_id"`
	Date       string         `json:"date,omitempty"`       // YYYY-MM-DD or YYYY-MM
	NotBefore  *time.Time     `json:"not_before,omitempty"` // Earliest time to process job (nil = immediate)
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // Latest time to process job (nil = no expiration)
	Metadata   map[string]any `json:"metadata,omitempty"`   // Job-specific data
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new coaching job
func NewJob(jobType JobType, userID uuid.UUID, date string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Date:       date,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		RetryCount: 0,
		MaxRetries: 3,
	}
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
