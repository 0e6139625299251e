package validation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/zenithflow/zenithflow/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but log if they do
	if err := Validate.RegisterValidation("task_category", validateTaskCategory); err != nil {
		panic(fmt.Sprintf("failed to register task_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("event_category", validateEventCategory); err != nil {
		panic(fmt.Sprintf("failed to register event_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("currency", validateCurrency); err != nil {
		panic(fmt.Sprintf("failed to register currency validator: %v", err))
	}
	if err := Validate.RegisterValidation("knowledge_category", validateKnowledgeCategory); err != nil {
		panic(fmt.Sprintf("failed to register knowledge_category validator: %v", err))
	}
	if err := Validate.RegisterValidation("clock", validateClock); err != nil {
		panic(fmt.Sprintf("failed to register clock validator: %v", err))
	}
}

func validateTaskCategory(fl validator.FieldLevel) bool {
	return ValidateTaskCategory(fl.Field().String()) == nil
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return ValidateTaskStatus(fl.Field().String()) == nil
}

func validateEventCategory(fl validator.FieldLevel) bool {
	return ValidateEventCategory(fl.Field().String()) == nil
}

func validateCurrency(fl validator.FieldLevel) bool {
	return ValidateCurrency(fl.Field().String()) == nil
}

func validateKnowledgeCategory(fl validator.FieldLevel) bool {
	return ValidateKnowledgeCategory(fl.Field().String()) == nil
}

// validateClock accepts HH:MM wall-clock strings. Empty is allowed so
// optional fields can use it; pair with required where needed.
func validateClock(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return ValidateClock(value) == nil
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	// Trim whitespace
	text = strings.TrimSpace(text)

	// Remove control characters except newline and tab
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}

// ValidateTaskCategory validates a TaskCategory string value
func ValidateTaskCategory(value string) error {
	switch models.TaskCategory(value) {
	case models.TaskCategoryLecture, models.TaskCategorySelfStudy, models.TaskCategoryEnglishSpeaking,
		models.TaskCategoryAIPractice, models.TaskCategoryCryptoAnalysis, models.TaskCategoryEvent,
		models.TaskCategoryGoal, models.TaskCategoryOther:
		return nil
	default:
		return fmt.Errorf("invalid task type: %s", value)
	}
}

// ValidateTaskStatus validates a TaskStatus string value
func ValidateTaskStatus(value string) error {
	switch models.TaskStatus(value) {
	case models.TaskStatusPlanned, models.TaskStatusCompleted, models.TaskStatusMigrated:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'Planned', 'Completed', or 'Migrated')", value)
	}
}

// ValidateEventCategory validates an EventCategory string value
func ValidateEventCategory(value string) error {
	switch models.EventCategory(value) {
	case models.EventCategoryMeeting, models.EventCategoryPreparation, models.EventCategoryDeadline,
		models.EventCategoryWork, models.EventCategoryOther:
		return nil
	default:
		return fmt.Errorf("invalid event type: %s", value)
	}
}

// ValidateCurrency validates a Currency string value
func ValidateCurrency(value string) error {
	switch models.Currency(value) {
	case models.CurrencyEUR, models.CurrencyNTD:
		return nil
	default:
		return fmt.Errorf("invalid currency: %s (must be 'EUR' or 'NTD')", value)
	}
}

// ValidateKnowledgeCategory validates a KnowledgeCategory string value
func ValidateKnowledgeCategory(value string) error {
	switch models.KnowledgeCategory(value) {
	case models.KnowledgeCategoryHabits, models.KnowledgeCategoryDeepWork, models.KnowledgeCategoryMindset,
		models.KnowledgeCategoryFinance, models.KnowledgeCategoryOther:
		return nil
	default:
		return fmt.Errorf("invalid knowledge category: %s", value)
	}
}

// ValidateClock validates an HH:MM wall-clock string
func ValidateClock(value string) error {
	if len(value) != 5 || value[2] != ':' {
		return fmt.Errorf("invalid time: %s (must be HH:MM)", value)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if value[i] < '0' || value[i] > '9' {
			return fmt.Errorf("invalid time: %s (must be HH:MM)", value)
		}
	}
	h := int(value[0]-'0')*10 + int(value[1]-'0')
	m := int(value[3]-'0')*10 + int(value[4]-'0')
	if h > 23 || m > 59 {
		return fmt.Errorf("invalid time: %s (must be HH:MM)", value)
	}
	return nil
}

// ValidateDate validates a YYYY-MM-DD date string shape
func ValidateDate(value string) error {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
	}
	for i, r := range value {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid date: %s (must be YYYY-MM-DD)", value)
		}
	}
	return nil
}
