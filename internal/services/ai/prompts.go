package ai

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zenithflow/zenithflow/internal/models"
)

// Prompt builders. Each pairs with a response schema the model is told to
// follow; parsing happens in ExtractJSON and validation at the call site.

func buildRitualPrompt(input RitualInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Plan the morning of %s for a user with these standing goals:\n", input.Date)
	for i, goal := range input.Goals {
		if goal != "" {
			fmt.Fprintf(&b, "%d. %s\n", i+1, goal)
		}
	}

	fmt.Fprintf(&b, "\nRoutine today: wake %s", input.Routine.Wake)
	if input.Routine.Meditation {
		b.WriteString(", meditated")
	}
	if input.Routine.Exercise {
		b.WriteString(", exercised")
	}
	b.WriteString("\n")

	if len(input.OpenTasks) > 0 {
		b.WriteString("\nOpen tasks carried into today:\n")
		for _, t := range input.OpenTasks {
			fmt.Fprintf(&b, "- %s (%s, %d min)\n", t.Title, t.Category, t.DurationMinutes)
		}
	}
	if len(input.Todos) > 0 {
		b.WriteString("\nChecklist items:\n")
		for _, todo := range input.Todos {
			fmt.Fprintf(&b, "- %s\n", todo.Text)
		}
	}
	if len(input.RecentTitles) > 0 {
		b.WriteString("\nRecently completed:\n")
		for _, title := range input.RecentTitles {
			fmt.Fprintf(&b, "- %s\n", title)
		}
	}
	writeKnowledge(&b, input.Knowledge)

	b.WriteString(`
Respond with a JSON object in this format:
{
  "advice": "one or two sentences of focused encouragement",
  "tasks": [
    {"title": "...", "startTime": "HH:MM", "durationMinutes": 60, "isEssential": true, "reason": "..."}
  ]
}

Guidelines:
- Suggest 3 to 5 tasks, each aligned with one of the goals.
- Start times use 24-hour HH:MM and respect the wake time.
- Mark at most two tasks as essential.
- Durations are multiples of 15 minutes.

Return only valid JSON.`)

	return b.String()
}

func buildReflectionPrompt(input ReflectionInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "The user wrote this review of %s:\n\n%q\n", input.Date, input.Review)
	if len(input.CompletedTasks) > 0 {
		b.WriteString("\nCompleted that day:\n")
		for _, t := range input.CompletedTasks {
			fmt.Fprintf(&b, "- %s (%s)\n", t.Title, t.Category)
		}
	}
	if input.FocusMinutes > 0 {
		fmt.Fprintf(&b, "\nFocused work logged: %d minutes.\n", input.FocusMinutes)
	}
	writeKnowledge(&b, input.Knowledge)
	if len(input.Knowledge) > 0 {
		b.WriteString("\nQuote specific principles from these books where relevant.\n")
	}

	b.WriteString(`
Respond with a JSON object in this format:
{
  "insight": "the single most important observation about this day",
  "bookReference": "a relevant book title and author",
  "concept": "the key concept from that book, in one sentence",
  "actionItem": "one concrete thing to do differently tomorrow"
}

Return only valid JSON.`)

	return b.String()
}

// writeKnowledge appends the knowledge hub entries so the model can ground
// advice in the user's own reading.
func writeKnowledge(b *strings.Builder, items []models.KnowledgeItem) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\nPrinciples from the user's reading:\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s (%s): %s\n", item.BookTitle, item.Category, item.Content)
	}
}

func buildPeriodPrompt(input PeriodInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Synthesize the daily insights from %s to %s:\n\n", input.StartDate, input.EndDate)

	dates := make([]string, 0, len(input.Insights))
	for date := range input.Insights {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	for _, date := range dates {
		insight := input.Insights[date]
		fmt.Fprintf(&b, "%s: %s", date, insight.Insight)
		if insight.ActionItem != "" {
			fmt.Fprintf(&b, " (action: %s)", insight.ActionItem)
		}
		b.WriteString("\n")
	}

	b.WriteString(`
Respond with a JSON object in this format:
{
  "summary": "two or three sentences describing the period",
  "patterns": ["recurring pattern 1", "recurring pattern 2"],
  "suggestions": "what to keep doing",
  "improvement": "the one change with the highest leverage"
}

Return only valid JSON.`)

	return b.String()
}

func buildFinancePrompt(input FinanceInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Review the ledger for %s.", input.Period)
	if input.MonthlyBudget > 0 {
		fmt.Fprintf(&b, " The monthly budget is %.2f EUR.", input.MonthlyBudget)
	}
	b.WriteString("\n\nEntries:\n")
	for _, tx := range input.Transactions {
		line := fmt.Sprintf("- %s: %.2f %s, %s", tx.Date, tx.Amount, tx.Currency, tx.Category)
		if tx.IsProfit != nil {
			if *tx.IsProfit {
				line += " (profit)"
			} else {
				line += " (loss)"
			}
		}
		if tx.Notes != "" {
			line += ", " + tx.Notes
		}
		b.WriteString(line + "\n")
	}

	b.WriteString(`
Respond with a JSON object in this format:
{
  "overallStatus": "Growth" | "Refining" | "Cautious",
  "summary": "two sentences on the period overall",
  "eurInsights": "observations about everyday EUR spending",
  "cryptoInsights": "observations about trading entries, or an empty string",
  "actionableStep": "one concrete adjustment for next period",
  "bookQuote": "a short relevant quote from a personal finance book, with attribution"
}

Return only valid JSON.`)

	return b.String()
}
