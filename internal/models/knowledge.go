package models

// KnowledgeCategory groups knowledge hub entries by theme
type KnowledgeCategory string

const (
	KnowledgeCategoryHabits   KnowledgeCategory = "Habits"
	KnowledgeCategoryDeepWork KnowledgeCategory = "Deep Work"
	KnowledgeCategoryMindset  KnowledgeCategory = "Mindset"
	KnowledgeCategoryFinance  KnowledgeCategory = "Finance"
	KnowledgeCategoryOther    KnowledgeCategory = "Other"
)

// KnowledgeItem is one captured principle from the user's reading. The
// collection feeds the coaching prompts so plans and reflections can quote
// the user's own sources.
type KnowledgeItem struct {
	ID        string            `json:"id"`
	BookTitle string            `json:"bookTitle"`
	Content   string            `json:"content"`
	Category  KnowledgeCategory `json:"category"`
}
