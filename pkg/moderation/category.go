package moderation

// Category is the classifier-reported content category. The set mirrors the
// image safety API's taxonomy; unknown categories pass through untouched so a
// classifier-side addition never breaks score aggregation.
type Category string

const (
	CategoryChild    Category = "Child"
	CategoryViolence Category = "Violence"
	CategoryHate     Category = "Hate"
	CategorySelfHarm Category = "SelfHarm"
	CategorySexual   Category = "Sexual"
)

// CategoryScore is a single classifier finding. Severity is an opaque ordered
// scale as reported upstream (0-7 with EightSeverityLevels output), never a
// probability and never normalized.
type CategoryScore struct {
	Category Category `json:"category"`
	Severity float64  `json:"severity"`
}
