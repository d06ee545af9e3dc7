package moderation

// childCompoundSexualSeverity is the sexual severity floor used by the
// child-with-sexual compound rule. It is intentionally a fixed constant and
// NOT derived from the configured Sexual threshold: the compound rule must
// keep firing on low-grade sexual content whenever minors are present, even
// when the platform-wide sexual threshold is tuned higher.
const childCompoundSexualSeverity = 2

// Thresholds maps each category to the minimum severity that triggers
// rejection on its own. Process-wide, loaded once at startup, read-only
// thereafter. Violence and Weapons are compared against the boosted scores
// from DetectWeaponsAndViolence, not raw severities.
type Thresholds struct {
	Child    float64 `mapstructure:"child"`
	Violence float64 `mapstructure:"violence"`
	Weapons  float64 `mapstructure:"weapons"`
	Hate     float64 `mapstructure:"hate"`
	SelfHarm float64 `mapstructure:"self_harm"`
	Sexual   float64 `mapstructure:"sexual"`
}

// CompoundRules toggles the conjunction rules individually.
type CompoundRules struct {
	ChildWithViolence bool `mapstructure:"child_with_violence"`
	ChildWithHate     bool `mapstructure:"child_with_hate"`
	ChildWithSexual   bool `mapstructure:"child_with_sexual"`
}

// RuleEngine converts a category score list into an accept/reject outcome.
// Evaluate is a total function with no side effects and no time or network
// dependency, so policy can be exercised in isolation with literal inputs.
type RuleEngine struct {
	thresholds Thresholds
	compound   CompoundRules
	bonuses    Bonuses
	rules      []rule
}

// rule pairs a predicate with the reason reported when it matches. The rule
// list is ordered and evaluated with an early-exit scan: the first match wins
// and later rules are never consulted. Order is policy, not optimization —
// overlapping compound rules would otherwise each claim a different reason
// for the same rejection. See the precedence tests before reordering.
type rule struct {
	match  func(in ruleInput) bool
	reason string
}

type ruleInput struct {
	categories []CategoryScore
	scores     WeaponViolenceScores
}

func NewRuleEngine(thresholds Thresholds, compound CompoundRules, bonuses Bonuses) *RuleEngine {
	e := &RuleEngine{
		thresholds: thresholds,
		compound:   compound,
		bonuses:    bonuses,
	}
	e.rules = e.buildRules()
	return e
}

// buildRules assembles the ordered policy list. Specific single-category
// rules come first so a compound rule never masks a more specific reason.
// The compound child rules precede the plain Child rule: when a conjunction
// matched, its distinct reason is the one reported. The plain Child rule sits
// last as the zero-tolerance catch-all, so any child finding at threshold is
// always rejected no matter which toggles are off.
func (e *RuleEngine) buildRules() []rule {
	rules := []rule{
		{
			match:  func(in ruleInput) bool { return in.scores.ViolenceScore >= e.thresholds.Violence },
			reason: ReasonViolence,
		},
		{
			match:  func(in ruleInput) bool { return in.scores.WeaponScore >= e.thresholds.Weapons },
			reason: ReasonWeapons,
		},
		{
			match:  func(in ruleInput) bool { return maxSeverity(in.categories, CategoryHate) >= e.thresholds.Hate },
			reason: ReasonHate,
		},
		{
			match:  func(in ruleInput) bool { return maxSeverity(in.categories, CategorySelfHarm) >= e.thresholds.SelfHarm },
			reason: ReasonSelfHarm,
		},
		{
			match:  func(in ruleInput) bool { return maxSeverity(in.categories, CategorySexual) >= e.thresholds.Sexual },
			reason: ReasonSexual,
		},
	}

	if e.compound.ChildWithViolence {
		rules = append(rules, rule{
			match: func(in ruleInput) bool {
				return e.childPresent(in.categories) &&
					(in.scores.ViolenceScore >= e.thresholds.Violence || in.scores.WeaponScore >= e.thresholds.Weapons)
			},
			reason: ReasonChildWithViolence,
		})
	}
	if e.compound.ChildWithHate {
		rules = append(rules, rule{
			match: func(in ruleInput) bool {
				return e.childPresent(in.categories) && maxSeverity(in.categories, CategoryHate) >= 1
			},
			reason: ReasonChildWithHate,
		})
	}
	if e.compound.ChildWithSexual {
		rules = append(rules, rule{
			match: func(in ruleInput) bool {
				return e.childPresent(in.categories) &&
					maxSeverity(in.categories, CategorySexual) >= childCompoundSexualSeverity
			},
			reason: ReasonChildWithSexual,
		})
	}

	return append(rules, rule{
		match:  func(in ruleInput) bool { return e.childPresent(in.categories) },
		reason: ReasonChildContent,
	})
}

// Evaluate runs the ordered rule scan and returns exactly one outcome.
func (e *RuleEngine) Evaluate(categories []CategoryScore) RuleOutcome {
	in := ruleInput{
		categories: categories,
		scores:     DetectWeaponsAndViolence(categories, e.bonuses),
	}
	for _, r := range e.rules {
		if r.match(in) {
			return RuleOutcome{Rejected: true, Reason: r.reason}
		}
	}
	return RuleOutcome{}
}

// Scores exposes the boosted weapon and violence scores for the diagnostic
// rule-testing entry point.
func (e *RuleEngine) Scores(categories []CategoryScore) WeaponViolenceScores {
	return DetectWeaponsAndViolence(categories, e.bonuses)
}

func (e *RuleEngine) childPresent(categories []CategoryScore) bool {
	return maxSeverity(categories, CategoryChild) >= e.thresholds.Child
}

func maxSeverity(categories []CategoryScore, category Category) float64 {
	var max float64 = -1
	for _, c := range categories {
		if c.Category == category && safeSeverity(c.Severity) > max {
			max = safeSeverity(c.Severity)
		}
	}
	return max
}
