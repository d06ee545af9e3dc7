package moderation

import "math"

// DefaultSeverityBonus is added to a nonzero weapon or violence score before
// threshold comparison. The asymmetry is deliberate: for weapon and violence
// content a false rejection is cheaper than a false acceptance.
const DefaultSeverityBonus = 0.5

// sexualImpliesViolenceSeverity: a Sexual finding at or above this severity
// contributes to the violence score even without an explicit Violence tag.
const sexualImpliesViolenceSeverity = 3

// Bonuses configures the additive severity bias applied by
// DetectWeaponsAndViolence. Loaded once at startup, read-only thereafter.
type Bonuses struct {
	Violence float64 `mapstructure:"violence"`
	Weapon   float64 `mapstructure:"weapon"`
}

func DefaultBonuses() Bonuses {
	return Bonuses{Violence: DefaultSeverityBonus, Weapon: DefaultSeverityBonus}
}

// WeaponViolenceScores carries the boosted scores consumed by the rule engine
// in place of raw Violence severity.
type WeaponViolenceScores struct {
	ViolenceScore float64 `json:"violence_score"`
	WeaponScore   float64 `json:"weapon_score"`
}

// AggregateRiskScore returns the arithmetic mean severity over all findings.
// Empty input yields 0. Non-finite severities are treated as 0 so the result
// is never negative and never NaN.
func AggregateRiskScore(categories []CategoryScore) float64 {
	if len(categories) == 0 {
		return 0
	}
	var sum float64
	for _, c := range categories {
		sum += safeSeverity(c.Severity)
	}
	score := sum / float64(len(categories))
	if score < 0 || math.IsNaN(score) {
		return 0
	}
	return score
}

// DetectWeaponsAndViolence derives the boosted violence and weapon scores.
//
// The violence score is the maximum severity among Violence findings, plus 1
// when any Sexual finding reaches sexualImpliesViolenceSeverity (sexual
// content with violent framing implies nonzero violence even absent an
// explicit Violence tag). The weapon score is the maximum severity among Hate
// and SelfHarm findings of severity >= 1; the upstream classifier has no
// dedicated weapon category, so those act as weapon and violent-symbol
// proxies. Each score, once nonzero, receives its configured additive bonus.
func DetectWeaponsAndViolence(categories []CategoryScore, bonuses Bonuses) WeaponViolenceScores {
	var scores WeaponViolenceScores
	var sexualViolentFraming bool

	for _, c := range categories {
		severity := safeSeverity(c.Severity)
		switch c.Category {
		case CategoryViolence:
			if severity > scores.ViolenceScore {
				scores.ViolenceScore = severity
			}
		case CategorySexual:
			if severity >= sexualImpliesViolenceSeverity {
				sexualViolentFraming = true
			}
		case CategoryHate, CategorySelfHarm:
			if severity >= 1 && severity > scores.WeaponScore {
				scores.WeaponScore = severity
			}
		}
	}

	if sexualViolentFraming {
		scores.ViolenceScore++
	}
	if scores.ViolenceScore > 0 {
		scores.ViolenceScore += bonuses.Violence
	}
	if scores.WeaponScore > 0 {
		scores.WeaponScore += bonuses.Weapon
	}
	return scores
}

func safeSeverity(severity float64) float64 {
	if math.IsNaN(severity) || math.IsInf(severity, 0) || severity < 0 {
		return 0
	}
	return severity
}
