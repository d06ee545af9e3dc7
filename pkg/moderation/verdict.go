package moderation

import "errors"

type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// Rejection reason strings are part of the public contract: they are returned
// to callers, persisted in the audit trail and asserted on in tests. Keep them
// stable.
const (
	ReasonChildContent      = "content depicting minors is strictly prohibited"
	ReasonViolence          = "graphic violence exceeds the allowed severity"
	ReasonWeapons           = "weapons or violent symbols exceed the allowed severity"
	ReasonHate              = "hateful content exceeds the allowed severity"
	ReasonSelfHarm          = "self-harm content exceeds the allowed severity"
	ReasonSexual            = "explicit sexual content exceeds the allowed severity"
	ReasonChildWithViolence = "content depicting minors combined with violent or weapon-related content"
	ReasonChildWithHate     = "content depicting minors combined with hateful content"
	ReasonChildWithSexual   = "sexual content in the presence of minors"
	ReasonUnavailable       = "content moderation service temporarily unavailable"
	ReasonNoFrames          = "no video frames were supplied for moderation"
)

var (
	// ErrEmptyMedia reports caller input errors, distinct from any
	// classifier-driven rejection.
	ErrEmptyMedia = errors.New("media buffer is empty")
	ErrNoFrames   = errors.New("no video frames supplied")
)

// RuleOutcome is the terminal result of one rule-engine evaluation.
type RuleOutcome struct {
	Rejected bool   `json:"rejected"`
	Reason   string `json:"reason,omitempty"`
}

// ClassificationVerdict is the engine's answer for one image or one whole
// video. Immutable once produced; a rejected verdict always carries a reason.
type ClassificationVerdict struct {
	Verdict            Verdict         `json:"verdict"`
	Categories         []CategoryScore `json:"categories"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	AggregateRiskScore float64         `json:"aggregate_risk_score"`
}

func (v *ClassificationVerdict) Rejected() bool {
	return v.Verdict == VerdictRejected
}

func accepted(categories []CategoryScore) *ClassificationVerdict {
	return &ClassificationVerdict{
		Verdict:            VerdictAccepted,
		Categories:         categories,
		AggregateRiskScore: AggregateRiskScore(categories),
	}
}

func rejected(categories []CategoryScore, reason string) *ClassificationVerdict {
	return &ClassificationVerdict{
		Verdict:            VerdictRejected,
		Categories:         categories,
		RejectionReason:    reason,
		AggregateRiskScore: AggregateRiskScore(categories),
	}
}
