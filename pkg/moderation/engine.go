package moderation

import (
	"context"

	"github.com/sirupsen/logrus"
)

//go:generate mockery --name=ImageClassifier --dir=. --output=../../mocks --filename=image_classifier_mock.go --case=underscore

// ImageClassifier is the gateway surface the engine drives. Satisfied by
// *ClassifierGateway; substituted with a mock in tests.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, image []byte) ([]CategoryScore, error)
	ClassifyFrame(ctx context.Context, frame []byte) ([]CategoryScore, error)
}

// Engine is the content risk decision engine: one classifier call per image
// (or one per video frame), rule evaluation, and multi-frame aggregation.
// It returns a well-formed verdict on every path; upstream failures resolve
// to a fail-closed rejection, and only caller input errors surface as errors.
type Engine struct {
	classifier ImageClassifier
	rules      *RuleEngine
	logger     logrus.FieldLogger
}

func NewEngine(classifier ImageClassifier, rules *RuleEngine, logger logrus.FieldLogger) *Engine {
	return &Engine{
		classifier: classifier,
		rules:      rules,
		logger:     logger,
	}
}

// ClassifyImage produces the verdict for one image buffer.
func (e *Engine) ClassifyImage(ctx context.Context, image []byte) (*ClassificationVerdict, error) {
	if len(image) == 0 {
		return nil, ErrEmptyMedia
	}

	categories, err := e.classifier.ClassifyImage(ctx, image)
	if err != nil {
		return rejected(nil, ReasonUnavailable), nil
	}
	return e.verdictFor(categories), nil
}

// ClassifyVideo reduces the per-frame verdicts for a set of video frames to
// one verdict. Frames are classified strictly in order and processing stops
// at the first rejection: once a video is known to fail, further classifier
// calls are wasted spend. An accepted video pools every frame's categories
// and recomputes the aggregate score over the pooled list, so one strongly
// risky category in a single frame weighs the same as it would in a
// single-image classification.
func (e *Engine) ClassifyVideo(ctx context.Context, frames [][]byte) (*ClassificationVerdict, error) {
	if len(frames) == 0 {
		// Undefined upstream; decided fail-closed. An empty frame set means
		// extraction broke, and that must never default to acceptance.
		return nil, ErrNoFrames
	}

	var pooled []CategoryScore
	for i, frame := range frames {
		if len(frame) == 0 {
			return nil, ErrEmptyMedia
		}

		categories, err := e.classifier.ClassifyFrame(ctx, frame)
		if err != nil {
			return rejected(pooled, ReasonUnavailable), nil
		}

		if outcome := e.rules.Evaluate(categories); outcome.Rejected {
			e.logger.WithFields(logrus.Fields{
				"frame":  i,
				"frames": len(frames),
				"reason": outcome.Reason,
			}).Info("video frame rejected, skipping remaining frames")
			return rejected(append(pooled, categories...), outcome.Reason), nil
		}
		pooled = append(pooled, categories...)
	}
	return accepted(pooled), nil
}

// TestRulesResult is the diagnostic output of TestRules.
type TestRulesResult struct {
	Verdict            Verdict         `json:"verdict"`
	Categories         []CategoryScore `json:"categories"`
	RejectionReason    string          `json:"rejection_reason,omitempty"`
	AggregateRiskScore float64         `json:"aggregate_risk_score"`
	ViolenceScore      float64         `json:"violence_score"`
	WeaponScore        float64         `json:"weapon_score"`
}

// TestRules runs the rule engine and score calculator directly on caller
// supplied scores, bypassing the classifier entirely. Used for policy tuning
// without real media.
func (e *Engine) TestRules(categories []CategoryScore) TestRulesResult {
	outcome := e.rules.Evaluate(categories)
	scores := e.rules.Scores(categories)

	result := TestRulesResult{
		Verdict:            VerdictAccepted,
		Categories:         categories,
		AggregateRiskScore: AggregateRiskScore(categories),
		ViolenceScore:      scores.ViolenceScore,
		WeaponScore:        scores.WeaponScore,
	}
	if outcome.Rejected {
		result.Verdict = VerdictRejected
		result.RejectionReason = outcome.Reason
	}
	return result
}

func (e *Engine) verdictFor(categories []CategoryScore) *ClassificationVerdict {
	if outcome := e.rules.Evaluate(categories); outcome.Rejected {
		return rejected(categories, outcome.Reason)
	}
	return accepted(categories)
}
