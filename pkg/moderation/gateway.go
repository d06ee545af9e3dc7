package moderation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ClearVault/MediaGuard/pkg/infra/httpx"
)

//go:generate mockery --name=Classifier --dir=. --output=../../mocks --filename=classifier_mock.go --case=underscore

// Classifier is the external image-safety collaborator. It reports per
// category severities for one image buffer and fails with a generic error on
// transport, timeout or malformed-response problems.
type Classifier interface {
	Analyze(ctx context.Context, image []byte) ([]CategoryScore, error)
}

// ErrClassifierUnavailable is the fail-closed sentinel: whatever went wrong
// underneath (timeout, open breaker, transport failure, unparseable
// response), the caller must reject the content, never accept it. An
// unavailable safety classifier is not "no risk detected".
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// GatewayTimeouts carries the per-operation budgets. Single images get the
// short timeout; video frames get a longer one since the budget is amortized
// across several calls.
type GatewayTimeouts struct {
	Image time.Duration
	Frame time.Duration
}

// ClassifierGateway submits images to the classifier through the circuit
// breaker and absorbs every failure mode into ErrClassifierUnavailable.
// Upstream errors never escape past it as raw errors.
type ClassifierGateway struct {
	classifier Classifier
	breaker    httpx.CircuitBreaker
	timeouts   GatewayTimeouts
	logger     logrus.FieldLogger
}

func NewClassifierGateway(
	classifier Classifier,
	breaker httpx.CircuitBreaker,
	timeouts GatewayTimeouts,
	logger logrus.FieldLogger,
) *ClassifierGateway {
	return &ClassifierGateway{
		classifier: classifier,
		breaker:    breaker,
		timeouts:   timeouts,
		logger:     logger,
	}
}

// ClassifyImage classifies one standalone image buffer.
func (g *ClassifierGateway) ClassifyImage(ctx context.Context, image []byte) ([]CategoryScore, error) {
	return g.classify(ctx, image, g.timeouts.Image)
}

// ClassifyFrame classifies one video frame buffer.
func (g *ClassifierGateway) ClassifyFrame(ctx context.Context, frame []byte) ([]CategoryScore, error) {
	return g.classify(ctx, frame, g.timeouts.Frame)
}

func (g *ClassifierGateway) classify(ctx context.Context, image []byte, timeout time.Duration) ([]CategoryScore, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var categories []CategoryScore
	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		result, err := g.classifier.Analyze(ctx, image)
		if err != nil {
			return err
		}
		categories = result
		return nil
	})
	if err != nil {
		fields := logrus.Fields{"breaker_state": g.breaker.State()}
		if errors.Is(err, httpx.ErrCircuitOpen) {
			fields["short_circuited"] = true
		}
		g.logger.WithError(err).WithFields(fields).Warn("classifier call failed, failing closed")
		return nil, ErrClassifierUnavailable
	}
	return categories, nil
}
