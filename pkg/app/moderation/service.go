package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/ClearVault/MediaGuard/pkg/cache"
	"github.com/ClearVault/MediaGuard/pkg/common"
	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
	"github.com/ClearVault/MediaGuard/pkg/infra/prometheus"
	"github.com/ClearVault/MediaGuard/pkg/infra/storage"
	"github.com/ClearVault/MediaGuard/pkg/media"
	engine "github.com/ClearVault/MediaGuard/pkg/moderation"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// decisionEngine is the core engine surface the service drives.
type decisionEngine interface {
	ClassifyImage(ctx context.Context, image []byte) (*engine.ClassificationVerdict, error)
	ClassifyVideo(ctx context.Context, frames [][]byte) (*engine.ClassificationVerdict, error)
	TestRules(categories []engine.CategoryScore) engine.TestRulesResult
}

// Result is one finished moderation request: the verdict plus what happened
// around it (cache reuse, audit id, storage outcome).
type Result struct {
	ID         uuid.UUID                     `json:"id"`
	MediaType  string                        `json:"media_type"`
	Verdict    *engine.ClassificationVerdict `json:"verdict"`
	Cached     bool                          `json:"cached"`
	Stored     bool                          `json:"stored"`
	StorageKey string                        `json:"storage_key,omitempty"`
}

// Service orchestrates one moderation request end to end: input validation,
// verdict-cache lookup, the decision engine, audit persistence and storage of
// accepted media. Cache, repository and uploader are optional collaborators;
// the decision path never depends on them.
type Service struct {
	engine   decisionEngine
	cache    *cache.Cache
	repo     verdict.Repository
	uploader storage.Uploader
	logger   *logrus.Logger
	group    singleflight.Group
}

func NewService(
	eng decisionEngine,
	verdictCache *cache.Cache,
	repo verdict.Repository,
	uploader storage.Uploader,
	logger *logrus.Logger,
) *Service {
	return &Service{
		engine:   eng,
		cache:    verdictCache,
		repo:     repo,
		uploader: uploader,
		logger:   logger,
	}
}

// ModerateImage validates, classifies and post-processes one uploaded image.
// Input errors surface as errors; everything downstream of a valid input
// terminates in a well-formed verdict.
func (s *Service) ModerateImage(ctx context.Context, data []byte) (*Result, error) {
	info, err := media.Validate(data)
	if err != nil {
		return nil, err
	}

	hash, err := media.PerceptualHash(data)
	if err != nil {
		// A validated image that cannot be hashed is unusual but not fatal:
		// the request simply skips the cache.
		s.logger.WithError(err).Debug("perceptual hashing failed, skipping verdict cache")
		hash = ""
	}

	if hash != "" {
		if cached := s.lookupCached(ctx, hash); cached != nil {
			prometheus.CacheHitsTotal.WithLabelValues("hit").Inc()
			return &Result{ID: uuid.New(), MediaType: MediaTypeImage, Verdict: cached, Cached: true}, nil
		}
		prometheus.CacheHitsTotal.WithLabelValues("miss").Inc()
	}

	v, err := s.classifyImageOnce(ctx, hash, data)
	if err != nil {
		return nil, err
	}

	result := &Result{ID: uuid.New(), MediaType: MediaTypeImage, Verdict: v}

	if v.Verdict == engine.VerdictAccepted && s.uploader != nil {
		key := fmt.Sprintf("media/%s.%s", result.ID, info.Format)
		if err := s.uploader.Upload(ctx, key, bytes.NewReader(data), media.ContentType(info.Format)); err != nil {
			// The verdict stands; the caller is told storage did not.
			s.logger.WithError(err).Error("accepted media could not be stored")
		} else {
			result.Stored = true
			result.StorageKey = key
			s.storeThumbnail(ctx, result.ID, data)
		}
	}

	s.observe(MediaTypeImage, v)
	s.audit(ctx, result, hash, 0)
	s.storeCached(ctx, hash, v)

	return result, nil
}

// ModerateVideo classifies a set of pre-extracted video frames.
func (s *Service) ModerateVideo(ctx context.Context, frames [][]byte) (*Result, error) {
	if len(frames) == 0 {
		return nil, engine.ErrNoFrames
	}
	for _, frame := range frames {
		if _, err := media.Validate(frame); err != nil {
			return nil, err
		}
	}

	v, err := s.engine.ClassifyVideo(ctx, frames)
	if err != nil {
		return nil, err
	}

	result := &Result{ID: uuid.New(), MediaType: MediaTypeVideo, Verdict: v}

	s.observe(MediaTypeVideo, v)
	s.audit(ctx, result, "", len(frames))

	return result, nil
}

// TestRules proxies the engine's diagnostic entry point.
func (s *Service) TestRules(categories []engine.CategoryScore) engine.TestRulesResult {
	return s.engine.TestRules(categories)
}

// classifyImageOnce collapses concurrent requests for perceptually identical
// media into a single classifier call.
func (s *Service) classifyImageOnce(ctx context.Context, hash string, data []byte) (*engine.ClassificationVerdict, error) {
	if hash == "" {
		return s.engine.ClassifyImage(ctx, data)
	}
	v, err, _ := s.group.Do(hash, func() (interface{}, error) {
		return s.engine.ClassifyImage(ctx, data)
	})
	if err != nil {
		return nil, err
	}
	result, ok := v.(*engine.ClassificationVerdict)
	if !ok {
		return nil, fmt.Errorf("unexpected singleflight result type %T", v)
	}
	return result, nil
}

// storeThumbnail is best effort: the preview object is a convenience for the
// review UI, not part of the verdict.
func (s *Service) storeThumbnail(ctx context.Context, id uuid.UUID, data []byte) {
	thumb, err := media.ThumbnailJPEG(data)
	if err != nil {
		s.logger.WithError(err).Debug("thumbnail generation failed")
		return
	}
	key := fmt.Sprintf("media/%s_thumb.jpg", id)
	if err := s.uploader.Upload(ctx, key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
		s.logger.WithError(err).Warn("thumbnail could not be stored")
	}
}

func (s *Service) lookupCached(ctx context.Context, hash string) *engine.ClassificationVerdict {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, fmt.Sprintf(cache.VerdictKeyPattern, hash))
	if err != nil {
		if !cache.IsMiss(err) {
			s.logger.WithError(err).Warn("verdict cache read failure")
		}
		return nil
	}
	var v engine.ClassificationVerdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		s.logger.WithError(err).Warn("discarding unreadable cached verdict")
		return nil
	}
	return &v
}

func (s *Service) storeCached(ctx context.Context, hash string, v *engine.ClassificationVerdict) {
	if s.cache == nil || hash == "" {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		s.logger.WithError(err).Warn("failed to marshal verdict for cache")
		return
	}
	if err := s.cache.Set(ctx, fmt.Sprintf(cache.VerdictKeyPattern, hash), string(raw), common.VerdictCacheTTL); err != nil {
		s.logger.WithError(err).Warn("verdict cache write failure")
	}
}

// audit is best effort: a broken audit store must not block moderation.
func (s *Service) audit(ctx context.Context, result *Result, hash string, frameCount int) {
	if s.repo == nil {
		return
	}
	record := &verdict.Record{
		ID:                 result.ID,
		MediaType:          result.MediaType,
		MediaHash:          hash,
		Verdict:            string(result.Verdict.Verdict),
		RejectionReason:    result.Verdict.RejectionReason,
		AggregateRiskScore: result.Verdict.AggregateRiskScore,
		Categories:         verdict.CategoriesJSON(result.Verdict.Categories),
		FrameCount:         frameCount,
		StorageKey:         result.StorageKey,
	}

	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.repo.Save(saveCtx, record); err != nil {
		s.logger.WithError(err).WithField("verdict_id", result.ID).Error("failed to persist verdict audit record")
	}
}

func (s *Service) observe(mediaType string, v *engine.ClassificationVerdict) {
	prometheus.VerdictsTotal.WithLabelValues(mediaType, string(v.Verdict)).Inc()
	if v.Verdict == engine.VerdictRejected {
		prometheus.RejectionsTotal.WithLabelValues(v.RejectionReason).Inc()
	}
}
