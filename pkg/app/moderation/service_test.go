package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ClearVault/MediaGuard/mocks"
	"github.com/ClearVault/MediaGuard/pkg/cache"
	"github.com/ClearVault/MediaGuard/pkg/common"
	"github.com/ClearVault/MediaGuard/pkg/domain/verdict"
	"github.com/ClearVault/MediaGuard/pkg/media"
	engine "github.com/ClearVault/MediaGuard/pkg/moderation"
)

// fakeEngine scripts the decision engine and records invocations.
type fakeEngine struct {
	verdict    *engine.ClassificationVerdict
	err        error
	imageCalls int
	videoCalls int
}

func (f *fakeEngine) ClassifyImage(ctx context.Context, img []byte) (*engine.ClassificationVerdict, error) {
	f.imageCalls++
	return f.verdict, f.err
}

func (f *fakeEngine) ClassifyVideo(ctx context.Context, frames [][]byte) (*engine.ClassificationVerdict, error) {
	f.videoCalls++
	return f.verdict, f.err
}

func (f *fakeEngine) TestRules(categories []engine.CategoryScore) engine.TestRulesResult {
	return engine.TestRulesResult{Verdict: engine.VerdictAccepted, Categories: categories}
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for x := 0; x < 64; x++ {
		for y := 0; y < 64; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255}) //nolint:gosec
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func acceptedVerdict() *engine.ClassificationVerdict {
	return &engine.ClassificationVerdict{
		Verdict: engine.VerdictAccepted,
		Categories: []engine.CategoryScore{
			{Category: engine.CategorySexual, Severity: 1},
		},
		AggregateRiskScore: 1,
	}
}

func rejectedVerdict() *engine.ClassificationVerdict {
	return &engine.ClassificationVerdict{
		Verdict:            engine.VerdictRejected,
		RejectionReason:    engine.ReasonChildContent,
		AggregateRiskScore: 5,
	}
}

func TestService_ModerateImage_CacheHitSkipsClassifier(t *testing.T) {
	data := testPNG(t)
	hash, err := media.PerceptualHash(data)
	require.NoError(t, err)

	cached, err := json.Marshal(rejectedVerdict())
	require.NoError(t, err)

	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(fmt.Sprintf(cache.VerdictKeyPattern, hash)).SetVal(string(cached))

	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, cache.NewCacheWithClient(client), nil, nil, quietLogger())

	result, err := svc.ModerateImage(context.Background(), data)

	require.NoError(t, err)
	assert.True(t, result.Cached)
	assert.Equal(t, engine.VerdictRejected, result.Verdict.Verdict)
	assert.Equal(t, engine.ReasonChildContent, result.Verdict.RejectionReason)
	assert.Zero(t, eng.imageCalls, "a cache hit must not reach the engine")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_ModerateImage_CacheMissClassifiesAndStores(t *testing.T) {
	data := testPNG(t)
	hash, err := media.PerceptualHash(data)
	require.NoError(t, err)
	key := fmt.Sprintf(cache.VerdictKeyPattern, hash)

	verdictJSON, err := json.Marshal(acceptedVerdict())
	require.NoError(t, err)

	client, redisMock := redismock.NewClientMock()
	redisMock.ExpectGet(key).RedisNil()
	redisMock.ExpectSet(key, string(verdictJSON), common.VerdictCacheTTL).SetVal("OK")

	uploader := new(mocks.MockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	repo := new(mocks.MockVerdictRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, cache.NewCacheWithClient(client), repo, uploader, quietLogger())

	result, err := svc.ModerateImage(context.Background(), data)

	require.NoError(t, err)
	assert.False(t, result.Cached)
	assert.True(t, result.Stored)
	assert.Contains(t, result.StorageKey, result.ID.String())
	assert.Equal(t, 1, eng.imageCalls)
	// Accepted media and its thumbnail both land in storage.
	uploader.AssertNumberOfCalls(t, "Upload", 2)
	repo.AssertNumberOfCalls(t, "Save", 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_ModerateImage_RejectedIsNotStored(t *testing.T) {
	data := testPNG(t)

	uploader := new(mocks.MockUploader)
	repo := new(mocks.MockVerdictRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	eng := &fakeEngine{verdict: rejectedVerdict()}
	svc := NewService(eng, nil, repo, uploader, quietLogger())

	result, err := svc.ModerateImage(context.Background(), data)

	require.NoError(t, err)
	assert.False(t, result.Stored)
	assert.Empty(t, result.StorageKey)
	uploader.AssertNotCalled(t, "Upload")

	repo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(record *verdict.Record) bool {
		return record.Verdict == string(engine.VerdictRejected) &&
			record.RejectionReason == engine.ReasonChildContent
	}))
}

func TestService_ModerateImage_InvalidInput(t *testing.T) {
	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, nil, nil, nil, quietLogger())

	_, err := svc.ModerateImage(context.Background(), []byte("not an image"))

	assert.ErrorIs(t, err, media.ErrUnsupportedImage)
	assert.Zero(t, eng.imageCalls)
}

func TestService_ModerateVideo(t *testing.T) {
	frame := testPNG(t)

	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, nil, nil, nil, quietLogger())

	result, err := svc.ModerateVideo(context.Background(), [][]byte{frame, frame})

	require.NoError(t, err)
	assert.Equal(t, MediaTypeVideo, result.MediaType)
	assert.Equal(t, 1, eng.videoCalls)
}

func TestService_ModerateVideo_NoFrames(t *testing.T) {
	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, nil, nil, nil, quietLogger())

	_, err := svc.ModerateVideo(context.Background(), nil)

	assert.ErrorIs(t, err, engine.ErrNoFrames)
	assert.Zero(t, eng.videoCalls)
}

func TestService_ModerateVideo_InvalidFrame(t *testing.T) {
	eng := &fakeEngine{verdict: acceptedVerdict()}
	svc := NewService(eng, nil, nil, nil, quietLogger())

	_, err := svc.ModerateVideo(context.Background(), [][]byte{testPNG(t), []byte("junk")})

	assert.ErrorIs(t, err, media.ErrUnsupportedImage)
	assert.Zero(t, eng.videoCalls)
}
