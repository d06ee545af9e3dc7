package storage

import (
	"context"
	"io"
)

//go:generate mockery --name=Uploader --dir=. --output=../../../mocks --filename=uploader_mock.go --case=underscore

// Uploader persists accepted media. Implementations must go through the
// storage circuit breaker so a degraded backend cannot drag moderation
// latency down with it.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
}
