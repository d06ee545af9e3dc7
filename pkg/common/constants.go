package common

import "time"

const (
	// VerdictCacheTTL bounds how long a cached verdict may short-circuit a
	// re-upload of identical media before it is re-moderated.
	VerdictCacheTTL = 12 * time.Hour

	RequestIDHeader = "X-Request-Id"
	RequestIDKey    = "request_id"
)

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}
