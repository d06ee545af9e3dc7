package httpx

import "net/http"

//go:generate mockery --name=Client --dir=. --output=../../../mocks --filename=http_client_mock.go --case=underscore

// Client abstracts the outbound HTTP transport so collaborators can be
// exercised with a mock in tests.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
