package classifier

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ClearVault/MediaGuard/pkg/infra/httpx/mocks"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

func testConfig() Config {
	return Config{
		Endpoint:   "https://contentsafety.example.com/contentsafety/image:analyze",
		APIKey:     "test-key",
		OutputType: OutputTypeEightSeverityLevels,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func httpResponse(status int, body []byte) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}

func TestAzureClient_Analyze(t *testing.T) {
	image := []byte("raw image bytes")

	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		if req.Method != http.MethodPost {
			return false
		}
		if req.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			return false
		}
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return false
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(body, &payload); err != nil {
			return false
		}
		img, ok := payload["image"].(map[string]interface{})
		if !ok {
			return false
		}
		return img["content"] == base64.StdEncoding.EncodeToString(image)
	})).Return(httpResponse(http.StatusOK, []byte(`{
		"categoriesAnalysis": [
			{"category": "Sexual", "severity": 2},
			{"category": "Violence", "severity": 4}
		]
	}`)), nil)

	azure := NewAzureClient(client, testConfig(), quietLogger())
	categories, err := azure.Analyze(context.Background(), image)

	require.NoError(t, err)
	assert.Equal(t, []moderation.CategoryScore{
		{Category: moderation.CategorySexual, Severity: 2},
		{Category: moderation.CategoryViolence, Severity: 4},
	}, categories)
}

func TestAzureClient_Analyze_GzipResponse(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`{"categoriesAnalysis":[{"category":"Hate","severity":1}]}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	resp := httpResponse(http.StatusOK, buf.Bytes())
	resp.Header.Set("Content-Encoding", "gzip")

	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(resp, nil)

	azure := NewAzureClient(client, testConfig(), quietLogger())
	categories, err := azure.Analyze(context.Background(), []byte("image"))

	require.NoError(t, err)
	assert.Equal(t, []moderation.CategoryScore{
		{Category: moderation.CategoryHate, Severity: 1},
	}, categories)
}

func TestAzureClient_Analyze_TransportFailure(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).Return(nil, errors.New("connection reset"))

	azure := NewAzureClient(client, testConfig(), quietLogger())
	categories, err := azure.Analyze(context.Background(), []byte("image"))

	assert.Nil(t, categories)
	assert.Error(t, err)
}

func TestAzureClient_Analyze_NonSuccessStatus(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	client.On("Do", mock.Anything).
		Return(httpResponse(http.StatusTooManyRequests, []byte(`{"error":"throttled"}`)), nil)

	azure := NewAzureClient(client, testConfig(), quietLogger())
	categories, err := azure.Analyze(context.Background(), []byte("image"))

	assert.Nil(t, categories)
	assert.Error(t, err)
}

func TestAzureClient_Analyze_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>gateway error</html>`},
		{name: "missing categoriesAnalysis", body: `{"ok":true}`},
		{name: "entry without category", body: `{"categoriesAnalysis":[{"severity":2}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mocks.MockHTTPClient)
			client.On("Do", mock.Anything).
				Return(httpResponse(http.StatusOK, []byte(tt.body)), nil)

			azure := NewAzureClient(client, testConfig(), quietLogger())
			categories, err := azure.Analyze(context.Background(), []byte("image"))

			assert.Nil(t, categories)
			assert.Error(t, err)
		})
	}
}
