package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"

	"github.com/ClearVault/MediaGuard/pkg/infra/httpx"
	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

const (
	subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	OutputTypeFourSeverityLevels  = "FourSeverityLevels"
	OutputTypeEightSeverityLevels = "EightSeverityLevels"
)

var defaultCategories = []string{"Hate", "Violence", "SelfHarm", "Sexual"}

// Config for the Azure Content Safety image endpoint.
type Config struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	OutputType string `mapstructure:"output_type"`
}

type analyzeRequest struct {
	Image struct {
		Content string `json:"content"` // base64 encoded image
	} `json:"image"`
	Categories []string `json:"categories"`
	OutputType string   `json:"outputType"`
}

// AzureClient calls the Content Safety image analysis API and maps its
// categoriesAnalysis into moderation category scores. It implements
// moderation.Classifier; failure taxonomy (transport, non-2xx, unparseable
// body) collapses into plain errors — the gateway above decides fail-closed.
type AzureClient struct {
	client     httpx.Client
	config     Config
	logger     logrus.FieldLogger
	parserPool fastjson.ParserPool
}

func NewAzureClient(client httpx.Client, config Config, logger logrus.FieldLogger) *AzureClient {
	if config.OutputType == "" {
		config.OutputType = OutputTypeEightSeverityLevels
	}
	return &AzureClient{
		client: client,
		config: config,
		logger: logger,
	}
}

func (c *AzureClient) Analyze(ctx context.Context, image []byte) ([]moderation.CategoryScore, error) {
	req := analyzeRequest{
		Categories: defaultCategories,
		OutputType: c.config.OutputType,
	}
	req.Image.Content = base64.StdEncoding.EncodeToString(image)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create analyze request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(subscriptionKeyHeader, c.config.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read classifier response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
		}).Error("classifier returned non-success status")
		return nil, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	body, err = httpx.DecodeBody(resp.Header.Get("Content-Encoding"), body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode classifier response body: %w", err)
	}

	return c.parseAnalysis(body)
}

// parseAnalysis is strict on shape: a response without a usable
// categoriesAnalysis array is malformed and treated exactly like
// unavailability by the caller.
func (c *AzureClient) parseAnalysis(body []byte) ([]moderation.CategoryScore, error) {
	parser := c.parserPool.Get()
	defer c.parserPool.Put(parser)

	v, err := parser.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("malformed classifier response: %w", err)
	}

	analysis := v.GetArray("categoriesAnalysis")
	if analysis == nil {
		return nil, fmt.Errorf("malformed classifier response: no categoriesAnalysis")
	}

	categories := make([]moderation.CategoryScore, 0, len(analysis))
	for _, item := range analysis {
		name := item.GetStringBytes("category")
		if len(name) == 0 {
			return nil, fmt.Errorf("malformed classifier response: entry without category")
		}
		severity := item.GetFloat64("severity")
		categories = append(categories, moderation.CategoryScore{
			Category: moderation.Category(name),
			Severity: severity,
		})
	}
	return categories, nil
}
