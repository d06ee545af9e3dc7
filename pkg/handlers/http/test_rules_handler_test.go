package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClearVault/MediaGuard/pkg/moderation"
)

func postRules(t *testing.T, app *fiber.App, payload string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/moderation/rules/test", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestTestRulesHandler(t *testing.T) {
	h := NewTestRulesHandler(testLogger(), testService(nil))

	app := fiber.New()
	app.Post("/api/v1/moderation/rules/test", h.Handle)

	resp := postRules(t, app, `{"categories":[{"category":"Child","severity":2}]}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result moderation.TestRulesResult
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, moderation.VerdictRejected, result.Verdict)
	assert.Equal(t, moderation.ReasonChildContent, result.RejectionReason)
}

func TestTestRulesHandler_InvalidPayload(t *testing.T) {
	h := NewTestRulesHandler(testLogger(), testService(nil))

	app := fiber.New()
	app.Post("/api/v1/moderation/rules/test", h.Handle)

	assert.Equal(t, fiber.StatusBadRequest, postRules(t, app, `{broken`).StatusCode)
	assert.Equal(t, fiber.StatusBadRequest, postRules(t, app, `{"categories":[]}`).StatusCode)
}
