package webapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/weekendly/planner/infra/initializer"
	"github.com/weekendly/planner/pkg/config"
)

// testApp wires the real dependency graph against unreachable upstreams so
// every connector serves its bundled dataset.
func testApp(t *testing.T) (*fiber.App, *initializer.Deps) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.App.CacheDir = t.TempDir()
	cfg.App.Offline = true
	cfg.Log.Level = "error"
	cfg.Server.JwtSecret = "test-secret"
	cfg.Server.AdminPasswordHash = string(hash)
	for name, cc := range cfg.Connectors {
		cc.BaseURL = "http://127.0.0.1:1"
		cc.Retries = 0
		cc.TimeoutSeconds = 1
		cfg.Connectors[name] = cc
	}

	deps, err := initializer.InitializeDependencies(cfg)
	require.NoError(t, err)
	return SetupApp(deps), deps
}

func doRequest(t *testing.T, app *fiber.App, method, target, body, token string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close() //nolint:errcheck
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodGet, "/healthz", "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestPlan_MissingBudgetIsBadRequest(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodGet, "/api/plan", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestPlan_NegativeBudgetIsBadRequest(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodGet, "/api/plan?budget=-10", "", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Planning failed", body["title"])
}

func TestPlan_ServesBundledDataOnDeadUpstreams(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodGet, "/api/plan?budget=50&date=2026-11-21&dining=true", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	itineraries := data["itineraries"].([]any)
	assert.NotEmpty(t, itineraries)
	assert.NotEmpty(t, data["dining"])

	first := itineraries[0].(map[string]any)
	assert.Contains(t, []any{"vendor_a", "vendor_b"}, first["provider"])
	assert.Greater(t, first["total"].(float64), 0.0)
	// Debug fields stay hidden without the flag.
	_, hasBreakdown := first["breakdown"]
	assert.False(t, hasBreakdown)
}

func TestPlan_DebugExposesBreakdownAndProvenance(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodGet, "/api/plan?budget=50&date=2026-11-21&debug=true", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["rates_provenance"])
	itineraries := data["itineraries"].([]any)
	require.NotEmpty(t, itineraries)
	first := itineraries[0].(map[string]any)
	require.Contains(t, first, "breakdown")
}

func TestMetricsEndpoint(t *testing.T) {
	app, _ := testApp(t)
	// One plan call records a latency sample first.
	resp := doRequest(t, app, fiber.MethodGet, "/api/plan?budget=50&date=2026-11-21", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck

	resp = doRequest(t, app, fiber.MethodGet, "/metrics", "", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close() //nolint:errcheck
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# TYPE")
}

func TestLogin_WrongPassword(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", `{"password":"nope"}`, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_EmptyBodyIsBadRequest(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", `{}`, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdmin_RequiresToken(t *testing.T) {
	app, _ := testApp(t)
	resp := doRequest(t, app, fiber.MethodDelete, "/api/admin/cache", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdmin_LoginThenClearCache(t *testing.T) {
	app, _ := testApp(t)

	resp := doRequest(t, app, fiber.MethodPost, "/api/auth/login", `{"password":"s3cret"}`, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	token := body["data"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	resp = doRequest(t, app, fiber.MethodDelete, "/api/admin/cache", "", token)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
