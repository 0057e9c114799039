package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"frogwalk/adapters/stats"
	"frogwalk/app"
	"frogwalk/internal/config"
	"frogwalk/internal/testkit"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	kit := testkit.NewTestKit(500)
	cfg := config.Default()
	cfg.Server.EnableLogger = false
	cfg.Server.MaxRuns = 1000
	cfg.Server.MaxSteps = 5000
	cfg.Server.MaxTotalSteps = 100000
	cfg.Server.CodeVersion = "v-test"
	cfg.Simulation.StepsPerRun = 100

	sim := app.NewSimulationService(kit.RNGAdapter(), nil, kit.Logger(), cfg.Server.CodeVersion)
	analysis := app.NewAnalysisService(stats.NewTheoryAdapter(), kit.Logger(), 0, 0)
	return NewServer(sim, analysis, stats.NewTheoryAdapter(), cfg.Simulation, cfg.Server, kit.Logger())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "v-test", gjson.Get(rec.Body.String(), "version").String())
}

func TestSimulate_ExplicitSeed(t *testing.T) {
	body := `{"num_runs": 10, "base_seed": 0, "steps_per_run": 4, "target_step": 4, "dimension": 1}`
	rec := do(t, newTestServer(t), http.MethodPost, "/api/simulations", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := rec.Body.String()
	assert.Equal(t, int64(3), gjson.Get(res, "probability.at_origin").Int())
	assert.Equal(t, 0.3, gjson.Get(res, "probability.probability").Float())
	assert.Equal(t, "Probability of being at the origin at step 4: 0.3000", gjson.Get(res, "summary").String())
	assert.InDelta(t, 0.375, gjson.Get(res, "theoretical").Float(), 1e-12)
	assert.Equal(t, int64(9), gjson.Get(res, "manifest.last_seed").Int())
	assert.False(t, gjson.Get(res, "heatmap").Exists())
	assert.Equal(t, int64(5), gjson.Get(res, "curve.#").Int())
}

func TestSimulate_DefaultsAndDerivedSeed(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/api/simulations", `{"num_runs": 5, "steps_per_run": 20}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	res := rec.Body.String()
	assert.Equal(t, int64(500), gjson.Get(res, "config.base_seed").Int())
	assert.Equal(t, int64(2), gjson.Get(res, "config.dimension").Int())
	assert.Equal(t, int64(4), gjson.Get(res, "config.target_step").Int())
	assert.True(t, gjson.Get(res, "heatmap.counts").IsArray())
}

func TestSimulate_EmptyBodyUsesDefaults(t *testing.T) {
	s := newTestServer(t)
	s.defaults.StepsPerRun = 50
	s.defaults.NumRuns = 3

	rec := do(t, s, http.MethodPost, "/api/simulations", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, int64(3), gjson.Get(rec.Body.String(), "probability.total").Int())
}

func TestSimulate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"target beyond steps", `{"steps_per_run": 4, "target_step": 6}`, "CONFIG_INVALID"},
		{"bad dimension", `{"dimension": 3, "steps_per_run": 4}`, "CONFIG_INVALID"},
		{"zero runs", `{"num_runs": 0}`, "CONFIG_INVALID"},
		{"over run limit", `{"num_runs": 5000}`, "INVALID_INPUT"},
		{"over step limit", `{"steps_per_run": 9999}`, "INVALID_INPUT"},
		{"over total step budget", `{"num_runs": 500, "steps_per_run": 5000}`, "INVALID_INPUT"},
		{"unknown field", `{"runs": 5}`, "INVALID_INPUT"},
		{"malformed", `{"num_runs":`, "INVALID_INPUT"},
	}

	s := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/simulations", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, gjson.Get(rec.Body.String(), "error.code").String())
		})
	}
}

func TestWalk(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/walks?seed=0&steps=6&dimension=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := rec.Body.String()
	assert.Equal(t, int64(7), gjson.Get(res, "points.#").Int())
	assert.Equal(t, int64(1), gjson.Get(res, "final.x").Int())
	assert.Equal(t, int64(1), gjson.Get(res, "final.y").Int())
	assert.Equal(t, `[2,4]`, gjson.Get(res, "returns_to_origin").Raw)

	rec = do(t, newTestServer(t), http.MethodGet, "/api/walks?steps=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, newTestServer(t), http.MethodGet, "/api/walks?dimension=4", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTheory(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/theory?dimension=2&step=4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.140625, gjson.Get(rec.Body.String(), "probability").Float(), 1e-12)

	rec = do(t, newTestServer(t), http.MethodGet, "/api/theory?step=-2", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDraws(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/api/draws?seed=1024&n=3&min=0&max=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	res := rec.Body.String()
	assert.Equal(t, int64(3), gjson.Get(res, "draws.#").Int())
	assert.InDelta(t, 2718377823.0/4294967296.0, gjson.Get(res, "draws.0.unit").Float(), 1e-12)
	assert.InDelta(t, 10*2718377823.0/4294967296.0, gjson.Get(res, "draws.0.scaled").Float(), 1e-9)

	rec = do(t, newTestServer(t), http.MethodGet, "/api/draws?n=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, newTestServer(t), http.MethodGet, "/api/draws?min=2&max=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClient_AgainstServer(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	client := NewClient(ts.URL+"/", 5*time.Second)
	ctx := context.Background()

	version, err := client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v-test", version)

	runs, seed, steps, target, dim := 20, uint64(100), 6, 6, 1
	summary, err := client.Simulate(ctx, SimulationRequest{
		NumRuns: &runs, BaseSeed: &seed, StepsPerRun: &steps, TargetStep: &target, Dimension: &dim,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, summary.AtOrigin)
	assert.Equal(t, 20, summary.Total)
	assert.Equal(t, 0.5, summary.Probability)
	assert.InDelta(t, 0.3125, summary.Theoretical, 1e-12)
	assert.Len(t, summary.Fingerprint, 64)

	bad := 0
	_, err = client.Simulate(ctx, SimulationRequest{NumRuns: &bad})
	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.Equal(t, http.StatusBadRequest, remote.Status)
	assert.Equal(t, "CONFIG_INVALID", remote.Code)
}
