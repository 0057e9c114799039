package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frogwalk/adapters/stats"
	"frogwalk/app"
	"frogwalk/domain/run"
	domainstats "frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/internal/testkit"
	"frogwalk/ports"
)

func buildInput(t *testing.T) Input {
	t.Helper()
	kit := testkit.NewTestKit(0)
	sim := app.NewSimulationService(kit.RNGAdapter(), nil, kit.Logger(), "v-report")

	cfg := run.Config{NumRuns: 10, BaseSeed: 0, StepsPerRun: 4, TargetStep: 4, Dimension: walk.OneDimensional}
	result, err := sim.RunMeasured(context.Background(), cfg)
	require.NoError(t, err)

	rep, err := app.NewAnalysisService(stats.NewTheoryAdapter(), nil, 0, 0).Analyze(result.Batch)
	require.NoError(t, err)

	m := ports.Measurement{Elapsed: 30 * time.Second, CurrentBytes: 1_000_000, PeakBytes: 2_000_000}
	return Input{Report: rep, Manifest: result.Manifest, Measurement: &m}
}

func TestMarkdown(t *testing.T) {
	in := buildInput(t)
	md := string(NewRenderer("").Markdown(in))

	assert.True(t, strings.HasPrefix(md, "# Happy frog walk\n"))
	assert.Contains(t, md, "Probability of being at the origin at step 4: 0.3000")
	assert.Contains(t, md, "- Runs at the origin: 3 of 10")
	assert.Contains(t, md, "- Exact probability: 0.3750")
	assert.Contains(t, md, "| 2 | 0.5000 | 0.5000 |")
	assert.Contains(t, md, "| -2 | 3 |")
	assert.Contains(t, md, "| 2 | 4 |")
	assert.Contains(t, md, "Mean squared displacement: 2.8000 (expected 4)")
	assert.Contains(t, md, "- Code version: v-report")
	assert.Contains(t, md, "- Elapsed: 30.0000 s (0.50 min)")
	assert.NotContains(t, md, "| y |")
}

func TestMarkdown_CapsFrequencies(t *testing.T) {
	in := buildInput(t)
	r := NewRenderer("Capped")
	r.MaxFrequencies = 2

	md := string(r.Markdown(in))
	// ties keep the lower position
	assert.Contains(t, md, "| -2 | 3 |")
	assert.NotContains(t, md, "| 0 | 3 |")
	assert.Contains(t, md, "| 2 | 4 |")
	assert.Contains(t, md, "2 of 3 distinct positions shown.")
}

func TestMostFrequent_KeepsPositionOrder(t *testing.T) {
	freqs := []domainstats.Frequency{
		{Position: walk.Position{X: -4}, Count: 5},
		{Position: walk.Position{X: -2}, Count: 1},
		{Position: walk.Position{X: 0}, Count: 7},
		{Position: walk.Position{X: 2}, Count: 2},
	}

	got := mostFrequent(freqs, 2)
	assert.Equal(t, []domainstats.Frequency{freqs[0], freqs[2]}, got)
}

func TestHTML(t *testing.T) {
	html := string(NewRenderer("").HTML(buildInput(t)))

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<code>")
}

func TestWriteFile(t *testing.T) {
	in := buildInput(t)
	dir := t.TempDir()
	r := NewRenderer("")

	require.NoError(t, r.WriteFile(filepath.Join(dir, "report.md"), in))
	require.NoError(t, r.WriteFile(filepath.Join(dir, "report.html"), in))
	assert.Error(t, r.WriteFile(filepath.Join(dir, "report.pdf"), in))

	md, err := os.ReadFile(filepath.Join(dir, "report.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Return to origin")

	html, err := os.ReadFile(filepath.Join(dir, "report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Return to origin</h2>")
}
