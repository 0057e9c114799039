package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"frogwalk/app"
	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/internal/profiling"
	"frogwalk/ports"
)

// DefaultMaxFrequencies caps the final-position table
const DefaultMaxFrequencies = 25

// Renderer turns a batch analysis into markdown and HTML
type Renderer struct {
	Title          string
	MaxFrequencies int
}

// NewRenderer creates a renderer with the default table sizes
func NewRenderer(title string) *Renderer {
	if title == "" {
		title = "Happy frog walk"
	}
	return &Renderer{Title: title, MaxFrequencies: DefaultMaxFrequencies}
}

// Input is everything a report shows. Manifest and Measurement are optional.
type Input struct {
	Report      *app.BatchReport
	Manifest    *run.Manifest
	Measurement *ports.Measurement
}

// Markdown renders the report as markdown
func (r *Renderer) Markdown(in Input) []byte {
	rep := in.Report
	cfg := rep.Config
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "Batch `%s`\n\n", rep.BatchID)

	b.WriteString("| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Dimension | %s |\n", cfg.Dimension)
	fmt.Fprintf(&b, "| Runs | %d |\n", cfg.NumRuns)
	fmt.Fprintf(&b, "| Steps per run | %d |\n", cfg.StepsPerRun)
	fmt.Fprintf(&b, "| Target step | %d |\n", cfg.TargetStep)
	fmt.Fprintf(&b, "| Seeds | %d to %d |\n\n", cfg.SeedFor(0), cfg.SeedFor(cfg.NumRuns-1))

	b.WriteString("## Return to origin\n\n")
	fmt.Fprintf(&b, "%s\n\n", rep.Probability)
	fmt.Fprintf(&b, "- Runs at the origin: %d of %d\n", rep.Probability.AtOrigin, rep.Probability.Total)
	fmt.Fprintf(&b, "- Exact probability: %.4f\n", rep.Theoretical)
	fmt.Fprintf(&b, "- %.0f%% interval: [%.4f, %.4f]\n\n", rep.Interval.Level*100, rep.Interval.Lower, rep.Interval.Upper)

	if len(rep.Curve) > 0 {
		b.WriteString("| Step | Empirical | Exact |\n|---:|---:|---:|\n")
		for _, p := range rep.Curve {
			fmt.Fprintf(&b, "| %d | %.4f | %.4f |\n", p.Step, p.Empirical, p.Theoretical)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Final positions\n\n")
	fmt.Fprintf(&b, "Mean squared displacement: %.4f (expected %d)\n\n", rep.MSD, cfg.StepsPerRun)
	b.WriteString("| Position | Runs |\n|---|---:|\n")
	shown := rep.Frequencies
	if r.MaxFrequencies > 0 && len(shown) > r.MaxFrequencies {
		shown = mostFrequent(shown, r.MaxFrequencies)
	}
	for _, f := range shown {
		fmt.Fprintf(&b, "| %s | %d |\n", f.Position.Format(cfg.Dimension), f.Count)
	}
	if len(shown) < len(rep.Frequencies) {
		fmt.Fprintf(&b, "\n%d of %d distinct positions shown.\n", len(shown), len(rep.Frequencies))
	}
	b.WriteString("\n")

	if d := rep.Displacement; d != nil {
		b.WriteString("## Displacement\n\n")
		b.WriteString("| Sample | Mean | Std dev | Min | Median | Max |\n|---|---:|---:|---:|---:|---:|\n")
		writeProfileRow(&b, "x", d.X)
		if d.Y != nil {
			writeProfileRow(&b, "y", *d.Y)
		}
		writeProfileRow(&b, "distance", d.Distance)
		b.WriteString("\n")
	}

	if m := in.Manifest; m != nil {
		b.WriteString("## Reproducibility\n\n")
		fmt.Fprintf(&b, "- Code version: %s\n", m.CodeVersion)
		fmt.Fprintf(&b, "- Fingerprint: `%s`\n", m.Fingerprint.Fingerprint.Short())
		b.WriteString("\n")
	}

	if m := in.Measurement; m != nil {
		b.WriteString("## Resources\n\n")
		for _, line := range strings.Split(profiling.Format(*m), "\n") {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	return b.Bytes()
}

// HTML renders the report as a standalone HTML fragment
func (r *Renderer) HTML(in Input) []byte {
	return ToHTML(r.Markdown(in))
}

// WriteFile writes markdown or HTML depending on the extension of path
func (r *Renderer) WriteFile(path string, in Input) error {
	var out []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		out = r.HTML(in)
	case ".md", ".markdown", "":
		out = r.Markdown(in)
	default:
		return fmt.Errorf("unsupported report extension: %s", filepath.Ext(path))
	}
	return os.WriteFile(path, out, 0o644)
}

// ToHTML converts markdown with tables to HTML
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse(md)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.Render(doc, renderer)
}

func writeProfileRow(b *bytes.Buffer, name string, p profiling.Profile) {
	s := p.Summary
	fmt.Fprintf(b, "| %s | %.4f | %.4f | %.4f | %.4f | %.4f |\n", name, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
}

// mostFrequent keeps the n most visited positions, still ordered by position
func mostFrequent(freqs []stats.Frequency, n int) []stats.Frequency {
	ranked := make([]int, len(freqs))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return freqs[ranked[a]].Count > freqs[ranked[b]].Count
	})

	keep := ranked[:n]
	sort.Ints(keep)
	out := make([]stats.Frequency, n)
	for i, idx := range keep {
		out[i] = freqs[idx]
	}
	return out
}
