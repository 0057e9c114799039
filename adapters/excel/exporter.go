package excel

import (
	"context"
	"fmt"
	"sync"

	"github.com/xuri/excelize/v2"

	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/internal"
	"frogwalk/ports"
)

// Sheet names written by the exporter
const (
	SheetSummary     = "Summary"
	SheetTrajectory  = "Trajectory"
	SheetFinals      = "Final Positions"
	SheetFrequencies = "Frequencies"
	SheetHeatmap     = "Heatmap"

	defaultSheet = "Sheet1"
)

// Exporter collects walk results into an xlsx workbook. It implements both
// visualization sinks; charts stand in for the plots.
type Exporter struct {
	path   string
	bins   int
	logger *internal.Logger

	mu   sync.Mutex
	file *excelize.File
}

var (
	_ ports.TrajectorySink   = (*Exporter)(nil)
	_ ports.DistributionSink = (*Exporter)(nil)
)

// NewExporter creates an exporter that will save to path. bins sets the heatmap grid.
func NewExporter(path string, bins int, logger *internal.Logger) *Exporter {
	if logger == nil {
		logger = internal.Discard()
	}
	return &Exporter{
		path:   path,
		bins:   bins,
		logger: logger.WithComponent("excel"),
		file:   excelize.NewFile(),
	}
}

// Path is where Save writes the workbook
func (e *Exporter) Path() string { return e.path }

// RenderTrajectory writes one row per iteration and charts the path
func (e *Exporter) RenderTrajectory(ctx context.Context, d walk.Dimension, points []walk.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	header := []interface{}{"Iteration", "X"}
	if d == walk.TwoDimensional {
		header = append(header, "Y")
	}
	rows := make([][]interface{}, len(points))
	for i, p := range points {
		row := []interface{}{p.Iteration, p.Position.X}
		if d == walk.TwoDimensional {
			row = append(row, p.Position.Y)
		}
		rows[i] = row
	}
	if err := e.writeTable(SheetTrajectory, header, rows); err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}

	last := len(points) + 1
	chart := &excelize.Chart{
		Type:  excelize.Line,
		Title: []excelize.RichTextRun{{Text: "Happy frog path"}},
		Series: []excelize.ChartSeries{{
			Name:       "Position",
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", SheetTrajectory, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", SheetTrajectory, last),
		}},
	}
	if d == walk.TwoDimensional {
		chart.Type = excelize.Scatter
		chart.Series[0].Categories = fmt.Sprintf("'%s'!$B$2:$B$%d", SheetTrajectory, last)
		chart.Series[0].Values = fmt.Sprintf("'%s'!$C$2:$C$%d", SheetTrajectory, last)
	}
	if err := e.file.AddChart(SheetTrajectory, "E2", chart); err != nil {
		return fmt.Errorf("trajectory chart: %w", err)
	}

	e.logger.Debug("wrote %d trajectory points", len(points))
	return nil
}

// RenderDistribution writes the final positions, their frequencies and, for 2D
// batches, the heatmap grid
func (e *Exporter) RenderDistribution(ctx context.Context, d walk.Dimension, finals []walk.Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	header := []interface{}{"Run", "X"}
	if d == walk.TwoDimensional {
		header = append(header, "Y")
	}
	rows := make([][]interface{}, len(finals))
	for i, p := range finals {
		row := []interface{}{i + 1, p.X}
		if d == walk.TwoDimensional {
			row = append(row, p.Y)
		}
		rows[i] = row
	}
	if err := e.writeTable(SheetFinals, header, rows); err != nil {
		return err
	}

	freqs := stats.Frequencies(finals)
	rows = make([][]interface{}, len(freqs))
	for i, f := range freqs {
		rows[i] = []interface{}{f.Position.Format(d), f.Count}
	}
	if err := e.writeTable(SheetFrequencies, []interface{}{"Position", "Count"}, rows); err != nil {
		return err
	}
	if len(freqs) > 0 {
		last := len(freqs) + 1
		chart := &excelize.Chart{
			Type:  excelize.Col,
			Title: []excelize.RichTextRun{{Text: "Final positions"}},
			Series: []excelize.ChartSeries{{
				Name:       "Frequency",
				Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", SheetFrequencies, last),
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", SheetFrequencies, last),
			}},
		}
		if err := e.file.AddChart(SheetFrequencies, "D2", chart); err != nil {
			return fmt.Errorf("frequency chart: %w", err)
		}
	}

	if d == walk.TwoDimensional && len(finals) > 0 {
		heatmap, err := stats.NewHeatmap(finals, e.bins)
		if err != nil {
			return fmt.Errorf("heatmap: %w", err)
		}
		if err := e.writeHeatmap(heatmap); err != nil {
			return err
		}
	}

	e.logger.Debug("wrote %d final positions in %d distinct cells", len(finals), len(freqs))
	return nil
}

// WriteSummary records the batch parameters, the probability line and the replay
// fingerprint
func (e *Exporter) WriteSummary(manifest *run.Manifest, probability stats.ProbabilityResult, theoretical float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := manifest.Config
	rows := [][]interface{}{
		{"Batch", manifest.BatchID.String()},
		{"Dimension", cfg.Dimension.String()},
		{"Runs", cfg.NumRuns},
		{"Steps per run", cfg.StepsPerRun},
		{"Target step", cfg.TargetStep},
		{"First seed", manifest.FirstSeed},
		{"Last seed", manifest.LastSeed},
		{"At origin", probability.AtOrigin},
		{"Empirical probability", probability.Probability},
		{"Exact probability", theoretical},
		{"Code version", manifest.CodeVersion},
		{"Fingerprint", manifest.Fingerprint.Fingerprint.String()},
	}
	return e.writeTable(SheetSummary, []interface{}{"Field", "Value"}, rows)
}

// Save writes the workbook to its path
func (e *Exporter) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sheets := e.file.GetSheetList()
	if len(sheets) > 1 {
		if idx, err := e.file.GetSheetIndex(defaultSheet); err == nil && idx != -1 {
			if err := e.file.DeleteSheet(defaultSheet); err != nil {
				return err
			}
		}
	}
	if idx, err := e.file.GetSheetIndex(SheetSummary); err == nil && idx != -1 {
		e.file.SetActiveSheet(idx)
	}

	if err := e.file.SaveAs(e.path); err != nil {
		return fmt.Errorf("save %s: %w", e.path, err)
	}
	e.logger.Info("workbook saved to %s", e.path)
	return nil
}

// Close releases the workbook
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.file.Close()
}

func (e *Exporter) writeHeatmap(h *stats.Heatmap) error {
	header := []interface{}{"X \\ Y"}
	for j := 0; j < h.Bins; j++ {
		header = append(header, fmt.Sprintf("%.2f", (h.YEdges[j]+h.YEdges[j+1])/2))
	}
	rows := make([][]interface{}, h.Bins)
	for i := 0; i < h.Bins; i++ {
		row := []interface{}{fmt.Sprintf("%.2f", (h.XEdges[i]+h.XEdges[i+1])/2)}
		for _, c := range h.Counts[i] {
			row = append(row, c)
		}
		rows[i] = row
	}
	return e.writeTable(SheetHeatmap, header, rows)
}

// writeTable replaces sheet with a header row followed by rows
func (e *Exporter) writeTable(sheet string, header []interface{}, rows [][]interface{}) error {
	if idx, err := e.file.GetSheetIndex(sheet); err == nil && idx != -1 {
		if err := e.file.DeleteSheet(sheet); err != nil {
			return err
		}
	}
	if _, err := e.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	for c, h := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := e.file.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := e.file.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
