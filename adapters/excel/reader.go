package excel

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"frogwalk/domain/walk"
)

// ReadFinalPositions loads the final positions sheet of a workbook written by the
// exporter. The dimension is taken from the header: a Y column means 2D.
func ReadFinalPositions(path string) ([]walk.Position, walk.Dimension, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, 0, fmt.Errorf("workbook not found: %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetFinals)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read %s: %w", SheetFinals, err)
	}
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("sheet %s has no positions", SheetFinals)
	}

	header := rows[0]
	if len(header) < 2 || header[1] != "X" {
		return nil, 0, fmt.Errorf("sheet %s has unexpected header %v", SheetFinals, header)
	}
	dim := walk.OneDimensional
	if len(header) >= 3 && header[2] == "Y" {
		dim = walk.TwoDimensional
	}

	positions := make([]walk.Position, 0, len(rows)-1)
	for i, row := range rows[1:] {
		p, err := parseRow(row, dim)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i+2, err)
		}
		positions = append(positions, p)
	}
	return positions, dim, nil
}

func parseRow(row []string, dim walk.Dimension) (walk.Position, error) {
	want := 2
	if dim == walk.TwoDimensional {
		want = 3
	}
	if len(row) < want {
		return walk.Position{}, fmt.Errorf("expected %d cells, got %d", want, len(row))
	}

	x, err := strconv.Atoi(strings.TrimSpace(row[1]))
	if err != nil {
		return walk.Position{}, fmt.Errorf("x: %w", err)
	}
	p := walk.Position{X: x}
	if dim == walk.TwoDimensional {
		if p.Y, err = strconv.Atoi(strings.TrimSpace(row[2])); err != nil {
			return walk.Position{}, fmt.Errorf("y: %w", err)
		}
	}
	return p, nil
}
