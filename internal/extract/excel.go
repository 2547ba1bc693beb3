package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelBackend reads the first non-empty worksheet of an .xlsx workbook as rows.
type ExcelBackend struct{}

func (ExcelBackend) Name() string     { return "excelize" }
func (ExcelBackend) Requires() string { return "excelize" }
func (ExcelBackend) Available() error { return nil }

func (ExcelBackend) Extract(_ context.Context, path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		rows = trimRows(rows)
		if len(rows) == 0 {
			continue
		}
		return &Result{Text: rowsText(rows), Rows: rows}, nil
	}
	return &Result{}, nil
}

// trimRows drops rows whose cells are all blank and trims each cell.
func trimRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		blank := true
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out
}

// rowsText renders rows as tab-separated lines.
func rowsText(rows [][]string) string {
	var buf strings.Builder
	for _, row := range rows {
		buf.WriteString(strings.Join(row, "\t"))
		buf.WriteByte('\n')
	}
	return strings.TrimSpace(buf.String())
}
