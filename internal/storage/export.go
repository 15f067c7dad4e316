package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const quoteSheet = "Quote"

// ExportQuoteToExcel writes one quote with its pricing trace to dir and
// returns the file path.
func ExportQuoteToExcel(dir string, q Quote) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", quoteSheet); err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}

	optional := func(v any) any {
		switch p := v.(type) {
		case *float64:
			if p != nil {
				return *p
			}
		case *int64:
			if p != nil {
				return *p
			}
		case *string:
			if p != nil {
				return *p
			}
		}
		return "-"
	}

	rows := [][2]any{
		{"Quote ID", q.ID.String()},
		{"Created At", q.CreatedAt.Format("2006-01-02 15:04")},
		{"Product ID", q.ProductID},
		{"Quantity", q.Quantity},
		{"Width (mm)", optional(q.WidthMM)},
		{"Height (mm)", optional(q.HeightMM)},
		{"Material ID", optional(q.MaterialID)},
		{"Lamination", q.Lamination},
		{"Print Type", optional(q.PrintType)},
		{"Pricing Tier", q.Tier},
		{"Unit Price", q.UnitPrice.StringFixed(4)},
		{"Total Price", q.TotalPrice.StringFixed(2)},
	}
	for i, row := range rows {
		if err := f.SetCellValue(quoteSheet, fmt.Sprintf("A%d", i+1), row[0]); err != nil {
			return "", fmt.Errorf("failed to write cell: %w", err)
		}
		if err := f.SetCellValue(quoteSheet, fmt.Sprintf("B%d", i+1), row[1]); err != nil {
			return "", fmt.Errorf("failed to write cell: %w", err)
		}
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create style: %w", err)
	}
	if err := f.SetCellStyle(quoteSheet, "A1", fmt.Sprintf("A%d", len(rows)), style); err != nil {
		return "", fmt.Errorf("failed to style header: %w", err)
	}

	next := len(rows) + 2
	if err := writeBlock(f, next, "Applied Rules", q.AppliedRules, style); err != nil {
		return "", err
	}

	if len(q.Warnings) > 0 {
		next += max(len(q.AppliedRules), 1) + 1
		if err := writeBlock(f, next, "Warnings", q.Warnings, style); err != nil {
			return "", err
		}
	}

	if err := f.SetColWidth(quoteSheet, "A", "A", 18); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(quoteSheet, "B", "B", 70); err != nil {
		return "", fmt.Errorf("failed to set column width: %w", err)
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("quote_%s_%s.xlsx",
		q.CreatedAt.Format("20060102_1504"), q.ID.String()[:8]))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}

	return path, nil
}

// writeBlock writes a bold title in column A and one line per row in column B.
func writeBlock(f *excelize.File, row int, title string, lines []string, style int) error {
	titleCell := fmt.Sprintf("A%d", row)
	if err := f.SetCellValue(quoteSheet, titleCell, title); err != nil {
		return fmt.Errorf("failed to write %s title: %w", title, err)
	}
	if err := f.SetCellStyle(quoteSheet, titleCell, titleCell, style); err != nil {
		return fmt.Errorf("failed to style %s title: %w", title, err)
	}
	for i, line := range lines {
		if err := f.SetCellValue(quoteSheet, fmt.Sprintf("B%d", row+i), line); err != nil {
			return fmt.Errorf("failed to write %s line: %w", title, err)
		}
	}
	return nil
}
