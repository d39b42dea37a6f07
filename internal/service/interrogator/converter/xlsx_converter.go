package converter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"thecrew/internal/domain/services"
)

// maxSheetRows caps how much of a sheet reaches the model
const maxSheetRows = 500

// xlsxConverter renders every sheet as a markdown section of tab-separated rows.
type xlsxConverter struct{}

func NewXLSXConverter() services.ContentConverter {
	return &xlsxConverter{}
}

func (c *xlsxConverter) Convert(ctx context.Context, input []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(input))
	if err != nil {
		return "", fmt.Errorf("failed to open spreadsheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		fmt.Fprintf(&b, "## %s\n\n", sheet)
		for i, row := range rows {
			if i == maxSheetRows {
				fmt.Fprintf(&b, "... %d more rows\n", len(rows)-maxSheetRows)
				break
			}
			if isBlankRow(row) {
				continue
			}
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (c *xlsxConverter) SupportedExtensions() []string {
	return []string{".xlsx"}
}

func (c *xlsxConverter) Name() string {
	return "spreadsheet"
}
