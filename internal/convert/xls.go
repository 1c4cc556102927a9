package convert

import (
	"fmt"
	"os"
	"strings"

	"github.com/extrame/xls"

	"github.com/alnah/go-mdrefine/internal/table"
)

// LegacyExcelConverter reads pre-2007 BIFF workbooks (.xls), which are
// OLE2 compound files rather than the zip-based OOXML that xlsx/xlsm
// use. The Markdown layout matches ExcelConverter: an H2 heading per
// sheet, a pipe table, horizontal rules between sheets.
type LegacyExcelConverter struct{}

// NewLegacyExcelConverter returns a converter for .xls workbooks.
func NewLegacyExcelConverter() *LegacyExcelConverter {
	return &LegacyExcelConverter{}
}

var _ Converter = (*LegacyExcelConverter)(nil)

// Convert reads the BIFF workbook at path and returns its Markdown
// rendering. It returns ErrNoContent when every sheet is empty after
// cleaning.
func (c *LegacyExcelConverter) Convert(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	wb, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}

	var sections []string
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}
		md := table.Render(table.Clean(legacySheetRows(sheet)))
		if md == "" {
			continue
		}
		sections = append(sections, "## "+sheet.Name+"\n\n"+md)
	}

	if len(sections) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoContent, path)
	}
	return strings.Join(sections, "\n\n---\n\n") + "\n", nil
}

// legacySheetRows materializes a worksheet as a cell grid. BIFF rows
// are sparse; missing rows become nil and missing cells empty strings,
// both of which the table cleaner drops.
func legacySheetRows(sheet *xls.WorkSheet) [][]string {
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := range cells {
			cells[j] = row.Col(j)
		}
		rows = append(rows, cells)
	}
	return rows
}
