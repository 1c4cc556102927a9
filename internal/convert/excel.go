package convert

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/alnah/go-mdrefine/internal/table"
)

// ExcelConverter renders each worksheet of a workbook as a Markdown
// section: an H2 heading named after the sheet followed by a pipe
// table, with a horizontal rule between sheets. Sheets that clean
// down to nothing are skipped.
type ExcelConverter struct{}

// NewExcelConverter returns a converter for xlsx and xlsm workbooks.
// Legacy .xls files use LegacyExcelConverter; the OOXML reader cannot
// open their OLE2 container.
func NewExcelConverter() *ExcelConverter {
	return &ExcelConverter{}
}

var _ Converter = (*ExcelConverter)(nil)

// Convert reads the workbook at path and returns its Markdown
// rendering. It returns ErrNoContent when every sheet is empty after
// cleaning.
func (c *ExcelConverter) Convert(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		md := table.Render(table.Clean(rows))
		if md == "" {
			continue
		}
		sections = append(sections, "## "+sheet+"\n\n"+md)
	}

	if len(sections) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoContent, path)
	}
	return strings.Join(sections, "\n\n---\n\n") + "\n", nil
}
