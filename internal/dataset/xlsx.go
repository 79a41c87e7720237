package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xlsm")
}

// Records reads the selected sheet with raw (unformatted) cell values. The first
// row is the header.
func (xlsxLoader) Records(path string, opt Options) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, opt.SheetName, opt.SheetIndex)
	if err != nil {
		return nil, nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}
	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows drops trailing empty cells; FromRecords pads short rows.
		if len(row) > len(header) {
			extra := row[len(header):]
			if strings.TrimSpace(strings.Join(extra, "")) == "" {
				row = row[:len(header)]
			}
		}
		records = append(records, row)
	}
	return header, records, nil
}

func resolveSheet(f *excelize.File, name string, index int) (string, error) {
	sheets := f.GetSheetList()
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found; available sheets: %s", name, strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range; workbook has %d sheet(s)", index, len(sheets))
	}
	return sheets[index-1], nil
}
