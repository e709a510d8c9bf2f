package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads the first worksheet of a workbook
func readXLSX(r io.Reader, opts Options) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}
	defer func() { _ = rows.Close() }()

	var records []record
	line := 0
	for rows.Next() {
		line++
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("unable to read row %d: %w", line, err)
		}
		// blank leading rows are not the header
		if len(records) == 0 && isBlankRecord(cols) {
			continue
		}
		records = append(records, record{line: line, fields: cols})
		// header plus one row over the limit is enough to fail
		if len(records) > opts.MaxRows+1 {
			break
		}
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}
	return buildTable(records, opts)
}

func isBlankRecord(cols []string) bool {
	for _, c := range cols {
		if trimSpaces(c) != "" {
			return false
		}
	}
	return true
}
