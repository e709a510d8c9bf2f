package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// CellKind drives formatting of a column
type CellKind int

const (
	KindText CellKind = iota
	KindMoney
	KindDate
	KindInteger
)

// Column describes one exported column
type Column struct {
	Header string
	Kind   CellKind
	Width  float64
}

// Sheet is an in-memory export. Cell values may be string, int, int64,
// decimal.Decimal, time.Time or *time.Time.
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// AddRow appends a row
func (s *Sheet) AddRow(values ...any) {
	s.Rows = append(s.Rows, values)
}

// Write encodes a sheet in the requested format
func Write(w io.Writer, format dataexchange.Format, sheet *Sheet) error {
	switch format {
	case dataexchange.FormatCSV:
		return writeCSV(w, sheet)
	case dataexchange.FormatXLSX:
		return writeXLSX(w, sheet)
	}
	return fmt.Errorf("unsupported format %q", format)
}

// writeCSV writes a ';' separated file with BOM and decimal commas, which is
// what French Excel opens without an import wizard
func writeCSV(w io.Writer, sheet *Sheet) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	header := make([]string, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(sheet.Columns))
	for _, row := range sheet.Rows {
		for i := range sheet.Columns {
			record[i] = ""
			if i < len(row) {
				record[i] = csvValue(row[i])
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case decimal.Decimal:
		return strings.Replace(x.StringFixed(2), ".", ",", 1)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("02/01/2006")
	case *time.Time:
		if x == nil {
			return ""
		}
		return csvValue(*x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func writeXLSX(w io.Writer, sheet *Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheet.Name
	if name == "" {
		name = "Export"
	}
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return err
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return err
	}
	for i, c := range sheet.Columns {
		width := c.Width
		if width == 0 {
			width = 16
		}
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}

	header := make([]any, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = excelize.Cell{StyleID: styles.header, Value: c.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r, row := range sheet.Rows {
		cells := make([]any, len(sheet.Columns))
		for i, c := range sheet.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[i] = xlsxCell(v, c.Kind, styles)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

type sheetStyles struct {
	header int
	money  int
	date   int
}

func newStyles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"1F4E79"}, Pattern: 1},
	})
	if err != nil {
		return s, err
	}
	// #,##0.00
	s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return s, err
	}
	dateFmt := "dd/mm/yyyy"
	s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	return s, err
}

func xlsxCell(v any, kind CellKind, styles sheetStyles) any {
	switch x := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return excelize.Cell{StyleID: styles.money, Value: x.Round(2).InexactFloat64()}
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return excelize.Cell{StyleID: styles.date, Value: x}
	case *time.Time:
		if x == nil {
			return nil
		}
		return xlsxCell(*x, kind, styles)
	case int, int64, string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
