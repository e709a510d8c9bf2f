package spreadsheet

import (
	"fmt"
	"io"
	"strings"

	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// DefaultMaxRows bounds the data rows read from one file
const DefaultMaxRows = 5000

// Row is one data row keyed by column name
type Row struct {
	// LineNumber is the 1-indexed line in the file, the header being line 1
	LineNumber int
	Data       map[string]string
}

// Get returns the value of a column, empty when absent
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// GetOrDefault returns the value of a column or a default when empty
func (r *Row) GetOrDefault(column, defaultValue string) string {
	if v := r.Data[column]; v != "" {
		return v
	}
	return defaultValue
}

// IsEmpty returns true if every cell of the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Table is a parsed sheet: a header and its data rows
type Table struct {
	Headers []string
	Rows    []*Row
}

// HasColumn reports whether the header contains a column
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// HeaderMapper resolves user-written headers ("Prénom", "E-mail",
// "Code postal") to canonical column names. Matching ignores case, accents,
// underscores and dashes.
type HeaderMapper struct {
	aliases map[string]string
}

// NewHeaderMapper builds a mapper from canonical names to their aliases.
// The canonical name itself is always accepted.
func NewHeaderMapper(columns map[string][]string) *HeaderMapper {
	m := &HeaderMapper{aliases: make(map[string]string)}
	for canonical, aliases := range columns {
		m.aliases[foldHeader(canonical)] = canonical
		for _, a := range aliases {
			m.aliases[foldHeader(a)] = canonical
		}
	}
	return m
}

// Canonical returns the canonical column of a header
func (m *HeaderMapper) Canonical(header string) (string, bool) {
	if m == nil {
		return "", false
	}
	c, ok := m.aliases[foldHeader(header)]
	return c, ok
}

// Map resolves a header row. Unknown headers are kept in folded form.
func (m *HeaderMapper) Map(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		if c, ok := m.Canonical(h); ok {
			out[i] = c
			continue
		}
		out[i] = strings.ReplaceAll(foldHeader(h), " ", "_")
	}
	return out
}

func foldHeader(h string) string {
	h = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(h)
	return valueobject.SearchKey(h)
}

// Options configures reading a table
type Options struct {
	Mapper  *HeaderMapper
	MaxRows int
}

// Read parses a CSV or XLSX file into a table. Blank rows are skipped.
func Read(format dataexchange.Format, r io.Reader, opts Options) (*Table, error) {
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}

	var (
		table *Table
		err   error
	)
	switch format {
	case dataexchange.FormatCSV:
		table, err = readCSV(r, opts)
	case dataexchange.FormatXLSX:
		table, err = readXLSX(r, opts)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if len(table.Rows) == 0 {
		return nil, ErrNoDataRows
	}
	return table, nil
}

// record is a raw line of the file with its 1-indexed position
type record struct {
	line   int
	fields []string
}

// buildTable maps raw records (header first) onto rows
func buildTable(records []record, opts Options) (*Table, error) {
	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	raw := make([]string, len(records[0].fields))
	for i, h := range records[0].fields {
		raw[i] = trimSpaces(h)
	}
	headers := raw
	if opts.Mapper != nil {
		headers = opts.Mapper.Map(raw)
	}

	table := &Table{Headers: headers}
	for _, rec := range records[1:] {
		row := &Row{
			LineNumber: rec.line,
			Data:       make(map[string]string, len(headers)),
		}
		for j, h := range headers {
			if h == "" {
				continue
			}
			if j < len(rec.fields) {
				row.Data[h] = trimSpaces(rec.fields[j])
			} else {
				row.Data[h] = ""
			}
		}
		if row.IsEmpty() {
			continue
		}
		if len(table.Rows) >= opts.MaxRows {
			return nil, ErrTooManyRows
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
