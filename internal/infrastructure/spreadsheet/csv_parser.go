package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads CSV files as exported by spreadsheet software. French
// Excel writes ';' separated Windows-1252 files, so both the delimiter and
// the encoding are detected.
type CSVParser struct {
	delimiter rune
	trimSpace bool
	reader    *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter forces the field delimiter instead of detecting it
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithTrimSpace enables trimming of leading spaces from fields
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) {
		p.trimSpace = trim
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	parser := &CSVParser{trimSpace: true}
	for _, opt := range opts {
		opt(parser)
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyFile
	}

	if !utf8.Valid(content) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(content)
		if err != nil || !utf8.Valid(decoded) {
			return nil, ErrInvalidEncoding
		}
		content = decoded
	}

	if parser.delimiter == 0 {
		parser.delimiter = detectDelimiter(content)
	}

	parser.reader = csv.NewReader(bytes.NewReader(content))
	parser.reader.Comma = parser.delimiter
	parser.reader.LazyQuotes = true
	parser.reader.TrimLeadingSpace = parser.trimSpace
	parser.reader.FieldsPerRecord = -1

	return parser, nil
}

// detectDelimiter picks the most frequent of ';', ',' and tab on the
// header line, ignoring quoted text
func detectDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, c := range string(line) {
		switch c {
		case '"':
			inQuotes = !inQuotes
		case ';', ',', '\t':
			if !inQuotes {
				counts[c]++
			}
		}
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// Delimiter returns the delimiter in use
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// ReadRecord reads the next record. It returns io.EOF at the end of input.
func (p *CSVParser) ReadRecord() ([]string, error) {
	rec, err := p.reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rec, nil
}

// Line returns the line where the last record read started
func (p *CSVParser) Line() int {
	line, _ := p.reader.FieldPos(0)
	return line
}

// ReadAll reads every remaining record
func (p *CSVParser) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		rec, err := p.ReadRecord()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func readCSV(r io.Reader, opts Options) (*Table, error) {
	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	var records []record
	for {
		fields, err := parser.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record{line: parser.Line(), fields: fields})
	}
	return buildTable(records, opts)
}

// trimSpaces trims whitespace, including non-breaking spaces left by
// spreadsheet software
func trimSpaces(s string) string {
	start := 0
	end := len(s)

	for start < end {
		r, size := utf8.DecodeRuneInString(s[start:])
		if !isWhitespace(r) {
			break
		}
		start += size
	}

	for end > start {
		r, size := utf8.DecodeLastRuneInString(s[:end])
		if !isWhitespace(r) {
			break
		}
		end -= size
	}

	return s[start:end]
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f', '\u00a0', '\u202f':
		return true
	}
	return false
}
