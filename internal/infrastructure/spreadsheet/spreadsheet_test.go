package spreadsheet

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/monartisan/backend/internal/domain/dataexchange"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func clientMapper() *HeaderMapper {
	return NewHeaderMapper(map[string][]string{
		"last_name":   {"nom", "nom de famille"},
		"first_name":  {"prénom", "prenom"},
		"email":       {"e-mail", "courriel", "mail"},
		"postal_code": {"code postal", "cp"},
	})
}

func TestHeaderMapper(t *testing.T) {
	m := clientMapper()

	tests := []struct {
		header string
		want   string
	}{
		{"Nom", "last_name"},
		{"PRÉNOM", "first_name"},
		{" E-Mail ", "email"},
		{"Code Postal", "postal_code"},
		{"first_name", "first_name"},
		{"last-name", "last_name"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := m.Canonical(tt.header)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, []string{"last_name", "date_de_naissance"}, m.Map([]string{"Nom", "Date de naissance"}))
}

func TestNewCSVParser(t *testing.T) {
	t.Run("BOM is stripped", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("\xEF\xBB\xBFnom,email\nDurand,a@b.fr"))
		require.NoError(t, err)
		rec, err := p.ReadRecord()
		require.NoError(t, err)
		assert.Equal(t, "nom", rec[0])
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := NewCSVParser(strings.NewReader(" \n"))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("semicolon is detected", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("nom;ville;notes\nDurand;Lyon;\"a, b\""))
		require.NoError(t, err)
		assert.Equal(t, ';', p.Delimiter())
	})

	t.Run("quoted commas do not count", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("\"a,b,c\";d\n1;2"))
		require.NoError(t, err)
		assert.Equal(t, ';', p.Delimiter())
	})

	t.Run("forced delimiter", func(t *testing.T) {
		p, err := NewCSVParser(strings.NewReader("a;b,c"), WithDelimiter(','))
		require.NoError(t, err)
		assert.Equal(t, ',', p.Delimiter())
	})

	t.Run("windows-1252 is decoded", func(t *testing.T) {
		// "Prénom;Ville\nHélène;Orléans" in cp1252
		raw := []byte("Pr\xe9nom;Ville\nH\xe9l\xe8ne;Orl\xe9ans")
		p, err := NewCSVParser(bytes.NewReader(raw))
		require.NoError(t, err)
		records, err := p.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, []string{"Prénom", "Ville"}, records[0])
		assert.Equal(t, []string{"Hélène", "Orléans"}, records[1])
	})
}

func TestRead_CSV(t *testing.T) {
	csv := "Nom;Prénom;E-mail;Code postal\n" +
		"Durand;Julie;julie@example.fr;69002\n" +
		";;;\n" +
		"  Martin ;Paul\n"

	table, err := Read(dataexchange.FormatCSV, strings.NewReader(csv), Options{Mapper: clientMapper()})
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "first_name", "email", "postal_code"}, table.Headers)
	assert.True(t, table.HasColumn("email"))
	require.Len(t, table.Rows, 2)

	assert.Equal(t, 2, table.Rows[0].LineNumber)
	assert.Equal(t, "julie@example.fr", table.Rows[0].Get("email"))
	// blank line 3 is skipped but keeps numbering
	assert.Equal(t, 4, table.Rows[1].LineNumber)
	assert.Equal(t, "Martin", table.Rows[1].Get("last_name"))
	assert.Equal(t, "", table.Rows[1].Get("email"))
	assert.Equal(t, "FR", table.Rows[1].GetOrDefault("country", "FR"))
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(dataexchange.FormatCSV, strings.NewReader("nom,email\n"), Options{})
	assert.ErrorIs(t, err, ErrNoDataRows)

	_, err = Read(dataexchange.FormatCSV, strings.NewReader("nom\na\nb\nc\n"), Options{MaxRows: 2})
	assert.ErrorIs(t, err, ErrTooManyRows)

	_, err = Read(dataexchange.FormatXLSX, strings.NewReader("not a zip"), Options{})
	assert.Error(t, err)
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Nom", "Prénom", "Courriel"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Durand", "Julie", "julie@example.fr"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]any{"Lefèvre", "", "h.lefevre@example.fr"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := Read(dataexchange.FormatXLSX, buf, Options{Mapper: clientMapper()})
	require.NoError(t, err)

	assert.Equal(t, []string{"last_name", "first_name", "email"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Lefèvre", table.Rows[1].Get("last_name"))
	assert.Equal(t, "h.lefevre@example.fr", table.Rows[1].Get("email"))
}

func TestFieldValidator(t *testing.T) {
	v := NewFieldValidator([]FieldRule{
		Field("last_name").Required().MaxLength(10).Build(),
		Field("type").OneOf("INDIVIDUAL", "COMPANY").Build(),
		Field("email").Email().Unique().Build(),
		Field("phone").Phone().Build(),
	})

	row := func(line int, data map[string]string) *Row { return &Row{LineNumber: line, Data: data} }

	assert.Empty(t, v.ValidateRow(row(2, map[string]string{
		"last_name": "Durand", "type": "individual", "email": "julie@example.fr", "phone": "06 12 34 56 78",
	})))

	errs := v.ValidateRow(row(3, map[string]string{
		"last_name": "", "type": "OTHER", "email": "JULIE@example.fr", "phone": "12",
	}))
	require.Len(t, errs, 4)
	assert.Equal(t, ErrCodeRequired, errs[0].Code)
	assert.Equal(t, ErrCodeInvalidValue, errs[1].Code)
	assert.Equal(t, ErrCodeDuplicateInFile, errs[2].Code)
	assert.Contains(t, errs[2].Message, "row 2")
	assert.Equal(t, ErrCodeInvalidFormat, errs[3].Code)
	assert.Equal(t, 3, errs[3].Row)

	errs = v.ValidateRow(row(4, map[string]string{"last_name": "Beaumarchais-Lefèvre", "email": "bad"}))
	require.Len(t, errs, 2)
	assert.Equal(t, ErrCodeTooLong, errs[0].Code)
	assert.Equal(t, "row 4, column 'email': invalid email format", errs[1].Error())
}

func TestErrorCollection(t *testing.T) {
	ec := NewErrorCollection(2)
	assert.False(t, ec.HasErrors())
	ec.Add(NewRowError(2, "a", ErrCodeRequired, "x"), NewRowError(3, "a", ErrCodeRequired, "x"))
	ec.Add(NewRowError(4, "", ErrCodeInvalidValue, "y"))

	assert.Len(t, ec.Errors(), 2)
	assert.Equal(t, 3, ec.TotalCount())
	assert.True(t, ec.IsTruncated())
	assert.Equal(t, "row 4: y", NewRowError(4, "", ErrCodeInvalidValue, "y").Error())
}

func TestWrite_CSV(t *testing.T) {
	issued := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	sheet := &Sheet{
		Columns: []Column{{Header: "Numéro"}, {Header: "Date", Kind: KindDate}, {Header: "TTC", Kind: KindMoney}, {Header: "Payé le", Kind: KindDate}},
	}
	sheet.AddRow("FAC-2026-00001", issued, decimal.RequireFromString("1234.5"), (*time.Time)(nil))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dataexchange.FormatCSV, sheet))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
	assert.Contains(t, out, "Numéro;Date;TTC;Payé le\n")
	assert.Contains(t, out, "FAC-2026-00001;07/03/2026;1234,50;\n")
}

func TestWrite_XLSX(t *testing.T) {
	sheet := &Sheet{
		Name:    "Factures",
		Columns: []Column{{Header: "Numéro"}, {Header: "TTC", Kind: KindMoney}, {Header: "Lignes", Kind: KindInteger}},
	}
	sheet.AddRow("FAC-2026-00001", decimal.RequireFromString("99.9"), 3)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, dataexchange.FormatXLSX, sheet))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Factures"}, f.GetSheetList())
	v, err := f.GetCellValue("Factures", "A2")
	require.NoError(t, err)
	assert.Equal(t, "FAC-2026-00001", v)
	raw, err := f.GetCellValue("Factures", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "99.9", raw)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, dataexchange.Format("PDF"), &Sheet{}))
}
