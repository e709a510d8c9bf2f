package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	documentapp "github.com/monartisan/backend/internal/application/document"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// nbsp keeps amounts and their unit on the same line
const nbsp = "\u00a0"

var kindTemplates = map[documentapp.Kind]string{
	documentapp.KindQuote:         "templates/quote.gohtml",
	documentapp.KindInvoice:       "templates/invoice.gohtml",
	documentapp.KindSupplierOrder: "templates/supplier_order.gohtml",
}

// TemplateEngine renders document views with the embedded layouts.
// Templates are parsed once at construction.
type TemplateEngine struct {
	funcMap   template.FuncMap
	templates map[documentapp.Kind]*template.Template
}

var _ documentapp.HTMLTemplater = (*TemplateEngine)(nil)

// NewTemplateEngine parses the layout of every document kind
func NewTemplateEngine() (*TemplateEngine, error) {
	e := &TemplateEngine{
		funcMap: template.FuncMap{
			"money":    formatMoney,
			"number":   formatNumber,
			"percent":  formatPercent,
			"date":     formatDate,
			"dateOpt":  formatDateOpt,
			"title":    titleCase,
			"upper":    strings.ToUpper,
			"join":     strings.Join,
			"nonZero":  nonZero,
			"multiVAT": func(v *documentapp.View) bool { return len(v.Totals.Breakdown) > 1 },
		},
		templates: make(map[documentapp.Kind]*template.Template, len(kindTemplates)),
	}

	for kind, file := range kindTemplates {
		tmpl, err := template.New("layout.gohtml").Funcs(e.funcMap).ParseFS(templateFS, "templates/layout.gohtml", file)
		if err != nil {
			return nil, NewRenderError(ErrCodeInvalidHTML, fmt.Sprintf("failed to parse %s template", kind), err)
		}
		e.templates[kind] = tmpl
	}
	return e, nil
}

// RenderHTML renders the complete HTML page of a document
func (e *TemplateEngine) RenderHTML(kind documentapp.Kind, view *documentapp.View) (string, error) {
	tmpl, ok := e.templates[kind]
	if !ok {
		return "", NewRenderError(ErrCodeUnknownTemplate, fmt.Sprintf("no template for %q", kind), nil)
	}
	if view == nil {
		return "", NewRenderError(ErrCodeInvalidHTML, "document view is nil", nil)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// =============================================================================
// Template functions
// =============================================================================

// formatMoney formats an amount the French way
// Example: 1234.5 -> "1 234,50 €"
func formatMoney(d decimal.Decimal) string {
	return groupThousands(d.Round(2).StringFixed(2)) + nbsp + "€"
}

// formatNumber prints a quantity without trailing zeros
// Example: 2.500 -> "2,5"
func formatNumber(d decimal.Decimal) string {
	return groupThousands(d.Round(3).String())
}

// formatPercent prints a rate such as 5.5 -> "5,5 %"
func formatPercent(d decimal.Decimal) string {
	return formatNumber(d) + nbsp + "%"
}

// groupThousands turns "-1234567.89" into "-1 234 567,89"
func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(nbsp)
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteString(",")
		b.WriteString(fracPart)
	}
	return sign + b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDateOpt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// a Caser keeps state, so one is built per call
func titleCase(s string) string {
	return cases.Title(language.French).String(s)
}

func nonZero(d decimal.Decimal) bool {
	return !d.IsZero()
}
