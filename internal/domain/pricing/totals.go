package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// VATBreakdown is the VAT due for one rate
type VATBreakdown struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	VAT  decimal.Decimal `json:"vat"`
}

// Totals are the document amounts: HT, TVA per rate, TTC
type Totals struct {
	TotalHT   decimal.Decimal `json:"total_ht"`
	TotalVAT  decimal.Decimal `json:"total_vat"`
	TotalTTC  decimal.Decimal `json:"total_ttc"`
	Breakdown VATBreakdowns   `json:"vat_breakdown"`
}

// Compute sums the lines. VAT is computed once per rate bucket on the
// bucket's HT base, so TotalVAT always equals the sum of the breakdown.
func Compute(lines []LineItem) Totals {
	buckets := make(map[string]*VATBreakdown)
	totalHT := decimal.Zero
	for _, l := range lines {
		ht := l.TotalHT()
		totalHT = totalHT.Add(ht)
		key := l.VATRate.String()
		b, ok := buckets[key]
		if !ok {
			b = &VATBreakdown{Rate: l.VATRate, Base: decimal.Zero}
			buckets[key] = b
		}
		b.Base = b.Base.Add(ht)
	}

	breakdown := make(VATBreakdowns, 0, len(buckets))
	totalVAT := decimal.Zero
	for _, b := range buckets {
		b.VAT = VATAmount(b.Base, b.Rate)
		totalVAT = totalVAT.Add(b.VAT)
		breakdown = append(breakdown, *b)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Rate.LessThan(breakdown[j].Rate)
	})

	return Totals{
		TotalHT:   totalHT,
		TotalVAT:  totalVAT,
		TotalTTC:  totalHT.Add(totalVAT),
		Breakdown: breakdown,
	}
}

// VATBreakdowns is stored as JSONB
type VATBreakdowns []VATBreakdown

// Value implements driver.Valuer
func (v VATBreakdowns) Value() (driver.Value, error) {
	if v == nil {
		return "[]", nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner
func (v *VATBreakdowns) Scan(value any) error {
	if value == nil {
		*v = VATBreakdowns{}
		return nil
	}
	var bytes []byte
	switch val := value.(type) {
	case []byte:
		bytes = val
	case string:
		bytes = []byte(val)
	default:
		return fmt.Errorf("failed to scan VATBreakdowns: unexpected type %T", value)
	}
	return json.Unmarshal(bytes, v)
}
