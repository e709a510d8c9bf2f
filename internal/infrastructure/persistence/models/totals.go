package models

import (
	"github.com/monartisan/backend/internal/domain/pricing"
	"github.com/shopspring/decimal"
)

// TotalsColumns embeds the computed amounts of a priced document
type TotalsColumns struct {
	TotalHT      decimal.Decimal       `gorm:"column:total_ht;type:decimal(18,2);not null;default:0"`
	TotalVAT     decimal.Decimal       `gorm:"column:total_vat;type:decimal(18,2);not null;default:0"`
	TotalTTC     decimal.Decimal       `gorm:"column:total_ttc;type:decimal(18,2);not null;default:0"`
	VATBreakdown pricing.VATBreakdowns `gorm:"column:vat_breakdown;type:jsonb"`
}

func totalsColumns(t pricing.Totals) TotalsColumns {
	return TotalsColumns{
		TotalHT:      t.TotalHT,
		TotalVAT:     t.TotalVAT,
		TotalTTC:     t.TotalTTC,
		VATBreakdown: t.Breakdown,
	}
}

func (c TotalsColumns) toDomain() pricing.Totals {
	return pricing.Totals{
		TotalHT:   c.TotalHT,
		TotalVAT:  c.TotalVAT,
		TotalTTC:  c.TotalTTC,
		Breakdown: c.VATBreakdown,
	}
}
