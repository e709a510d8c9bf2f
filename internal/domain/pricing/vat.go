package pricing

import (
	"github.com/shopspring/decimal"
)

// French VAT rates in percent
var (
	VATRateZero         = decimal.Zero
	VATRateSuperReduced = decimal.RequireFromString("2.1")
	VATRateReduced      = decimal.RequireFromString("5.5")
	VATRateIntermediate = decimal.NewFromInt(10)
	VATRateStandard     = decimal.NewFromInt(20)
)

var allowedVATRates = []decimal.Decimal{
	VATRateZero,
	VATRateSuperReduced,
	VATRateReduced,
	VATRateIntermediate,
	VATRateStandard,
}

// IsAllowedVATRate reports whether rate is one of the French VAT rates
func IsAllowedVATRate(rate decimal.Decimal) bool {
	for _, r := range allowedVATRates {
		if r.Equal(rate) {
			return true
		}
	}
	return false
}

// Round2 rounds half away from zero to the cent
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

var hundred = decimal.NewFromInt(100)

// VATAmount returns the VAT for a base at the given rate, rounded to the cent
func VATAmount(base, rate decimal.Decimal) decimal.Decimal {
	return Round2(base.Mul(rate).Div(hundred))
}
