package pricing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/monartisan/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one priced line of a quote, invoice or supplier order
type LineItem struct {
	Description     string          `json:"description"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit,omitempty"`
	UnitPriceHT     decimal.Decimal `json:"unit_price_ht"`
	VATRate         decimal.Decimal `json:"vat_rate"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// NewLineItem validates and builds a line item
func NewLineItem(description string, quantity, unitPriceHT, vatRate, discountPercent decimal.Decimal, unit string) (LineItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return LineItem{}, shared.NewDomainError("INVALID_LINE", "Line description cannot be empty")
	}
	if len(description) > 1000 {
		return LineItem{}, shared.NewDomainError("INVALID_LINE", "Line description cannot exceed 1000 characters")
	}
	if !quantity.IsPositive() {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPriceHT.IsNegative() {
		return LineItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !IsAllowedVATRate(vatRate) {
		return LineItem{}, shared.NewDomainError("INVALID_VAT_RATE", fmt.Sprintf("VAT rate %s%% is not allowed", vatRate.String()))
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return LineItem{}, shared.NewDomainError("INVALID_DISCOUNT", "Discount must be between 0 and 100")
	}
	return LineItem{
		Description:     description,
		Quantity:        quantity,
		Unit:            strings.TrimSpace(unit),
		UnitPriceHT:     unitPriceHT,
		VATRate:         vatRate,
		DiscountPercent: discountPercent,
	}, nil
}

// TotalHT returns quantity x unit price minus the line discount, rounded to the cent
func (l LineItem) TotalHT() decimal.Decimal {
	gross := l.Quantity.Mul(l.UnitPriceHT)
	if l.DiscountPercent.IsPositive() {
		gross = gross.Mul(hundred.Sub(l.DiscountPercent)).Div(hundred)
	}
	return Round2(gross)
}

// Lines is the JSONB-persisted list of line items
type Lines []LineItem

// Value implements driver.Valuer
func (l Lines) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *Lines) Scan(value any) error {
	if value == nil {
		*l = Lines{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Lines: unexpected type %T", value)
	}
	return json.Unmarshal(bytes, l)
}

// Validate re-checks every line, used when lines come from persistence or import
func (l Lines) Validate() error {
	if len(l) == 0 {
		return shared.NewDomainError("NO_LINES", "At least one line is required")
	}
	for i, item := range l {
		if _, err := NewLineItem(item.Description, item.Quantity, item.UnitPriceHT, item.VATRate, item.DiscountPercent, item.Unit); err != nil {
			return shared.NewDomainError("INVALID_LINE", fmt.Sprintf("line %d: %s", i+1, err.Error()))
		}
	}
	return nil
}

// LineInput is a line as submitted by a user. A missing VAT rate falls back
// to the artisan's default rate.
type LineInput struct {
	Description     string           `json:"description" binding:"required,max=1000"`
	Quantity        decimal.Decimal  `json:"quantity"`
	Unit            string           `json:"unit" binding:"max=20"`
	UnitPriceHT     decimal.Decimal  `json:"unit_price_ht"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
	DiscountPercent decimal.Decimal  `json:"discount_percent"`
}

// BuildLines validates inputs into line items
func BuildLines(inputs []LineInput, defaultVATRate decimal.Decimal) (Lines, error) {
	if len(inputs) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "At least one line is required")
	}
	lines := make(Lines, 0, len(inputs))
	for i, in := range inputs {
		rate := defaultVATRate
		if in.VATRate != nil {
			rate = *in.VATRate
		}
		item, err := NewLineItem(in.Description, in.Quantity, in.UnitPriceHT, rate, in.DiscountPercent, in.Unit)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				return nil, shared.NewDomainError(de.Code, fmt.Sprintf("line %d: %s", i+1, de.Message))
			}
			return nil, err
		}
		lines = append(lines, item)
	}
	return lines, nil
}
