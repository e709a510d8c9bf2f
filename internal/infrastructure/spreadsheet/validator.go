package spreadsheet

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/monartisan/backend/internal/domain/shared/valueobject"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString FieldType = "string"
	TypeEmail  FieldType = "email"
	TypePhone  FieldType = "phone"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MaxLength  int
	OneOf      []string
	Unique     bool
	CustomFunc func(value string) error
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Email expects an email address
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// Phone expects a phone number parseable in the default region
func (b *FieldRuleBuilder) Phone() *FieldRuleBuilder {
	b.rule.Type = TypePhone
	return b
}

// MaxLength sets the maximum length in characters
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// OneOf restricts the value to a set, compared case-insensitively
func (b *FieldRuleBuilder) OneOf(values ...string) *FieldRuleBuilder {
	b.rule.OneOf = values
	return b
}

// Unique rejects a value already seen in an earlier row of the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom adds a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows according to rules. Rules are applied in
// declaration order so errors come out in column order.
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
	}
}

// ValidateRow returns the errors of one row, nil when it is valid
func (v *FieldValidator) ValidateRow(row *Row) []RowError {
	var errs []RowError

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				errs = append(errs, NewRowError(row.LineNumber, rule.Column, ErrCodeRequired,
					fmt.Sprintf("%s is required", rule.Column)))
			}
			continue
		}

		if err := validateType(value, rule.Type); err != nil {
			e := NewRowError(row.LineNumber, rule.Column, ErrCodeInvalidFormat, err.Error())
			e.Value = value
			errs = append(errs, e)
			continue
		}

		if rule.MaxLength > 0 && utf8.RuneCountInString(value) > rule.MaxLength {
			errs = append(errs, NewRowError(row.LineNumber, rule.Column, ErrCodeTooLong,
				fmt.Sprintf("%s cannot exceed %d characters", rule.Column, rule.MaxLength)))
			continue
		}

		if len(rule.OneOf) > 0 && !containsFold(rule.OneOf, value) {
			e := NewRowError(row.LineNumber, rule.Column, ErrCodeInvalidValue,
				fmt.Sprintf("%s must be one of %s", rule.Column, strings.Join(rule.OneOf, ", ")))
			e.Value = value
			errs = append(errs, e)
			continue
		}

		if rule.Unique {
			key := strings.ToLower(value)
			if v.uniqueCheck[rule.Column] == nil {
				v.uniqueCheck[rule.Column] = make(map[string]int)
			}
			if first, seen := v.uniqueCheck[rule.Column][key]; seen {
				e := NewRowError(row.LineNumber, rule.Column, ErrCodeDuplicateInFile,
					fmt.Sprintf("duplicate value (first seen in row %d)", first))
				e.Value = value
				errs = append(errs, e)
				continue
			}
			v.uniqueCheck[rule.Column][key] = row.LineNumber
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				errs = append(errs, NewRowError(row.LineNumber, rule.Column, ErrCodeInvalidValue, err.Error()))
			}
		}
	}

	return errs
}

func validateType(value string, fieldType FieldType) error {
	switch fieldType {
	case TypeEmail:
		_, err := valueobject.NormalizeEmail(value)
		return err
	case TypePhone:
		_, err := valueobject.NormalizePhone(value, valueobject.DefaultPhoneRegion)
		return err
	}
	return nil
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

// Reset clears the uniqueness state for reuse
func (v *FieldValidator) Reset() {
	v.uniqueCheck = make(map[string]map[string]int)
}
