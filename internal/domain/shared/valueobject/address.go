package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// DefaultCountry is the ISO 3166 code used when none is given
const DefaultCountry = "FR"

var frPostalCode = regexp.MustCompile(`^\d{5}$`)

// Address is a postal address (client site, artisan headquarters, supplier).
// Stored as JSONB.
type Address struct {
	Street     string `json:"street"`
	Complement string `json:"complement,omitempty"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// NewAddress validates and normalizes an address. French addresses require a
// five digit postal code.
func NewAddress(street, complement, postalCode, city, country string) (Address, error) {
	a := Address{
		Street:     strings.TrimSpace(street),
		Complement: strings.TrimSpace(complement),
		PostalCode: strings.ReplaceAll(strings.TrimSpace(postalCode), " ", ""),
		City:       strings.TrimSpace(city),
		Country:    strings.ToUpper(strings.TrimSpace(country)),
	}
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	if a.IsEmpty() {
		return a, nil
	}
	if a.Street == "" {
		return Address{}, fmt.Errorf("street is required")
	}
	if a.City == "" {
		return Address{}, fmt.Errorf("city is required")
	}
	if len(a.Street) > 200 || len(a.City) > 100 || len(a.Complement) > 200 {
		return Address{}, fmt.Errorf("address field too long")
	}
	if len(a.Country) != 2 {
		return Address{}, fmt.Errorf("country must be a 2-letter ISO code")
	}
	if a.Country == DefaultCountry && !frPostalCode.MatchString(a.PostalCode) {
		return Address{}, fmt.Errorf("invalid postal code: %s", a.PostalCode)
	}
	return a, nil
}

// IsEmpty returns true when no line of the address is set
func (a Address) IsEmpty() bool {
	return a.Street == "" && a.PostalCode == "" && a.City == ""
}

// Lines returns the address formatted for a document header
func (a Address) Lines() []string {
	if a.IsEmpty() {
		return nil
	}
	lines := []string{a.Street}
	if a.Complement != "" {
		lines = append(lines, a.Complement)
	}
	lines = append(lines, strings.TrimSpace(a.PostalCode+" "+a.City))
	if a.Country != "" && a.Country != DefaultCountry {
		lines = append(lines, a.Country)
	}
	return lines
}

// String returns the address on one line
func (a Address) String() string {
	return strings.Join(a.Lines(), ", ")
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("failed to scan Address: unexpected type %T", value)
	}
	return json.Unmarshal(bytes, a)
}
