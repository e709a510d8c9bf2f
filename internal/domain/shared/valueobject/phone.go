package valueobject

import (
	"fmt"
	"strings"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used to parse numbers written without a country prefix
const DefaultPhoneRegion = "FR"

// NormalizePhone parses a phone number and returns it in E.164 form.
// An empty input yields an empty result.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if region == "" {
		region = DefaultPhoneRegion
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// IsMobilePhone reports whether an E.164 number can receive SMS
func IsMobilePhone(e164 string) bool {
	num, err := libphonenumber.Parse(e164, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	switch libphonenumber.GetNumberType(num) {
	case libphonenumber.MOBILE, libphonenumber.FIXED_LINE_OR_MOBILE:
		return true
	}
	return false
}

// FormatPhoneNational renders an E.164 number for display on documents
func FormatPhoneNational(e164 string) string {
	num, err := libphonenumber.Parse(e164, DefaultPhoneRegion)
	if err != nil {
		return e164
	}
	if libphonenumber.GetRegionCodeForNumber(num) == DefaultPhoneRegion {
		return libphonenumber.Format(num, libphonenumber.NATIONAL)
	}
	return libphonenumber.Format(num, libphonenumber.INTERNATIONAL)
}
