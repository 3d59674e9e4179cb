package phone

import (
	"errors"
	"strings"
)

var ErrEmptyNumber = errors.New("phone number is empty")

// Normalizer turns user-entered numbers into E.164 form for one home country.
type Normalizer struct {
	CountryCode string
	LocalLength int
}

func NewNormalizer(countryCode string, localLength int) Normalizer {
	return Normalizer{
		CountryCode: strings.TrimPrefix(countryCode, "+"),
		LocalLength: localLength,
	}
}

// Normalize strips everything but digits and leading zeros (trunk or "00"
// international prefixes). Local numbers get the country code prepended;
// anything else is treated as already international. The result always starts
// with "+", and normalizing a normalized number returns it unchanged.
func (n Normalizer) Normalize(raw string) (string, error) {
	digits := digitsOnly(raw)
	if digits == "" {
		return "", ErrEmptyNumber
	}

	local := strings.TrimLeft(digits, "0")
	if local == "" {
		return "", ErrEmptyNumber
	}
	if n.LocalLength > 0 && len(local) == n.LocalLength {
		return "+" + n.CountryCode + local, nil
	}
	return "+" + local, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
