package domain

import (
	"errors"
	"strings"
)

const postalCodeDigits = 8

var (
	ErrInvalidPostalCode = errors.New("postal code must have 8 digits")
	ErrNotFound          = errors.New("postal code not found")
	ErrNetwork           = errors.New("address lookup unavailable")
)

// Address is a Brazilian shipping address. Number and Complement are typed by
// the customer; the rest can be filled from a postal-code lookup.
type Address struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// Digits strips everything but ASCII digits from raw.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatInput renders partial input as the customer types it: at most eight
// digits, with a hyphen after the fifth once there are more than five.
func FormatInput(raw string) string {
	d := Digits(raw)
	if len(d) > postalCodeDigits {
		d = d[:postalCodeDigits]
	}
	if len(d) <= 5 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// Normalize returns the eight digits of a complete postal code.
func Normalize(raw string) (string, error) {
	d := Digits(raw)
	if len(d) != postalCodeDigits {
		return "", ErrInvalidPostalCode
	}
	return d, nil
}

// Format renders a complete postal code as #####-###.
func Format(raw string) (string, error) {
	d, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	return d[:5] + "-" + d[5:], nil
}

// ErrorCode maps a lookup error to the short code shown to clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidPostalCode):
		return "invalid_postal_code"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "network"
	}
}
