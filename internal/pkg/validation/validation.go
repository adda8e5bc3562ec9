package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Indian mobile numbers: ten digits starting with 6-9.
var mobileRe = regexp.MustCompile(`^[6-9]\d{9}$`)

// Plain decimal with at most two fraction digits, no sign or exponent.
var priceRe = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword matches the signup form rule: at least 6 characters.
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= 6
}

func IsValidMobileNumber(mobile string) bool {
	return mobileRe.MatchString(mobile)
}

// LengthBetween reports whether the trimmed rune length of s is within [min, max].
func LengthBetween(s string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= min && n <= max
}

// ParsePrice validates a price string and returns its decimal value.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !priceRe.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}
