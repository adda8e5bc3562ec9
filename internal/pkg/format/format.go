package format

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout renders dates the way the admin tables show them (month/day/year, no padding).
const DateLayout = "1/2/2006"

// Date formats t for admin tables; zero time is "N/A".
func Date(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(DateLayout)
}

// INR renders an amount in rupees with Indian digit grouping, e.g. ₹45,00,000 or ₹1,250.50.
func INR(amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "N/A"
	}
	neg := d.IsNegative()
	d = d.Abs().Round(2)

	intPart := d.Truncate(0).String()
	frac := d.Sub(d.Truncate(0))
	out := "₹" + groupIndian(intPart)
	if !frac.IsZero() {
		out += "." + strings.TrimPrefix(frac.StringFixed(2), "0.")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// groupIndian groups the last three digits, then pairs: 4500000 -> 45,00,000.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
