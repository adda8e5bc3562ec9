package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidMobileNumber(t *testing.T) {
	assert.True(t, IsValidMobileNumber("9876543210"))
	assert.True(t, IsValidMobileNumber("6000000000"))
	assert.False(t, IsValidMobileNumber("5876543210"))
	assert.False(t, IsValidMobileNumber("987654321"))
	assert.False(t, IsValidMobileNumber("+919876543210"))
}

func TestIsValidPassword(t *testing.T) {
	assert.False(t, IsValidPassword("12345"))
	assert.True(t, IsValidPassword("123456"))
}

func TestParsePrice(t *testing.T) {
	d, ok := ParsePrice("4500000")
	assert.True(t, ok)
	assert.Equal(t, "4500000", d.String())

	d, ok = ParsePrice(" 12000.50 ")
	assert.True(t, ok)
	assert.Equal(t, "12000.5", d.String())

	for _, bad := range []string{"", "-1", "1e6", "12.345", "abc", "1,000"} {
		_, ok := ParsePrice(bad)
		assert.False(t, ok, bad)
	}
}

func TestLengthBetween(t *testing.T) {
	assert.True(t, LengthBetween("  Villa  ", 5, 100))
	assert.False(t, LengthBetween("Flat", 5, 100))
}

func TestErrors(t *testing.T) {
	errs := Errors{}
	assert.NoError(t, errs.Err())

	errs.Add("title", "Title must be at least 5 characters.")
	errs.Add("title", "ignored")
	errs.Add("district", "Please select a district.")
	err := errs.Err()
	assert.Error(t, err)
	assert.Equal(t, "Please select a district. Title must be at least 5 characters.", err.Error())
}
