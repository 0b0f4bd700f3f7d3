package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"canonical", "3001234567", "3001234567", true},
		{"local zero prefix", "03001234567", "3001234567", true},
		{"country code", "923001234567", "3001234567", true},
		{"plus and spaces", "+92 300 1234567", "3001234567", true},
		{"dashes", "0300-1234567", "3001234567", true},
		{"numeric cell artifact", "3001234567.0", "3001234567", true},
		{"short", "12345", "", false},
		{"empty", "", "", false},
		{"landline", "0421234567", "", false},
		{"not mobile", "4001234567", "", false},
		{"thirteen digits", "9230012345678", "", false},
		{"double prefix is strict", "00923001234567", "", false},
		{"letters only", "unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Phone(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhoneEquivalentForms(t *testing.T) {
	for _, base := range []string{"3001234567", "3219876543", "3450000000", "3999999999"} {
		for _, form := range []string{base, "0" + base, "92" + base} {
			got, ok := Phone(form)
			assert.True(t, ok, form)
			assert.Equal(t, base, got, form)

			loose, ok := PhoneLoose(form)
			assert.True(t, ok, form)
			assert.Equal(t, base, loose, form)
		}
	}
}

func TestPhoneIdempotent(t *testing.T) {
	inputs := []string{"03001234567", "923001234567", "+92-321-9876543", "3451112223.0"}
	for _, in := range inputs {
		once, ok := Phone(in)
		if !assert.True(t, ok, in) {
			continue
		}
		twice, ok := Phone(once)
		assert.True(t, ok)
		assert.Equal(t, once, twice)
	}
}

func TestPhoneLoose(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"3.001234567E9", "3001234567", true},
		{"9.23001234567e+11", "3001234567", true},
		{"00923001234567", "3001234567", true},
		{"0923001234567", "3001234567", true},
		{"923001234567.0", "3001234567", true},
		{"12345", "", false},
		{"", "", false},
		{"4423001234567", "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, ok := PhoneLoose(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
