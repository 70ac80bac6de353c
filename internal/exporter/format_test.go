package exporter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"salespulse/pkg/contracts/domain"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{name: "zero", input: 0, want: "0.00"},
		{name: "integer", input: 1234, want: "1234.00"},
		{name: "one decimal", input: 1234.5, want: "1234.50"},
		{name: "half rounds up", input: 1.005, want: "1.01"},
		{name: "negative half rounds away from zero", input: -2.345, want: "-2.35"},
		{name: "float noise", input: 0.1 + 0.2, want: "0.30"},
		{name: "large", input: 1250000.125, want: "1250000.13"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(tt.input))
		})
	}
}

func TestFormatMoneyCell(t *testing.T) {
	tests := []struct {
		name string
		cell domain.Number
		want string
	}{
		{name: "missing", cell: domain.Number{}, want: ""},
		{name: "numeric", cell: domain.NewNumber(10), want: "10.00"},
		{name: "non-numeric keeps raw", cell: domain.ParseNumber("n/a price"), want: "n/a price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoneyCell(tt.cell))
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "33.33", formatPercent(100.0/3))
	assert.Equal(t, "100.00", formatPercent(100))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "2024-02-29", formatDate(time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "-42", formatInt(-42))
}
