package httpui

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{65000, "$65,000.00"},
		{1234.567, "$1,234.57"},
		{1, "$1.00"},
		{0.5, "$0.500000"},
		{0.00001234, "$0.000012"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatChange(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{2.5, "+2.50%"},
		{-1.234, "-1.23%"},
		{0, "+0.00%"},
	}
	for _, tt := range tests {
		if got := FormatChange(tt.in); got != tt.want {
			t.Errorf("FormatChange(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatAddress(t *testing.T) {
	got := FormatAddress("0x1234567890abcdef1234567890abcdef12345678")
	if got != "0x1234...5678" {
		t.Errorf("got %q", got)
	}
	if got := FormatAddress("0x12"); got != "0x12" {
		t.Errorf("short address changed: %q", got)
	}
}

func TestFormatMisc(t *testing.T) {
	if got := FormatBillions(1234.5); got != "$1234.50B" {
		t.Errorf("FormatBillions = %q", got)
	}
	if got := FormatUSD(decimal.NewFromInt(4500)); got != "$4,500.00" {
		t.Errorf("FormatUSD = %q", got)
	}
	if got := FormatUSD(decimal.Zero); got != "$0.00" {
		t.Errorf("FormatUSD(0) = %q", got)
	}
	if got := FormatAmount(65000); got != "$65,000" {
		t.Errorf("FormatAmount = %q", got)
	}
	if got := FormatBalance(decimal.RequireFromString("1.5")); got != "1.500000" {
		t.Errorf("FormatBalance = %q", got)
	}
	if got := groupThousands("-1234567.5"); got != "-1,234,567.5" {
		t.Errorf("groupThousands = %q", got)
	}
}
