package httpui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a list price: two grouped decimals from $1 up, six
// below.
func FormatPrice(price float64) string {
	d := decimal.NewFromFloat(price)
	if price >= 1 {
		return "$" + groupThousands(d.StringFixed(2))
	}
	return "$" + d.StringFixed(6)
}

// FormatChange renders a percentage change as "+1.23%" or "-1.23%". Zero
// counts as a gain.
func FormatChange(change float64) string {
	sign := ""
	if change >= 0 {
		sign = "+"
	}
	return sign + decimal.NewFromFloat(change).StringFixed(2) + "%"
}

// FormatAddress shortens 0x1234567890abcdef... to 0x1234...cdef.
func FormatAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// FormatBillions renders a value already divided by 1e9.
func FormatBillions(b float64) string {
	return "$" + decimal.NewFromFloat(b).StringFixed(2) + "B"
}

// FormatUSD renders a fiat amount with grouped thousands and two decimals.
func FormatUSD(v decimal.Decimal) string {
	return "$" + groupThousands(v.StringFixed(2))
}

// FormatAmount renders a plain dollar figure with up to three decimals,
// trailing zeros dropped.
func FormatAmount(v float64) string {
	s := decimal.NewFromFloat(v).Round(3).String()
	return "$" + groupThousands(s)
}

// FormatBalance renders a token balance with six decimals.
func FormatBalance(v decimal.Decimal) string {
	return v.StringFixed(6)
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func changeClass(change float64) string {
	if change >= 0 {
		return "positive"
	}
	return "negative"
}

func changeIcon(change float64) string {
	if change >= 0 {
		return "▲"
	}
	return "▼"
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func rank(n int) string {
	if n <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
