package format

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// Currency renders whole US dollars with thousands separators, e.g. $283,725.
func Currency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)
	if d.IsNegative() {
		return "-$" + Number(d.Neg().IntPart())
	}
	return "$" + Number(d.IntPart())
}

// Compact renders dashboard-style amounts such as $142K or $1.2M.
func Compact(amount float64) string {
	d := decimal.NewFromFloat(amount)
	abs := d.Abs()
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}

	switch {
	case abs.GreaterThanOrEqual(decimal.New(1, 9)):
		return fmt.Sprintf("%s$%sB", sign, abs.Shift(-9).StringFixed(1))
	case abs.GreaterThanOrEqual(decimal.New(1, 6)):
		return fmt.Sprintf("%s$%sM", sign, abs.Shift(-6).StringFixed(1))
	case abs.GreaterThanOrEqual(decimal.New(1, 3)):
		return fmt.Sprintf("%s$%sK", sign, abs.Shift(-3).StringFixed(0))
	default:
		return fmt.Sprintf("%s$%s", sign, abs.StringFixed(0))
	}
}

func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Percent renders a ratio such as an R² score as 92.3%.
func Percent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Shift(2).StringFixed(1) + "%"
}
