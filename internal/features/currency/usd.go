package currency

import (
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const fractionDigits = 2

// Formatter renders amounts as en-US currency strings, e.g. "$1,234.56" or "-$5.00".
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
}

// USD is the formatter used for every balance axis and tooltip.
var USD = NewFormatter(currency.USD, language.AmericanEnglish)

// NewFormatter builds a Formatter for unit using tag's grouping rules.
func NewFormatter(unit currency.Unit, tag language.Tag) *Formatter {
	p := message.NewPrinter(tag)
	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.NarrowSymbol(unit)),
	}
}

// Format renders amount with two fraction digits and the currency symbol as prefix.
// Negative amounts carry the sign before the symbol.
func (f *Formatter) Format(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return f.symbol + "-"
	}

	sign := ""
	// round first so -0.001 does not print as "-$0.00"
	rounded := math.Round(amount*100) / 100
	if rounded < 0 {
		sign = "-"
		rounded = -rounded
	}

	formatted := f.printer.Sprint(number.Decimal(rounded,
		number.MinFractionDigits(fractionDigits),
		number.MaxFractionDigits(fractionDigits),
	))
	return sign + f.symbol + formatted
}

// Symbol returns the narrow currency symbol, "$" for USD.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// FormatUSD is shorthand for USD.Format.
func FormatUSD(amount float64) string {
	return USD.Format(amount)
}
