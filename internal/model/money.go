package model

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

// FormatMoney renders n with a dollar sign and thousands separators.
func FormatMoney(n int64) string {
	if n < 0 {
		return moneyPrinter.Sprintf("-$%d", -n)
	}
	return moneyPrinter.Sprintf("$%d", n)
}
