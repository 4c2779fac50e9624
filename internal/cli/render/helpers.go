package render

import (
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon, keeping only
// the innermost part of a wrapped error chain
func FormatError(message string) string {
	parts := strings.Split(message, ": ")
	msg := parts[len(parts)-1]

	if len(msg) > 0 {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}

	return color.New(color.FgRed).Sprintf("❌ %s", msg)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// Title turns an identifier like "await_signatures" into "Await Signatures"
func Title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// FormatEther renders a wei amount in ether, falling back to the raw value
// when it is not a base-10 integer
func FormatEther(wei string) string {
	if wei == "" {
		return "0 ETH"
	}
	amount, err := decimal.NewFromString(wei)
	if err != nil || !amount.Equal(amount.Truncate(0)) {
		return wei
	}
	return amount.Shift(-18).String() + " ETH"
}

// ShortHash abbreviates a hash or address to 0x1234…abcd
func ShortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:6] + "…" + h[len(h)-4:]
}
