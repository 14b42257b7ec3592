package exchange

import "strings"

// SymbolFormat describes how an exchange spells a trading pair.
// Exchanges disagree on separator, case and suffix: BTCUSDT, btcusdt,
// BTC-USDT, btcusdt_SPBL. One table entry per exchange replaces the
// per-call-site formatting branches the APIs otherwise force on you.
type SymbolFormat struct {
	// Separator joins base and quote asset ("" for most, "-" for OKX).
	Separator string

	// Lowercase spells the pair in lower case.
	Lowercase bool

	// Suffix is appended after formatting (e.g. Bitget's spot suffix).
	Suffix string
}

// Formats maps exchange names to their native symbol spelling.
// Add new exchanges here when implementing new adapters.
var Formats = map[string]SymbolFormat{
	"binance": {},
	"bybit":   {},
	"mexc":    {},
	"htx":     {Lowercase: true},
	"okx":     {Separator: "-"},
	"bitget":  {Lowercase: true, Suffix: "_SPBL"},
}

// Native converts a canonical symbol to an exchange's native spelling.
// Example: Native("okx", "BTC/USDT") -> "BTC-USDT".
// Returns the input unchanged when the exchange or symbol is unknown.
func Native(exchange, symbol string) string {
	format, ok := Formats[exchange]
	if !ok {
		return symbol
	}
	base, quote, ok := Split(symbol)
	if !ok {
		return symbol
	}

	native := base + format.Separator + quote
	if format.Lowercase {
		native = strings.ToLower(native)
	}
	return native + format.Suffix
}

// Split breaks a canonical BASE/QUOTE symbol into its assets.
func Split(symbol string) (base, quote string, ok bool) {
	parts := strings.Split(symbol, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Canonical normalizes an exchange-native instrument identifier into the
// canonical BASE/QUOTE form, given the quote asset the exchange reported.
// Example: Canonical("btcusdt_SPBL", "usdt") -> "BTC/USDT".
// Returns "" when the identifier does not reduce to a base asset.
func Canonical(instrument, quoteAsset string) string {
	s := strings.ToUpper(instrument)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")

	quote := strings.ToUpper(quoteAsset)

	// Bitget-style suffixes survive the separator strip (BTCUSDTSPBL).
	if idx := strings.LastIndex(s, quote); idx > 0 {
		s = s[:idx+len(quote)]
	}

	base := strings.TrimSuffix(s, quote)
	if base == "" || base == s {
		return ""
	}
	return base + "/" + quote
}
