// Package models provides domain models for the stock analysis application.
package models

import (
	"regexp"
	"strings"
	"time"
)

// Exchange represents an Indian stock exchange.
type Exchange string

const (
	NSE Exchange = "NSE"
	BSE Exchange = "BSE"
)

// Valid reports whether the exchange is one of the supported exchanges.
func (e Exchange) Valid() bool {
	return e == NSE || e == BSE
}

// YahooSuffix returns the Yahoo Finance symbol suffix for the exchange.
func (e Exchange) YahooSuffix() string {
	if e == BSE {
		return ".BO"
	}
	return ".NS"
}

// ParseExchange parses a user-supplied exchange name. It accepts any casing
// and surrounding whitespace.
func ParseExchange(s string) (Exchange, bool) {
	switch Exchange(strings.ToUpper(strings.TrimSpace(s))) {
	case NSE:
		return NSE, true
	case BSE:
		return BSE, true
	}
	return "", false
}

// ExchangeFromYahooSymbol maps a suffixed Yahoo symbol back to its exchange.
// Unsuffixed symbols default to NSE, matching the fetch layer's behavior.
func ExchangeFromYahooSymbol(symbol string) Exchange {
	if strings.HasSuffix(symbol, ".BO") {
		return BSE
	}
	return NSE
}

// MarketStatus represents the current market status.
type MarketStatus string

const (
	MarketOpen    MarketStatus = "OPEN"
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// Candle represents daily OHLCV data for one trading day.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Symbol pattern: uppercase letters, numbers, and limited special chars
var symbolPattern = regexp.MustCompile(`^[A-Z0-9&-]{1,20}$`)

// NormalizeSymbol uppercases and trims a user-supplied symbol and strips a
// trailing Yahoo exchange suffix if the user pasted one.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, ".BO")
	return s
}

// ValidSymbol reports whether a normalized symbol is well formed.
func ValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// PopularSymbols are suggestions shown in help output and not-found hints.
var PopularSymbols = []string{"RELIANCE", "TCS", "HDFCBANK", "INFY", "SUNFLAG"}
