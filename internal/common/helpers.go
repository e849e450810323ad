package common

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals       = 9             // SOL has 9 decimals (lamports)
	LamportsPerSOL    = 1_000_000_000 // 1 SOL = 10^9 lamports
	MaxTokenDecimals  = 18
	maxUint64Decimals = 20
)

var errNegativeAmount = errors.New("amount must not be negative")

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return formatWithDecimals(lamports, SOLDecimals)
}

// SOLToLamports converts SOL string to lamports without float precision loss.
// Digits past the 9th decimal are truncated.
func SOLToLamports(sol string) (uint64, error) {
	return UIAmountToRaw(sol, SOLDecimals)
}

// UIAmountToRaw converts a human readable token amount into base units:
// floor(uiAmount * 10^decimals). Dust below one base unit yields 0.
func UIAmountToRaw(uiAmount string, decimals uint8) (uint64, error) {
	uiAmount = strings.TrimSpace(uiAmount)
	if uiAmount == "" {
		return 0, fmt.Errorf("empty string")
	}
	if decimals > MaxTokenDecimals {
		return 0, fmt.Errorf("unsupported decimals: %d", decimals)
	}

	d, err := decimal.NewFromString(uiAmount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", uiAmount, err)
	}
	if d.IsNegative() {
		return 0, errNegativeAmount
	}

	raw := d.Shift(int32(decimals)).Floor().BigInt()
	if !raw.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows base units", uiAmount)
	}
	return raw.Uint64(), nil
}

// RawToUIAmount formats base units as a decimal string with the given precision.
func RawToUIAmount(raw uint64, decimals uint8) string {
	if decimals == 0 {
		return new(big.Int).SetUint64(raw).String()
	}
	return formatWithDecimals(raw, int(decimals))
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := fmt.Sprintf("%d", value)

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
