// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinaDecimals is the number of decimal places between nanomina and MINA.
const MinaDecimals = 9

// FormatAmountWithDecimals formats an amount with the specified number of decimal places.
// If decimals is 0, returns the raw integer value.
func FormatAmountWithDecimals(amountUnits uint64, decimals int32) string {
	if decimals == 0 {
		return fmt.Sprintf("%d", amountUnits)
	}
	d := decimal.NewFromUint64(amountUnits).Shift(-decimals)
	return d.StringFixed(decimals)
}

// FormatMina renders a nanomina amount as MINA with trailing zeros trimmed.
func FormatMina(nanomina uint64) string {
	return decimal.NewFromUint64(nanomina).Shift(-MinaDecimals).String()
}

// ParseMina converts a MINA amount ("1.5") to nanomina.
// More than nine decimal places or a negative value is an error.
func ParseMina(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid MINA amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid MINA amount %q: negative", s)
	}
	nano := d.Shift(MinaDecimals)
	if !nano.Equal(nano.Truncate(0)) {
		return 0, fmt.Errorf("invalid MINA amount %q: more than %d decimal places", s, MinaDecimals)
	}
	if nano.GreaterThan(decimal.NewFromUint64(^uint64(0))) {
		return 0, fmt.Errorf("invalid MINA amount %q: exceeds u64", s)
	}
	return nano.BigInt().Uint64(), nil
}
