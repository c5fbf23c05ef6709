// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package txn

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/aplane-algo/minasign/internal/errs"
)

// Number is an unsigned integer that arrives as a JSON number or a numeric
// string. Callers from JavaScript pass u64 values either way depending on
// whether they hold a bigint, so both forms are accepted. null, a missing
// key and "" all mean "absent".
type Number struct {
	raw string
}

// NumberOf wraps a value.
func NumberOf(v uint64) Number {
	return Number{raw: strconv.FormatUint(v, 10)}
}

// Present reports whether a value was supplied.
func (n Number) Present() bool {
	return n.raw != ""
}

// String returns the raw decimal text.
func (n Number) String() string {
	return n.raw
}

// Uint64 parses the value. name is used in error messages.
func (n Number) Uint64(name string) (uint64, error) {
	if !n.Present() {
		return 0, errs.Validation("txn."+name, "value is required")
	}
	v, err := strconv.ParseUint(n.raw, 10, 64)
	if err != nil {
		return 0, errs.Wrap(errs.ErrParse, "txn."+name, err)
	}
	return v, nil
}

// Uint32 parses the value as a 32-bit integer.
func (n Number) Uint32(name string) (uint32, error) {
	if !n.Present() {
		return 0, errs.Validation("txn."+name, "value is required")
	}
	v, err := strconv.ParseUint(n.raw, 10, 32)
	if err != nil {
		return 0, errs.Wrap(errs.ErrParse, "txn."+name, err)
	}
	return uint32(v), nil
}

// OptionalUint32 parses the value, returning ok=false when absent.
func (n Number) OptionalUint32(name string) (v uint32, ok bool, err error) {
	if !n.Present() {
		return 0, false, nil
	}
	v, err = n.Uint32(name)
	return v, err == nil, err
}

// UnmarshalJSON accepts 123, "123", null and "".
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.raw = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errs.Wrap(errs.ErrParse, "txn.Number", err)
		}
		n.raw = s
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return errs.Wrap(errs.ErrParse, "txn.Number", err)
	}
	n.raw = num.String()
	return nil
}

// MarshalJSON emits the value as a string, or null when absent.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(n.raw)
}
