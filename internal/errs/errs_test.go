// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package errs

import (
	"errors"
	"fmt"
	"strconv"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"decode", Decode("op", "bad %s", "checksum"), ErrDecode},
		{"parse", Parse("op", "bad json"), ErrParse},
		{"validation", Validation("op", "missing"), ErrValidation},
		{"key", Key("op", "not on curve"), ErrKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.kind) {
				t.Errorf("kind lost through fmt.Errorf wrapping")
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	_, cause := strconv.ParseUint("abc", 10, 64)
	err := Wrap(ErrParse, "txn.fee", cause)

	if !errors.Is(err, ErrParse) {
		t.Error("expected ErrParse kind")
	}
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Error("expected underlying strconv.ErrSyntax")
	}
	if got := err.Error(); got != "txn.fee: parse error: "+cause.Error() {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(ErrDecode, "op", nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestErrorMessage(t *testing.T) {
	err := Decode("base58check.Decode", "checksum mismatch")
	want := "base58check.Decode: decode error: checksum mismatch"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
