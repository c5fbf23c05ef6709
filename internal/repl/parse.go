// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package repl

import (
	"fmt"
	"strings"
)

// ParseCommand splits a line into a command name and arguments.
// Double quotes group words and are removed.
func ParseCommand(input string) (string, []string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	var parts []string
	var current strings.Builder
	inQuotes := false
	quoted := false

	for i := 0; i < len(input); i++ {
		ch := input[i]

		switch ch {
		case '"':
			inQuotes = !inQuotes
			quoted = true
		case ' ', '\t':
			if inQuotes {
				current.WriteByte(ch)
			} else if current.Len() > 0 || quoted {
				parts = append(parts, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 || quoted {
		parts = append(parts, current.String())
	}

	if len(parts) == 0 {
		return "", nil
	}

	return parts[0], parts[1:]
}

// RawArgs returns everything after the command name with quotes intact.
func RawArgs(line string) string {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(line[i+1:])
}

// ParseKeyValues parses key=value arguments. Keys outside allowed and
// repeated keys are errors.
func ParseKeyValues(args []string, allowed ...string) (map[string]string, error) {
	ok := make(map[string]bool, len(allowed))
	for _, k := range allowed {
		ok[k] = true
	}
	out := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, found := strings.Cut(arg, "=")
		if !found || k == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		k = strings.ToLower(k)
		if !ok[k] {
			return nil, fmt.Errorf("unknown argument %q (expected one of: %s)", k, strings.Join(allowed, ", "))
		}
		if _, dup := out[k]; dup {
			return nil, fmt.Errorf("argument %q given twice", k)
		}
		out[k] = v
	}
	return out, nil
}

// requireKeys reports the first missing key.
func requireKeys(kv map[string]string, keys ...string) error {
	for _, k := range keys {
		if _, ok := kv[k]; !ok {
			return fmt.Errorf("missing required argument %s=", k)
		}
	}
	return nil
}
