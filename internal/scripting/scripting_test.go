// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package scripting

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aplane-algo/minasign/internal/client"
	"github.com/aplane-algo/minasign/internal/testutil"
)

func newRunner(t *testing.T) (*GojaRunner, *[]string) {
	t.Helper()
	c, err := client.New("testnet", client.WithBackend(testutil.NewFakeBackend()))
	if err != nil {
		t.Fatal(err)
	}
	r := NewGojaRunner(c, false)
	var out []string
	r.SetOutput(func(s string) { out = append(out, s) })
	return r, &out
}

func TestRunResult(t *testing.T) {
	r, out := newRunner(t)

	res, err := r.Run(`print(network()); 1 + 2`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.IsEmpty || res.Value != int64(3) {
		t.Errorf("result = %+v", res)
	}
	if len(*out) != 1 || (*out)[0] != "testnet" {
		t.Errorf("output = %q", *out)
	}

	res, err = r.Run(`undefined`)
	if err != nil || !res.IsEmpty {
		t.Errorf("undefined result = %+v, %v", res, err)
	}
}

func TestRunPersistsState(t *testing.T) {
	r, _ := newRunner(t)
	if _, err := r.Run(`var kp = genKeys()`); err != nil {
		t.Fatal(err)
	}
	res, err := r.Run(`verifyKeypair(kp)`)
	if err != nil {
		t.Fatal(err)
	}
	if res.Value != true {
		t.Errorf("verifyKeypair(kp) = %v", res.Value)
	}
}

func TestRunScriptError(t *testing.T) {
	r, _ := newRunner(t)
	_, err := r.Run(`throw new Error("boom")`)
	var se *ScriptError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T %v, want *ScriptError", err, err)
	}
	if !strings.Contains(se.Message, "boom") {
		t.Errorf("message = %q", se.Message)
	}

	if _, err := r.Run(`var x = ;`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestRunContextCancel(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := r.RunContext(ctx, `while (true) {}`)
	if err == nil {
		t.Fatal("expected interrupt error")
	}

	// The runtime is usable again after an interrupt.
	res, err := r.RunContext(context.Background(), `40 + 2`)
	if err != nil {
		t.Fatalf("RunContext after interrupt: %v", err)
	}
	if res.Value != int64(42) {
		t.Errorf("result = %v", res.Value)
	}
}

func TestRunFile(t *testing.T) {
	r, out := newRunner(t)
	path := testutil.TempFile(t, []byte(`print(formatMina(mina("2.5")))`))

	if _, err := RunFile(context.Background(), r, path); err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if len(*out) != 1 || (*out)[0] != "2.5" {
		t.Errorf("output = %q", *out)
	}

	if _, err := RunFile(context.Background(), r, filepath.Join(t.TempDir(), "missing.js")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.js")
	if err := os.WriteFile(path, []byte("1"), 0o600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Watch(ctx, path, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.js"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("2"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
