// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/aplane-algo/minasign/internal/util"
)

// Execute runs one input line. It returns ErrExit when the user quits.
func (s *Session) Execute(ctx context.Context, line string) error {
	name, args := ParseCommand(line)
	if name == "" {
		return nil
	}
	cmd, ok := s.Registry.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for a list)", name)
	}
	util.Debug("repl command", "name", cmd.Name, "args", len(args))
	return cmd.Handler.Execute(args, &Context{
		Network: s.Client.Network().String(),
		RawArgs: RawArgs(line),
		Ctx:     ctx,
		Session: s,
	})
}

// prompt shows the network and whether a key is active.
func (s *Session) prompt() string {
	marker := ""
	if s.Keypair != nil {
		marker = "*"
	}
	return fmt.Sprintf("\033[32m%s%s>\033[0m ", marker, s.Client.Network())
}

// Config controls the interactive loop.
type Config struct {
	HistoryFile string
	Stdin       io.ReadCloser
}

// Run starts the readline loop and returns when the user quits or input ends.
func Run(ctx context.Context, s *Session, cfg Config) error {
	rlConfig := &readline.Config{
		Prompt:            s.prompt(),
		HistoryFile:       cfg.HistoryFile,
		HistoryLimit:      1000,
		AutoComplete:      newCompleter(s.Registry),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		Stdin:             cfg.Stdin,
		Stdout:            s.Out,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		_, _ = fmt.Fprintf(s.Out, "Failed to create readline instance, falling back to basic input: %v\n", err)
		in := cfg.Stdin
		if in == nil {
			return err
		}
		return RunBasic(ctx, s, in)
	}
	defer func() {
		_ = rl.Close()
	}()

	if s.ReadSecret == nil {
		s.ReadSecret = func(prompt string) (string, error) {
			b, err := rl.ReadPassword(prompt)
			return string(b), err
		}
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		rl.SetPrompt(s.prompt())

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					_, _ = fmt.Fprintln(s.Out, "Use 'quit' or 'exit' to exit")
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				_, _ = fmt.Fprintln(s.Out, "\nGoodbye!")
				return nil
			}
			return err
		}

		if done := s.report(s.Execute(ctx, line)); done {
			return nil
		}
	}
}

// RunBasic reads commands line by line from r without line editing.
func RunBasic(ctx context.Context, s *Session, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if done := s.report(s.Execute(ctx, line)); done {
			return nil
		}
	}
	return scanner.Err()
}

// report prints a command error and reports whether the loop should end.
func (s *Session) report(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrExit) {
		return true
	}
	_, _ = fmt.Fprintf(s.Out, "%s %v\n", util.Colorize("Error:", util.ColorError), err)
	return false
}

// newCompleter completes command names and the fixed first arguments of
// network, encoder, memo and help.
func newCompleter(r *Registry) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range r.Names() {
		switch name {
		case "network":
			items = append(items, readline.PcItem(name, readline.PcItem("mainnet"), readline.PcItem("testnet")))
		case "encoder":
			items = append(items, readline.PcItem(name, readline.PcItem("binprot"), readline.PcItem("msgpack")))
		case "memo":
			items = append(items, readline.PcItem(name, readline.PcItem("encode"), readline.PcItem("decode")))
		case "help":
			var sub []readline.PrefixCompleterInterface
			for _, cmd := range r.All() {
				sub = append(sub, readline.PcItem(cmd.Name))
			}
			items = append(items, readline.PcItem(name, sub...))
		default:
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}
