// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package rpcsigner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/aplane-algo/minasign/internal/errs"
	"github.com/aplane-algo/minasign/internal/field"
	"github.com/aplane-algo/minasign/internal/keys"
	"github.com/aplane-algo/minasign/internal/signature"
	"github.com/aplane-algo/minasign/internal/signer"
	"github.com/aplane-algo/minasign/internal/util"
)

// BackendName is the config.yaml name of this backend.
const BackendName = util.SignerBackendRPC

func init() {
	signer.Register(BackendName, func(cfg util.SignerConfig) (signer.Backend, error) {
		return Start(cfg)
	})
}

// Backend implements signer.Backend over a Client.
type Backend struct {
	client *Client

	// Set only when the backend owns a child process.
	process *exec.Cmd
	stdin   io.Closer
}

// New wraps an already-connected stream pair. The caller owns the streams.
func New(r io.Reader, w io.Writer, timeout time.Duration) *Backend {
	c := NewClient(r, w, timeout)
	c.Start()
	return &Backend{client: c}
}

// Start launches cfg.Command and speaks JSON-RPC over its stdio.
// The child's stderr is forwarded line by line to the debug log.
func Start(cfg util.SignerConfig) (*Backend, error) {
	if cfg.Command == "" {
		return nil, fmt.Errorf("signer command is not configured")
	}

	cmd := exec.Command(cfg.Command, cfg.Args...) // #nosec G204 - command comes from the user's own config
	cmd.Env = append(os.Environ(), "MINASIGN_SIGNER=1")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start signer: %w", err)
	}
	util.Debug("signer process started", "command", cfg.Command, "pid", cmd.Process.Pid)

	go forwardStderr(cfg.Command, stderr)

	b := New(stdout, stdin, time.Duration(cfg.TimeoutSeconds)*time.Second)
	b.process = cmd
	b.stdin = stdin
	return b, nil
}

func forwardStderr(name string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		util.Debug("signer stderr", "command", name, "line", scanner.Text())
	}
}

func (b *Backend) Name() string { return BackendName }

func (b *Backend) GenerateKeypair(ctx context.Context) (*keys.Keypair, error) {
	var res KeypairParams
	if err := b.client.Call(ctx, MethodGenerateKeypair, struct{}{}, &res); err != nil {
		return nil, err
	}
	return keys.NewKeypair(res.PrivateKey, res.PublicKey)
}

func (b *Backend) DerivePublicKey(ctx context.Context, secret field.Element) (keys.PublicKey, error) {
	var res PublicKeyResult
	params := PrivateKeyParams{PrivateKey: keys.EncodePrivateKey(secret)}
	if err := b.client.Call(ctx, MethodDerivePublicKey, params, &res); err != nil {
		return keys.PublicKey{}, wrapKeyErr(err)
	}
	return keys.ParseAddress(res.PublicKey)
}

func (b *Backend) ValidateKeypair(ctx context.Context, kp *keys.Keypair) (bool, error) {
	var res ValidResult
	params := KeypairParams{PrivateKey: kp.PrivateKey(), PublicKey: kp.Public.Address()}
	if err := b.client.Call(ctx, MethodValidateKeypair, params, &res); err != nil {
		return false, wrapKeyErr(err)
	}
	return res.Valid, nil
}

func (b *Backend) Sign(ctx context.Context, req signer.SignRequest) (signature.Signature, error) {
	params := SignParams{
		Network:    req.Network.String(),
		Domain:     req.Domain,
		Input:      WireInput(req.Input),
		PrivateKey: req.Keypair.PrivateKey(),
		PublicKey:  req.Keypair.Public.Address(),
	}
	var res signature.JSON
	if err := b.client.Call(ctx, MethodSign, params, &res); err != nil {
		return signature.Signature{}, wrapKeyErr(err)
	}
	return res.Signature()
}

func (b *Backend) Verify(ctx context.Context, req signer.VerifyRequest) (bool, error) {
	params := VerifyParams{
		Network:   req.Network.String(),
		Domain:    req.Domain,
		Input:     WireInput(req.Input),
		PublicKey: req.PublicKey.Address(),
		Signature: req.Signature.JSON(),
	}
	var res ValidResult
	if err := b.client.Call(ctx, MethodVerify, params, &res); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// Close stops the child process if this backend started one.
func (b *Backend) Close() error {
	b.client.Close()
	if b.process == nil {
		return nil
	}

	_ = b.stdin.Close()

	done := make(chan error, 1)
	go func() {
		done <- b.process.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		_ = b.process.Process.Kill()
		<-done
		return fmt.Errorf("signer process killed after shutdown timeout")
	}
}

// wrapKeyErr maps the signer's invalid-key error code onto errs.ErrKey.
func wrapKeyErr(err error) error {
	var rpcErr *Error
	if errors.As(err, &rpcErr) && rpcErr.Code == InvalidKey {
		return errs.Wrap(errs.ErrKey, "rpcsigner", rpcErr)
	}
	return err
}

var _ signer.Backend = (*Backend)(nil)
