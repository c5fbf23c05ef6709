// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

// Package rpcsigner is a signer backend that talks JSON-RPC 2.0 over the
// stdin/stdout of an external process, one JSON object per line.
package rpcsigner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBackendExited is returned to pending and future calls once the signer
// process closes its stdout.
var ErrBackendExited = errors.New("signer process exited")

// Client handles JSON-RPC communication with a signer process.
// It is safe for concurrent use.
type Client struct {
	writer  io.Writer
	scanner *bufio.Scanner

	requestID uint64
	timeout   time.Duration

	mu      sync.Mutex
	writeMu sync.Mutex
	pending map[uint64]chan *Response
	done    bool
	doneErr error
}

// NewClient creates a client reading responses from reader and writing
// requests to writer. timeout bounds each call when the caller's context
// has no deadline; zero means 30 seconds.
func NewClient(reader io.Reader, writer io.Writer, timeout time.Duration) *Client {
	scanner := bufio.NewScanner(reader)
	const maxScanTokenSize = 1024 * 1024 // 1MB
	scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)

	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		writer:  writer,
		scanner: scanner,
		timeout: timeout,
		pending: make(map[uint64]chan *Response),
	}
}

// Start begins reading responses.
func (c *Client) Start() {
	go c.readLoop()
}

// Call makes a JSON-RPC call and waits for the response.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	id := atomic.AddUint64(&c.requestID, 1)
	respChan := make(chan *Response, 1)

	c.mu.Lock()
	if c.done {
		err := c.doneErr
		c.mu.Unlock()
		return err
	}
	c.pending[id] = respChan
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	if err := c.send(NewRequest(method, params, id)); err != nil {
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	select {
	case resp, ok := <-respChan:
		if !ok {
			return c.exitErr()
		}
		if resp.HasError() {
			return resp.Error
		}
		if result != nil {
			return resp.ParseResult(result)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s request: %w", method, ctx.Err())
	}
}

func (c *Client) send(req *Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	data = append(data, '\n')

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = c.writer.Write(data)
	return err
}

func (c *Client) readLoop() {
	for c.scanner.Scan() {
		line := c.scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var response Response
		if err := json.Unmarshal(line, &response); err != nil {
			continue
		}
		id, err := response.ID.Int64()
		if err != nil || id < 0 {
			continue
		}

		// Deliver under the lock so shutdown cannot close the channel
		// mid-send. The channel is buffered; a duplicate id is dropped.
		c.mu.Lock()
		if respChan, ok := c.pending[uint64(id)]; ok {
			select {
			case respChan <- &response:
			default:
			}
		}
		c.mu.Unlock()
	}

	cause := ErrBackendExited
	if err := c.scanner.Err(); err != nil {
		cause = fmt.Errorf("%w: %v", ErrBackendExited, err)
	}
	c.shutdown(cause)
}

// shutdown fails every pending call with cause.
func (c *Client) shutdown(cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done {
		return
	}
	c.done = true
	c.doneErr = cause
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) exitErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doneErr != nil {
		return c.doneErr
	}
	return ErrBackendExited
}

// Close fails any pending calls. It does not close the underlying streams.
func (c *Client) Close() {
	c.shutdown(ErrBackendExited)
}
