// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultClientTimeout bounds a single client call unless the operation
// carries its own timeout.
const DefaultClientTimeout = 10 * time.Second

// Client talks to a [Server] over its unix socket. Each call dials a
// fresh connection.
type Client struct {
	sockPath string
	timeout  time.Duration
}

// NewClient creates a [Client] for the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{
		sockPath: sockPath,
		timeout:  DefaultClientTimeout,
	}
}

// call sends a single request and decodes the result into into, which
// may be nil if the caller only cares about success.
func (c *Client) call(
	method string,
	params any,
	into any,
	timeout time.Duration,
) error {
	conn, err := net.DialTimeout("unix", c.sockPath, c.timeout)
	if err != nil {
		return c.wrapDialError(err)
	}

	defer func() {
		_ = conn.Close()
	}()

	err = conn.SetDeadline(time.Now().Add(timeout))
	if err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	req := Request{Method: method}

	if params != nil {
		req.Params, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
	}

	err = json.NewEncoder(conn).Encode(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	var resp Response

	err = json.NewDecoder(conn).Decode(&resp)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.Error != "" {
		return &RemoteError{Method: method, Msg: resp.Error}
	}

	if into == nil || len(resp.Result) == 0 {
		return nil
	}

	err = json.Unmarshal(resp.Result, into)
	if err != nil {
		return fmt.Errorf("decode result: %w", err)
	}

	return nil
}

// wrapDialError maps connection failures to [ErrDaemonNotRunning] where
// the socket is absent or nobody listens on it.
func (c *Client) wrapDialError(err error) error {
	var errno unix.Errno

	if errors.As(err, &errno) {
		switch errno {
		case unix.ENOENT, unix.ECONNREFUSED:
			return fmt.Errorf("%w: %s", ErrDaemonNotRunning, c.sockPath)
		}
	}

	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrDaemonNotRunning, c.sockPath)
	}

	return fmt.Errorf("connect: %w", err)
}

// IsRunning reports whether a daemon accepts connections on the socket.
func (c *Client) IsRunning() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, time.Second)
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

// Start spawns a new session.
func (c *Client) Start(params StartParams) (*StartResult, error) {
	var result StartResult

	err := c.call("start", params, &result, c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Stop ends the active session and returns its terminal result.
func (c *Client) Stop() (*RunResult, error) {
	var result RunResult

	err := c.call("stop", nil, &result, c.timeout+stopTimeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Status returns the state of the most recent session.
func (c *Client) Status() (*StatusResult, error) {
	var result StatusResult

	err := c.call("status", nil, &result, c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Running reports target processes alive on the host.
func (c *Client) Running() (*RunningResult, error) {
	var result RunningResult

	err := c.call("running", nil, &result, c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Kill force-kills all target processes on the host.
func (c *Client) Kill() (*KillResult, error) {
	var result KillResult

	err := c.call("kill", nil, &result, c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Send writes text to the active session's input without waiting.
func (c *Client) Send(text string) error {
	return c.call("send", SendParams{Text: text}, nil, c.timeout)
}

// Run sends text and waits for the given pattern, bounded by the
// operation timeout.
func (c *Client) Run(params RunParams) (*RunResult, error) {
	timeout, err := parseTimeout(params.Timeout, DefaultClientTimeout)
	if err != nil {
		return nil, err
	}

	var result RunResult

	err = c.call("run", params, &result, timeout+c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// WaitPrompt waits until the daemon's ready pattern appears.
func (c *Client) WaitPrompt(timeout time.Duration) (*RunResult, error) {
	params := WaitPromptParams{Timeout: timeout.String()}

	var result RunResult

	err := c.call("wait_prompt", params, &result, timeout+c.timeout)
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// Logs fetches the last n buffered console lines.
func (c *Client) Logs(n int) ([]string, error) {
	var result LogsResult

	err := c.call("logs", LogsParams{N: n}, &result, c.timeout)
	if err != nil {
		return nil, err
	}

	return result.Lines, nil
}
