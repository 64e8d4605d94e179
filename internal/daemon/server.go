// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/session"
)

const (
	// maxMessageSize bounds a single request message.
	maxMessageSize = 1 << 20

	// readTimeout bounds reading a request from a client.
	readTimeout = 30 * time.Second

	// stopTimeout bounds a stop request waiting for session teardown.
	stopTimeout = 30 * time.Second

	// socketPermissions restrict the control socket to the owner.
	socketPermissions = 0o600
)

// Launcher builds the base invocation for a session from the start
// request. The [Server] adds requested patterns and deadline on top.
type Launcher func(params StartParams) (session.Config, error)

// Server serves session control requests on a unix socket.
type Server struct {
	sockPath string
	ctrl     *session.Controller
	launch   Launcher
}

// NewServer creates a [Server] for the given socket path, controller and
// launcher.
func NewServer(
	sockPath string,
	ctrl *session.Controller,
	launch Launcher,
) *Server {
	return &Server{
		sockPath: sockPath,
		ctrl:     ctrl,
		launch:   launch,
	}
}

// Serve listens on the unix socket and serves requests until the context
// is canceled. A stale socket file from a previous run is replaced.
func (s *Server) Serve(ctx context.Context) error {
	// Replace stale socket left over from an unclean shutdown.
	_ = os.Remove(s.sockPath)

	listener, err := net.Listen("unix", s.sockPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	err = os.Chmod(s.sockPath, socketPermissions)
	if err != nil {
		_ = listener.Close()

		return fmt.Errorf("chmod socket: %w", err)
	}

	slog.Info("Daemon listening", slog.String("socket", s.sockPath))

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	defer func() {
		_ = os.Remove(s.sockPath)

		stopCtx, cancel := context.WithTimeout(
			context.WithoutCancel(ctx),
			stopTimeout,
		)
		defer cancel()

		_ = s.ctrl.Stop(stopCtx)
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}

			slog.Warn("Accept failed", slog.Any("error", err))

			continue
		}

		go s.handleConnection(ctx, conn)
	}
}

// handleConnection reads a single request, dispatches it and writes the
// response.
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	err := conn.SetReadDeadline(time.Now().Add(readTimeout))
	if err != nil {
		slog.Warn("Set read deadline failed", slog.Any("error", err))

		return
	}

	decoder := json.NewDecoder(io.LimitReader(conn, maxMessageSize))
	encoder := json.NewEncoder(conn)

	var req Request

	err = decoder.Decode(&req)
	if err != nil {
		_ = encoder.Encode(Response{
			Error: fmt.Sprintf("decode request: %v", err),
		})

		return
	}

	resp := s.handleRequest(ctx, &req)
	resp.ID = req.ID

	_ = encoder.Encode(resp)
}

func (s *Server) handleRequest(ctx context.Context, req *Request) Response {
	var (
		result any
		err    error
	)

	switch req.Method {
	case "start":
		result, err = s.handleStart(ctx, req.Params)
	case "stop":
		result, err = s.handleStop(ctx)
	case "status":
		result, err = s.handleStatus()
	case "running":
		result, err = s.handleRunning()
	case "kill":
		result, err = s.handleKill()
	case "send":
		result, err = s.handleSend(req.Params)
	case "run":
		result, err = s.handleRun(ctx, req.Params)
	case "wait_prompt":
		result, err = s.handleWaitPrompt(ctx, req.Params)
	case "logs":
		result, err = s.handleLogs(req.Params)
	default:
		err = fmt.Errorf("%w: %s", ErrMethodUnknown, req.Method)
	}

	if err != nil {
		return Response{Error: err.Error()}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return Response{Error: fmt.Sprintf("encode result: %v", err)}
	}

	return Response{Result: raw}
}

func (s *Server) handleStart(
	ctx context.Context,
	raw json.RawMessage,
) (any, error) {
	var params StartParams

	err := unmarshalParams(raw, &params)
	if err != nil {
		return nil, err
	}

	cfg, err := s.launch(params)
	if err != nil {
		return nil, fmt.Errorf("build invocation: %w", err)
	}

	if params.Mode != "" {
		cfg.Mode = params.Mode
	}

	if params.Deadline != "" {
		cfg.Deadline, err = time.ParseDuration(params.Deadline)
		if err != nil {
			return nil, fmt.Errorf("parse deadline: %w", err)
		}
	}

	for _, spec := range params.Patterns {
		p, err := spec.Compile()
		if err != nil {
			return nil, err
		}

		cfg.Patterns = append(cfg.Patterns, p)
	}

	sess, err := s.ctrl.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return StartResult{
		ID:       sess.ID,
		PID:      sess.PID,
		Deadline: sess.Deadline.Format(time.RFC3339),
	}, nil
}

func (s *Server) handleStop(ctx context.Context) (any, error) {
	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	err := s.ctrl.Stop(stopCtx)
	if err != nil {
		return nil, err
	}

	sess := s.ctrl.Session()
	if sess == nil {
		return &RunResult{}, nil
	}

	return wireResult(sess.Result()), nil
}

func (s *Server) handleStatus() (any, error) {
	sess := s.ctrl.Session()
	if sess == nil {
		return StatusResult{State: string(session.StateNotStarted)}, nil
	}

	status := StatusResult{
		ID:      sess.ID,
		State:   string(sess.State()),
		Mode:    sess.Mode,
		PID:     sess.PID,
		Result:  wireResult(sess.Result()),
		Started: sess.StartedAt.Format(time.RFC3339),
	}

	if sess.State() == session.StateRunning {
		status.Uptime = time.Since(sess.StartedAt).Truncate(time.Second).String()
	}

	return status, nil
}

func (s *Server) handleRunning() (any, error) {
	count, tracked := s.ctrl.Running()

	return RunningResult{Count: count, Tracked: tracked}, nil
}

func (s *Server) handleKill() (any, error) {
	killed, err := s.ctrl.KillAll()
	if err != nil {
		return nil, err
	}

	return KillResult{Killed: killed}, nil
}

func (s *Server) handleSend(raw json.RawMessage) (any, error) {
	var params SendParams

	err := unmarshalParams(raw, &params)
	if err != nil {
		return nil, err
	}

	err = s.ctrl.Send(params.Text)
	if err != nil {
		return nil, err
	}

	return &RunResult{}, nil
}

func (s *Server) handleRun(
	ctx context.Context,
	raw json.RawMessage,
) (any, error) {
	var params RunParams

	err := unmarshalParams(raw, &params)
	if err != nil {
		return nil, err
	}

	timeout, err := parseTimeout(params.Timeout, session.DefaultDeadline)
	if err != nil {
		return nil, err
	}

	var wait *pattern.Pattern

	if params.Wait != nil {
		p, err := params.Wait.Compile()
		if err != nil {
			return nil, err
		}

		wait = &p
	}

	result, err := s.ctrl.RunCommand(ctx, params.Text, wait, timeout)
	if err != nil {
		return nil, err
	}

	return wireResult(result), nil
}

func (s *Server) handleWaitPrompt(
	ctx context.Context,
	raw json.RawMessage,
) (any, error) {
	var params WaitPromptParams

	err := unmarshalParams(raw, &params)
	if err != nil {
		return nil, err
	}

	timeout, err := parseTimeout(params.Timeout, session.DefaultDeadline)
	if err != nil {
		return nil, err
	}

	result, err := s.ctrl.WaitForPrompt(ctx, timeout)
	if err != nil {
		return nil, err
	}

	return wireResult(result), nil
}

func (s *Server) handleLogs(raw json.RawMessage) (any, error) {
	var params LogsParams

	err := unmarshalParams(raw, &params)
	if err != nil {
		return nil, err
	}

	return LogsResult{Lines: wireLines(s.ctrl.Logs(params.N))}, nil
}

func unmarshalParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}

	err := json.Unmarshal(raw, into)
	if err != nil {
		return fmt.Errorf("decode params: %w", err)
	}

	return nil
}
