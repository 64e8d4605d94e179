// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/bootwatch/bootwatch/internal/console"
	"github.com/bootwatch/bootwatch/internal/pattern"
)

// DefaultPromptPattern is the ready pattern [Controller.WaitForPrompt]
// matches if none is configured.
var DefaultPromptPattern = pattern.Literal(pattern.ClassCheckpoint, "# ")

// Controller composes supervisor, console streaming and pattern matching
// into the public session operations.
type Controller struct {
	sup    *Supervisor
	store  *artifact.Store
	prompt pattern.Pattern

	mu   sync.Mutex
	sess *Session
}

// NewController creates a [Controller] using the given supervisor and
// artifact store. The store may be nil for in-memory only operation. A
// zero prompt selects [DefaultPromptPattern].
func NewController(
	sup *Supervisor,
	store *artifact.Store,
	prompt pattern.Pattern,
) *Controller {
	if prompt == (pattern.Pattern{}) {
		prompt = DefaultPromptPattern
	}

	return &Controller{
		sup:    sup,
		store:  store,
		prompt: prompt,
	}
}

// Start spawns a new session and returns immediately once the child is
// running.
//
// It fails with [ErrSessionAlreadyRunning] while another session is
// active and with [SpawnError] if the child cannot be launched. The
// session deadline starts counting with the spawn.
func (c *Controller) Start(ctx context.Context, cfg Config) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess != nil && !c.sess.terminatedNow() {
		return nil, ErrSessionAlreadyRunning
	}

	sess := &Session{
		ID:       cfg.id(),
		Mode:     cfg.Mode,
		state:    StateStarting,
		done:     make(chan struct{}),
		buffer:   console.NewBuffer(),
		patterns: pattern.NewSet(cfg.Patterns...),
	}

	var logFile *os.File

	if c.store != nil {
		var err error

		logFile, err = c.store.Create(sess.ID)
		if err != nil {
			// Artifact IO errors are non-fatal, the session degrades to
			// the in-memory buffer.
			slog.Warn("Cannot create log artifact",
				slog.String("session", sess.ID),
				slog.Any("error", err))

			logFile = nil
		}
	}

	output, err := c.sup.Start(cfg.Command, cfg.Args, cfg.Env)
	if err != nil {
		if logFile != nil {
			_ = logFile.Close()
		}

		return nil, err
	}

	now := time.Now()
	sess.StartedAt = now
	sess.Deadline = now.Add(cfg.deadline())
	sess.PID = c.sup.PID()

	runCtx, cancel := context.WithDeadline(
		context.WithoutCancel(ctx),
		sess.Deadline,
	)
	sess.cancel = cancel

	var artifactWriter io.Writer
	if logFile != nil {
		artifactWriter = logFile
	}

	streamer := console.NewStreamer(sess.buffer, artifactWriter, now)

	sess.setState(StateRunning)
	c.sess = sess

	go c.watch(runCtx, sess, streamer, output, logFile)

	return sess, nil
}

// Run starts a session and blocks until it terminates.
func (c *Controller) Run(ctx context.Context, cfg Config) (*Result, error) {
	sess, err := c.Start(ctx, cfg)
	if err != nil {
		return nil, err
	}

	select {
	case <-sess.Done():
	case <-ctx.Done():
		sess.cancel()
		<-sess.Done()
	}

	return sess.Result(), nil
}

// watch is the control loop of one session. It consumes the streamer's
// notification channel in emission order, decides the terminal status and
// finalizes the session once the child is reaped.
func (c *Controller) watch(
	ctx context.Context,
	sess *Session,
	streamer *console.Streamer,
	output io.ReadCloser,
	logFile *os.File,
) {
	var group errgroup.Group

	group.Go(func() error {
		return streamer.Run(output)
	})

	var (
		status   Status
		matched  *pattern.Match
		terminal bool
	)

	terminalize := func(st Status) {
		if terminal {
			return
		}

		terminal = true
		status = st

		// Graceful-then-forced termination. The drain loop below keeps
		// consuming lines until the child is gone.
		group.Go(func() error {
			return c.sup.Stop(context.WithoutCancel(ctx))
		})
	}

	lines := streamer.Lines()
	expired := ctx.Done()

	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}

			if terminal || matched != nil || sess.patterns.Len() == 0 {
				continue
			}

			m, ok := sess.patterns.Match(line.Text, line.Index)
			if !ok {
				continue
			}

			matched = &m

			terminalize(StatusSignalMatched)
		case <-expired:
			expired = nil

			st := StatusStoppedByUser
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				st = StatusTimedOut
			}

			terminalize(st)
		}
	}

	// Output ended, but the child is not necessarily gone: it may have
	// closed its output and kept running, or the stream may have failed.
	// Deadline and stop requests stay enforced until the reap is
	// confirmed.
	select {
	case <-c.sup.Reaped():
	case <-ctx.Done():
		if !terminal {
			terminal = true

			status = StatusStoppedByUser
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				status = StatusTimedOut
			}
		}

		_ = c.sup.Stop(context.WithoutCancel(ctx))
		<-c.sup.Reaped()
	}

	_ = output.Close()

	runErr := group.Wait()

	if !terminal {
		status = StatusCrashed
	}

	if logFile != nil {
		_ = logFile.Close()
	}

	result := &Result{
		Status:     status,
		Elapsed:    time.Since(sess.StartedAt),
		Matched:    matched,
		Output:     sess.buffer.Tail(sess.buffer.Len()),
		NoPatterns: sess.patterns.Len() == 0,
	}

	if status == StatusCrashed {
		result.Err = c.sup.WaitErr()
	} else if runErr != nil {
		result.Err = runErr
	}

	sess.finish(result)
	sess.cancel()
}

// Stop ends the active session and blocks until it is terminated.
// Stopping an already-terminated session is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	sess.cancel()

	select {
	case <-sess.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports the number of target processes alive on the host and
// whether the tracked child is among them.
func (c *Controller) Running() (int, bool) {
	return c.sup.Running()
}

// KillAll force-kills every target process on the host, tracked or stray.
func (c *Controller) KillAll() (int, error) {
	return c.sup.KillAll()
}

// Send writes text to the active session's input. Fire-and-forget, no
// waiting.
func (c *Controller) Send(text string) error {
	if c.active() == nil {
		return ErrNotRunning
	}

	return c.sup.Send(text)
}

// WaitForPrompt waits until the configured ready pattern appears, bounded
// by the given timeout and the session deadline.
func (c *Controller) WaitForPrompt(
	ctx context.Context,
	timeout time.Duration,
) (*Result, error) {
	prompt := c.prompt

	return c.RunCommand(ctx, "", &prompt, timeout)
}

// RunCommand sends text to the active session and waits until wait
// matches, the timeout elapses or the session ends, whichever occurs
// first. The per-operation timeout never extends the session deadline.
//
// With empty text nothing is sent. With a nil wait pattern RunCommand
// returns right after the send; the result then has no status. Otherwise
// the result carries all output captured since the send.
func (c *Controller) RunCommand(
	ctx context.Context,
	text string,
	wait *pattern.Pattern,
	timeout time.Duration,
) (*Result, error) {
	sess := c.active()
	if sess == nil {
		return nil, ErrNotRunning
	}

	mark := sess.buffer.Len()
	start := time.Now()

	if text != "" {
		err := c.sup.Send(text)
		if err != nil {
			return nil, err
		}
	}

	if wait == nil {
		output, _ := sess.buffer.Since(mark)

		return &Result{
			Elapsed: time.Since(start),
			Output:  output,
		}, nil
	}

	opCtx, cancel := opContext(ctx, sess.Deadline, timeout)
	defer cancel()

	var captured []console.Line

	finish := func(status Status, matched *pattern.Match) *Result {
		return &Result{
			Status:  status,
			Elapsed: time.Since(start),
			Matched: matched,
			Output:  captured,
		}
	}

	idx := mark

	for {
		lines, wake := sess.buffer.Since(idx)

		for _, line := range lines {
			idx = line.Index + 1
			captured = append(captured, line)

			if wait.Matches(line.Text) {
				m := pattern.Match{
					Pattern: *wait,
					Line:    line.Text,
					Index:   line.Index,
				}

				return finish(StatusSignalMatched, &m), nil
			}
		}

		select {
		case <-wake:
		case <-opCtx.Done():
			return finish(StatusTimedOut, nil), nil
		case <-sess.Done():
			// Lines appended right before termination are still scanned
			// on the next iteration, so check the cursor once more.
			if remaining, _ := sess.buffer.Since(idx); len(remaining) > 0 {
				continue
			}

			status := StatusCrashed
			if res := sess.Result(); res != nil {
				status = res.Status
			}

			return finish(status, nil), nil
		}
	}
}

// Logs returns the last min(n, buffered) lines of the most recent
// session, running or terminated.
func (c *Controller) Logs(n int) []console.Line {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		return nil
	}

	return sess.Logs(n)
}

// Session returns the most recent session, or nil before the first start.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sess
}

func (c *Controller) active() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sess == nil || c.sess.terminatedNow() {
		return nil
	}

	return c.sess
}
