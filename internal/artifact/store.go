// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package artifact manages the persisted per-session console logs.
//
// Each session owns exactly one append-only log file under the store's
// directory. Logs are retained after the session ends so external tooling
// can collect them, either directly or bundled via [Store.Export].
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrUnknownSession is returned for session IDs without a log file.
var ErrUnknownSession = errors.New("no log for session")

const logSuffix = ".log"

// Store manages the log artifacts below a single directory.
type Store struct {
	dir string
}

// NewStore creates a [Store] rooted at dir. The directory is created if it
// does not exist.
func NewStore(dir string) (*Store, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the log file path for the given session ID.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+logSuffix)
}

// Create opens a new append-only log file for the given session ID.
//
// The caller owns the file handle and must close it once the session
// terminates. An existing log for the same ID is appended to, never
// truncated.
func (s *Store) Create(id string) (*os.File, error) {
	file, err := os.OpenFile(
		s.Path(id),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND,
		0o644,
	)
	if err != nil {
		return nil, fmt.Errorf("create log artifact: %w", err)
	}

	return file, nil
}

// List returns the session IDs with a log file, sorted lexically.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read logs dir: %w", err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, logSuffix) {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, logSuffix))
	}

	sort.Strings(ids)

	return ids, nil
}
