// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact

import (
	"fmt"
	"io"
	"os"

	"github.com/cavaliergopher/cpio"
)

// Export writes the logs of the given session IDs into a cpio archive for
// CI collection. With no IDs given, all stored logs are exported.
func (s *Store) Export(w io.Writer, ids ...string) error {
	if len(ids) == 0 {
		var err error

		ids, err = s.List()
		if err != nil {
			return err
		}
	}

	writer := cpio.NewWriter(w)

	for _, id := range ids {
		err := s.exportOne(writer, id)
		if err != nil {
			return err
		}
	}

	err := writer.Close()
	if err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

func (s *Store) exportOne(writer *cpio.Writer, id string) error {
	file, err := os.Open(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrUnknownSession, id)
		}

		return fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}

	header := &cpio.Header{
		Name: id + logSuffix,
		Mode: cpio.TypeReg | 0o644,
		Size: info.Size(),
	}

	err = writer.WriteHeader(header)
	if err != nil {
		return fmt.Errorf("write header %s: %w", id, err)
	}

	_, err = io.Copy(writer, file)
	if err != nil {
		return fmt.Errorf("write log %s: %w", id, err)
	}

	return nil
}
