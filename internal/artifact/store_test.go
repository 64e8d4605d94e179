// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package artifact_test

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/cavaliergopher/cpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAppends(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	file, err := store.Create("session-1")
	require.NoError(t, err)

	_, err = file.WriteString("first\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	// Reopening the same ID must append, not truncate.
	file, err = store.Create("session-1")
	require.NoError(t, err)

	_, err = file.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, file.Close())

	content, err := os.ReadFile(store.Path("session-1"))
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(content))
}

func TestStoreList(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	ids, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, ids)

	for _, id := range []string{"b", "a", "c"} {
		file, err := store.Create(id)
		require.NoError(t, err)
		require.NoError(t, file.Close())
	}

	ids, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestStoreExport(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	logs := map[string]string{
		"one": "boot ok\n",
		"two": "boot failed\n",
	}

	for id, content := range logs {
		file, err := store.Create(id)
		require.NoError(t, err)

		_, err = file.WriteString(content)
		require.NoError(t, err)
		require.NoError(t, file.Close())
	}

	var archive bytes.Buffer

	err = store.Export(&archive)
	require.NoError(t, err)

	reader := cpio.NewReader(&archive)
	found := map[string]string{}

	for {
		hdr, err := reader.Next()
		if err == io.EOF {
			break
		}

		require.NoError(t, err)

		content, err := io.ReadAll(reader)
		require.NoError(t, err)

		found[hdr.Name] = string(content)
	}

	assert.Equal(t, map[string]string{
		"one.log": "boot ok\n",
		"two.log": "boot failed\n",
	}, found)
}

func TestStoreExportUnknownSession(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	var archive bytes.Buffer

	err = store.Export(&archive, "missing")
	require.ErrorIs(t, err, artifact.ErrUnknownSession)
}
