// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package pattern_test

import (
	"testing"

	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := pattern.Parse(pattern.ClassSuccess, "BOOT_OK")
	require.NoError(t, err)
	assert.True(t, p.Matches("xx BOOT_OK xx"))

	p, err = pattern.Parse(pattern.ClassFailure, "re:^panic: .*$")
	require.NoError(t, err)
	assert.True(t, p.Matches("panic: oops"))
	assert.False(t, p.Matches("no panic: here"))

	_, err = pattern.Parse(pattern.ClassFailure, "re:(")
	require.Error(t, err)
}

func TestParseClass(t *testing.T) {
	for _, name := range []string{"success", "failure", "checkpoint"} {
		class, err := pattern.ParseClass(name)
		require.NoError(t, err)
		assert.Equal(t, pattern.Class(name), class)
	}

	_, err := pattern.ParseClass("warning")
	require.ErrorIs(t, err, pattern.ErrClassUnknown)
}
