// SPDX-FileCopyrightText: 2026 The bootwatch authors
//
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bootwatch/bootwatch/internal/artifact"
	"github.com/bootwatch/bootwatch/internal/exitcode"
	"github.com/bootwatch/bootwatch/internal/pattern"
	"github.com/bootwatch/bootwatch/internal/qemu"
)

func testIO() (IO, *bytes.Buffer) {
	var stdout bytes.Buffer

	return IO{
		Stdin:  bytes.NewReader(nil),
		Stdout: &stdout,
		Stderr: &bytes.Buffer{},
	}, &stdout
}

func TestParsePatterns(t *testing.T) {
	patterns, err := parsePatterns(pattern.ClassSuccess, []string{
		"BOOT_OK",
		"re:^login:",
	})
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	assert.True(t, patterns[0].Matches("xx BOOT_OK"))
	assert.True(t, patterns[1].Matches("login: "))
	assert.False(t, patterns[1].Matches("xx login:"))

	_, err = parsePatterns(pattern.ClassFailure, []string{"re:("})
	require.Error(t, err)
}

func TestSessionPatterns(t *testing.T) {
	v := viper.New()
	v.Set(flagSuccess, []string{"BOOT_OK"})
	v.Set(flagFault, []string{"DOUBLE FAULT"})
	v.Set(flagCheckpoint, []string{"# "})

	patterns, err := sessionPatterns(v)
	require.NoError(t, err)
	require.Len(t, patterns, 3)

	assert.Equal(t, pattern.ClassSuccess, patterns[0].Class())
	assert.Equal(t, pattern.ClassFailure, patterns[1].Class())
	assert.Equal(t, pattern.ClassCheckpoint, patterns[2].Class())
}

func TestNewInvocationSpec(t *testing.T) {
	v := viper.New()
	v.Set(flagKernel, "/boot/vmlinuz-test")

	spec, err := newInvocationSpec(v, "recovery")
	require.NoError(t, err)

	assert.Equal(t, "/boot/vmlinuz-test", spec.Kernel)
	assert.Equal(t, qemu.BootModeRecovery, spec.Mode)
	assert.NotEmpty(t, spec.Executable)
}

func TestNewInvocationSpecMissingKernel(t *testing.T) {
	v := viper.New()

	_, err := newInvocationSpec(v, "")
	require.ErrorIs(t, err, qemu.ErrKernelMissing)
}

func TestNewSessionConfig(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir())
	require.NoError(t, err)

	spec := &qemu.InvocationSpec{
		Executable: "qemu-system-x86_64",
		Kernel:     "/boot/vmlinuz-test",
		Mode:       qemu.BootModeNormal,
	}

	cfg, err := newSessionConfig(spec, store, 0, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ID)
	assert.Equal(t, "qemu-system-x86_64", cfg.Command)
	assert.Contains(t, cfg.Args, "-kernel")
	assert.Contains(t, cfg.Env,
		qemu.EnvGuestLog+"="+store.Path(cfg.ID))
}

func TestAuditArtifactMissing(t *testing.T) {
	code, err := auditArtifact(
		filepath.Join(t.TempDir(), "absent.log"), nil, nil)
	require.NoError(t, err)

	assert.Equal(t, exitcode.CodeNoArtifact, code)
}

func TestRunVersion(t *testing.T) {
	io, stdout := testIO()

	rc := Run(context.Background(), []string{"version"}, io)

	assert.Equal(t, 0, rc)
	assert.Contains(t, stdout.String(), "bootwatch")
}

func TestRunCollect(t *testing.T) {
	dir := t.TempDir()

	store, err := artifact.NewStore(dir)
	require.NoError(t, err)

	for _, id := range []string{"one", "two"} {
		file, err := store.Create(id)
		require.NoError(t, err)

		_, err = file.WriteString("[   0.000001] hello\n")
		require.NoError(t, err)
		require.NoError(t, file.Close())
	}

	output := filepath.Join(t.TempDir(), "bundle.cpio")
	io, stdout := testIO()

	rc := Run(context.Background(), []string{
		"collect", "--logs-dir", dir, "-o", output,
	}, io)

	assert.Equal(t, 0, rc)
	assert.FileExists(t, output)
	assert.Contains(t, stdout.String(), "archived 2 artifacts")
}

func TestRunCollectEmpty(t *testing.T) {
	io, _ := testIO()

	rc := Run(context.Background(), []string{
		"collect", "--logs-dir", t.TempDir(),
	}, io)

	assert.Equal(t, 1, rc)
}
