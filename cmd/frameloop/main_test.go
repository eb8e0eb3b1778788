package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-frameloop/frameloop/config"
)

func runApp(t *testing.T, args ...string) error {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	return newApp().Run(append([]string{"frameloop"}, args...))
}

func TestHeadlessRun(t *testing.T) {
	dir := t.TempDir()

	err := runApp(t, "--backend", "headless", "--frames", "20",
		"--snapshot-interval", "10", "--snapshot-dir", dir, "--log-level", "warn")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "frameloop_frame_10.txt"))
	assert.FileExists(t, filepath.Join(dir, "frameloop_frame_20.txt"))
}

func TestHeadlessRequiresFrames(t *testing.T) {
	err := runApp(t, "--backend", "headless")
	assert.ErrorIs(t, err, config.ErrInvalidFrames)
}

func TestInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown backend", []string{"--backend", "sdl"}, config.ErrUnknownBackend},
		{"smoothing out of range", []string{"--backend", "headless", "--frames", "1", "--smoothing", "1.5"}, config.ErrInvalidSmooth},
		{"mqtt without broker", []string{"--backend", "mqtt"}, config.ErrMissingBroker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, runApp(t, tt.args...), tt.want)
		})
	}
}

func TestConfigFileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frameloop.yaml")
	doc := "backend: headless\nframes: 1000\nlog_level: error\nheadless:\n  snapshot_interval: 5\n  snapshot_dir: " + dir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	require.NoError(t, runApp(t, "--config", path, "--frames", "5"))

	assert.FileExists(t, filepath.Join(dir, "frameloop_frame_5.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "frameloop_frame_10.txt"))
}

func TestEnvOverridesFileAndFlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frameloop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: terminal\nframes: 3\nlog_level: error\n"), 0o644))

	t.Setenv("FRAMELOOP_BACKEND", "headless")
	t.Setenv("FRAMELOOP_SNAPSHOT_INTERVAL", "1")
	t.Setenv("FRAMELOOP_SNAPSHOT_DIR", dir)

	require.NoError(t, runApp(t, "--config", path, "--snapshot-interval", "3"))

	assert.FileExists(t, filepath.Join(dir, "frameloop_frame_3.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "frameloop_frame_1.txt"))
}
