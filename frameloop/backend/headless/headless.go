package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/input/action"
	"github.com/valerio/go-frameloop/frameloop/input/event"
)

// Backend implements the Backend interface for automated runs and batch processing
type Backend struct {
	config         backend.Config
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
}

// SnapshotConfig holds configuration for data snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	Name      string // Prefix for snapshot filenames
}

func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	return &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
}

func (h *Backend) Init(config backend.Config) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless backend requires a positive frame count, got %d", h.maxFrames)
	}
	h.config = config

	// Set up logging for headless mode
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.LogLevel,
	})
	slog.SetDefault(slog.New(handler))

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	return nil
}

// Update counts a frame and handles snapshots
func (h *Backend) Update(frame backend.Frame) ([]backend.InputEvent, error) {
	var events []backend.InputEvent

	h.frameCount++

	// Save snapshot if needed
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	// Log progress periodically
	if h.frameCount%10 == 0 {
		slog.Info("Frame progress",
			"completed", h.frameCount,
			"total", h.maxFrames,
			"count", frame.Data.Count,
			"fps", frame.Data.FPS)
	}

	if h.frameCount >= h.maxFrames {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.maxFrames, "snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.maxFrames)
		}

		// Signal completion via quit event
		events = append(events, backend.InputEvent{Action: action.LoopQuit, Type: event.Press})
	}

	return events, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// FrameCount returns the number of updates seen so far.
func (h *Backend) FrameCount() int {
	return h.frameCount
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, name string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "frameloop-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	config.Name = filepath.Base(name)
	config.Name = strings.TrimSuffix(config.Name, filepath.Ext(config.Name))
	if config.Name == "" || config.Name == "." {
		config.Name = "frameloop"
	}

	return config, nil
}

// saveSnapshot writes the frame's loop data as a small text file
func (h *Backend) saveSnapshot(frame backend.Frame) {
	path := filepath.Join(h.snapshotConfig.Directory, fmt.Sprintf("%s_frame_%d.txt", h.snapshotConfig.Name, h.frameCount))

	if err := writeSnapshot(path, frame); err != nil {
		slog.Error("Failed to save snapshot", "frame", h.frameCount, "error", err)
		return
	}
	slog.Debug("Saved snapshot", "frame", h.frameCount, "path", path)
}

func writeSnapshot(path string, frame backend.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# Frame loop snapshot\n")
	fmt.Fprintf(file, "time_ms=%.3f\n", frame.Data.TimeMillis())
	fmt.Fprintf(file, "delta_ms=%.3f\n", frame.Data.DeltaMillis())
	fmt.Fprintf(file, "count=%d\n", frame.Data.Count)
	fmt.Fprintf(file, "fps=%.3f\n", frame.Data.FPS)
	fmt.Fprintf(file, "animating=%t\n", frame.Animating)
	fmt.Fprintf(file, "min_refresh_ms=%d\n", frame.MinRefresh.Milliseconds())
	_, err = fmt.Fprintf(file, "fps_smoothing=%.3f\n", frame.FPSSmoothing)
	return err
}
