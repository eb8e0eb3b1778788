package render

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_Wraps(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Nil(t, lb.GetRecent(0))

	for i, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Time: time.Unix(int64(i), 0), Message: msg})
	}

	assert.Equal(t, 3, lb.Len())
	recent := lb.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "c", recent[1].Message)
	assert.Equal(t, "b", recent[2].Message)

	assert.Len(t, lb.GetRecent(2), 2)

	lb.Clear()
	assert.Equal(t, 0, lb.Len())
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(NewLogBufferHandler(lb, level))

	logger.Debug("hidden")
	logger.Info("started", "frames", 3)
	logger.With("backend", "terminal").WithGroup("loop").Warn("slow", "fps", 12.5)

	recent := lb.GetRecent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "slow backend=terminal loop.fps=12.5", recent[0].Message)
	assert.Equal(t, "started frames=3", recent[1].Message)

	level.Set(slog.LevelDebug)
	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestFormatLogEntry(t *testing.T) {
	ts := time.Date(2024, 1, 1, 13, 14, 15, 0, time.UTC)
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "13:14:15 [DBG] hi"},
		{slog.LevelInfo, "13:14:15 [INF] hi"},
		{slog.LevelWarn, "13:14:15 [WRN] hi"},
		{slog.LevelError, "13:14:15 [ERR] hi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatLogEntry(LogEntry{Time: ts, Level: tt.level, Message: "hi"}))
	}
}

func TestPulse(t *testing.T) {
	period := time.Second
	assert.InDelta(t, 0.0, Pulse(0, period), 1e-9)
	assert.InDelta(t, 1.0, Pulse(500*time.Millisecond, period), 1e-9)
	assert.InDelta(t, 0.5, Pulse(250*time.Millisecond, period), 1e-9)
	assert.InDelta(t, Pulse(100*time.Millisecond, period), Pulse(1100*time.Millisecond, period), 1e-9)
	assert.Equal(t, 0.0, Pulse(time.Second, 0))
}

func TestMeter(t *testing.T) {
	cells := Meter(0.5, 10, ColdColor, HotColor)
	require.Len(t, cells, 10)

	filled := 0
	for _, c := range cells {
		if c.Rune == '█' {
			filled++
		}
	}
	assert.Equal(t, 5, filled)
	assert.Less(t, cells[0].Color.DistanceRgb(ColdColor), 0.01)

	assert.Nil(t, Meter(1, 0, ColdColor, HotColor))
	for _, c := range Meter(2, 4, ColdColor, HotColor) {
		assert.Equal(t, '█', c.Rune, "fill is clamped to 1")
	}
}

func TestFPSColor(t *testing.T) {
	assert.Less(t, FPSColor(60, 60).DistanceRgb(GoodColor), 0.01)
	assert.Less(t, FPSColor(120, 60).DistanceRgb(GoodColor), 0.01, "ratio is clamped")
	assert.Less(t, FPSColor(0, 60).DistanceRgb(BadColor), 0.01)
	assert.Equal(t, BadColor, FPSColor(30, 0))
}
