package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/valerio/go-frameloop/frameloop/backend"
	"github.com/valerio/go-frameloop/frameloop/backend/terminal/render"
	"github.com/valerio/go-frameloop/frameloop/input"
	"github.com/valerio/go-frameloop/frameloop/input/action"
	"github.com/valerio/go-frameloop/frameloop/input/event"
	"github.com/valerio/go-frameloop/frameloop/timing"
)

const (
	labelWidth  = 13
	meterWidth  = 40
	pulsePeriod = time.Second
	hudHeight   = 13
	logLines    = 100
)

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	running   bool
	logBuffer *render.LogBuffer
	logLevel  *slog.LevelVar
	config    backend.Config
	targetFPS float64
	signals   chan os.Signal

	eventQueue []backend.InputEvent // Collect events to return
	lastFrame  backend.Frame
}

// New creates a new terminal backend drawing to the real terminal
func New() *Backend {
	return &Backend{
		newScreen: tcell.NewScreen,
		logLevel:  new(slog.LevelVar),
		targetFPS: timing.DefaultFPS,
	}
}

// NewWithScreen creates a backend drawing to screen, e.g. a simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.newScreen = func() (tcell.Screen, error) { return screen, nil }
	return b
}

// SetTargetFPS sets the rate the fps gauge is graded against
func (t *Backend) SetTargetFPS(fps float64) {
	if fps > 0 {
		t.targetFPS = fps
	}
}

// Init initializes the terminal backend
func (t *Backend) Init(config backend.Config) error {
	t.config = config
	t.eventQueue = make([]backend.InputEvent, 0)
	t.logLevel.Set(config.LogLevel)

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	t.screen = screen
	t.running = true

	// Capture logs so they render inside the HUD
	t.logBuffer = render.NewLogBuffer(logLines)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	slog.Info("Terminal backend initialized", "title", config.Title)
	if config.ShowDebug {
		slog.Debug("Debug mode enabled")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	// Set up signal handling for graceful shutdown
	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame backend.Frame) ([]backend.InputEvent, error) {
	t.lastFrame = frame

	select {
	case sig := <-t.signals:
		slog.Info("Received signal to stop", "signal", sig)
		t.running = false
		t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: action.LoopQuit, Type: event.Press})
	default:
	}

	// Poll for input events synchronously
	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	events := t.eventQueue
	t.eventQueue = nil

	for _, evt := range events {
		slog.Debug("UI event", "action", action.GetInfo(evt.Action).Description, "type", evt.Type)
		t.HandleAction(evt.Action)
	}

	if !t.running {
		return events, nil
	}

	t.render(frame)
	t.screen.Show()

	return events, nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
		t.screen = nil
	}
	return nil
}

// LogLevel returns the level the log pane currently shows
func (t *Backend) LogLevel() slog.Level {
	return t.logLevel.Level()
}

// HandleAction processes backend-specific actions
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.Snapshot:
		slog.Info("Snapshot",
			"time_ms", t.lastFrame.Data.TimeMillis(),
			"delta_ms", t.lastFrame.Data.DeltaMillis(),
			"count", t.lastFrame.Data.Count,
			"fps", t.lastFrame.Data.FPS)
	case action.LogLevelIncrease:
		t.changeLogLevel(1)
	case action.LogLevelDecrease:
		t.changeLogLevel(-1)
	case action.LoopQuit:
		t.running = false
	}
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey) {
	act, ok := keyMapping[ev.Key()]
	if !ok && ev.Key() == tcell.KeyRune {
		act, ok = runeMapping[ev.Rune()]
	}
	if !ok {
		return
	}
	t.eventQueue = append(t.eventQueue, backend.InputEvent{Action: act, Type: event.Press})
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEscape: "Escape",
	tcell.KeyF9:     "F9",
	tcell.KeyF11:    "F11",
	tcell.KeyF12:    "F12",
}

// tcellRuneNameMap converts runes to key names used in default mappings
var tcellRuneNameMap = map[rune]string{
	' ': "Space",
	'p': "p",
	'r': "r",
	'q': "q",
	's': "s",
	'+': "+",
	'=': "=",
	'-': "-",
	'_': "_",
	'[': "[",
	']': "]",
}

// buildKeyMapping creates the key mapping from default mappings
func buildKeyMapping() map[tcell.Key]action.Action {
	mapping := make(map[tcell.Key]action.Action)

	for key, keyName := range tcellKeyNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[key] = act
		}
	}

	mapping[tcell.KeyCtrlC] = action.LoopQuit

	return mapping
}

// buildRuneMapping creates the rune mapping from default mappings
func buildRuneMapping() map[rune]action.Action {
	mapping := make(map[rune]action.Action)

	for r, keyName := range tcellRuneNameMap {
		if act, ok := input.GetDefaultMapping(keyName); ok {
			mapping[r] = act
		}
	}

	return mapping
}

// keyMapping maps tcell keys to actions
var keyMapping = buildKeyMapping()

// runeMapping maps runes to actions
var runeMapping = buildRuneMapping()

func (t *Backend) changeLogLevel(direction int) {
	oldLevel := t.logLevel.Level()
	newLevel := oldLevel
	switch direction {
	case -1:
		switch oldLevel {
		case slog.LevelDebug:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelError
		}
	case 1:
		switch oldLevel {
		case slog.LevelError:
			newLevel = slog.LevelWarn
		case slog.LevelWarn:
			newLevel = slog.LevelInfo
		case slog.LevelInfo:
			newLevel = slog.LevelDebug
		}
	}

	if newLevel != oldLevel {
		t.logLevel.Set(newLevel)
		slog.Warn("Log level changed", "from", oldLevel, "to", newLevel)
	}
}

func (t *Backend) render(frame backend.Frame) {
	t.screen.Clear()
	termWidth, termHeight := t.screen.Size()

	plain := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	label := tcell.StyleDefault.Foreground(tcell.ColorGray)

	title := "frameloop"
	if t.config.Title != "" {
		title += " - " + t.config.Title
	}
	t.drawText(1, 0, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true), title)

	state, stateColor := "stopped", render.BadColor
	if frame.Animating {
		state, stateColor = "running", render.GoodColor
	}

	data := frame.Data
	rows := []struct {
		name  string
		value string
		style tcell.Style
	}{
		{"state", state, plain.Foreground(toTcell(stateColor))},
		{"time", fmt.Sprintf("%.1f ms", data.TimeMillis()), plain},
		{"delta", fmt.Sprintf("%.2f ms", data.DeltaMillis()), plain},
		{"count", fmt.Sprintf("%d", data.Count), plain},
		{"fps", fmt.Sprintf("%.2f", data.FPS), plain.Foreground(toTcell(render.FPSColor(data.FPS, t.targetFPS)))},
		{"min refresh", frame.MinRefresh.String(), plain},
		{"smoothing", fmt.Sprintf("%.2f", frame.FPSSmoothing), plain},
	}
	for i, row := range rows {
		t.drawText(1, i+2, label, row.name)
		t.drawText(1+labelWidth, i+2, row.style, row.value)
	}

	y := len(rows) + 2
	t.drawText(1, y, label, "pulse")
	t.drawMeter(1+labelWidth, y, render.Meter(render.Pulse(data.Time, pulsePeriod), meterWidth, render.ColdColor, render.HotColor))
	y++
	t.drawText(1, y, label, "fps gauge")
	t.drawMeter(1+labelWidth, y, render.Meter(data.FPS/t.targetFPS, meterWidth, render.BadColor, render.GoodColor))

	t.drawText(1, hudHeight-1, label, "space start/stop  r restart  +/- min refresh  [/] smoothing  s snapshot  q quit")

	t.drawLogs(1, hudHeight+1, termWidth-2, termHeight)
}

func (t *Backend) drawMeter(x, y int, cells []render.Cell) {
	for i, cell := range cells {
		style := tcell.StyleDefault.Foreground(toTcell(cell.Color))
		t.screen.SetContent(x+i, y, cell.Rune, nil, style)
	}
}

func (t *Backend) drawLogs(x, y, width, termHeight int) {
	if t.logBuffer == nil || y >= termHeight {
		return
	}

	t.drawText(x, y, tcell.StyleDefault.Foreground(tcell.ColorGray), "logs")
	available := termHeight - y - 1
	entries := t.logBuffer.GetRecent(available)

	// oldest at the top
	for i := len(entries) - 1; i >= 0; i-- {
		line := truncate(render.FormatLogEntry(entries[i]), width)
		style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
		switch {
		case entries[i].Level >= slog.LevelError:
			style = style.Foreground(tcell.ColorRed)
		case entries[i].Level >= slog.LevelWarn:
			style = style.Foreground(tcell.ColorYellow)
		case entries[i].Level < slog.LevelInfo:
			style = style.Foreground(tcell.ColorGray)
		}
		t.drawText(x, y+len(entries)-i, style, line)
	}
}

// truncate cuts text to at most width runes. A non-positive width keeps it whole.
func truncate(text string, width int) string {
	if width <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width])
}

func (t *Backend) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
