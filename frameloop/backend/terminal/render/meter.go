package render

import (
	"math"
	"time"

	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
)

// Palette endpoints for the HUD meters.
var (
	ColdColor, _ = colorful.Hex("#1e3a8a")
	HotColor, _  = colorful.Hex("#f97316")
	GoodColor, _ = colorful.Hex("#22c55e")
	BadColor, _  = colorful.Hex("#ef4444")
)

// Cell is a single character cell of a meter
type Cell struct {
	Rune  rune
	Color colorful.Color
}

// Pulse maps elapsed time onto a 0..1..0 wave of the given period, eased with
// an in-out quadratic so the meter lingers at both ends.
func Pulse(elapsed, period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	phase := math.Mod(float64(elapsed), float64(period)) / float64(period)
	t := 1 - math.Abs(2*phase-1)
	return ease.InOutQuad(t)
}

// Meter renders fill (0..1) as width cells. Filled cells blend from `from` to
// `to` in HCL space; the rest are drawn as a faint track.
func Meter(fill float64, width int, from, to colorful.Color) []Cell {
	if width <= 0 {
		return nil
	}
	fill = math.Max(0, math.Min(1, fill))
	filled := int(math.Round(fill * float64(width)))

	cells := make([]Cell, width)
	for i := range cells {
		if i < filled {
			t := 0.0
			if width > 1 {
				t = float64(i) / float64(width-1)
			}
			cells[i] = Cell{Rune: '█', Color: from.BlendHcl(to, t).Clamped()}
		} else {
			cells[i] = Cell{Rune: '░', Color: from}
		}
	}
	return cells
}

// FPSColor grades fps against target: green at or above it, red at zero.
func FPSColor(fps, target float64) colorful.Color {
	if target <= 0 || math.IsNaN(fps) {
		return BadColor
	}
	ratio := math.Max(0, math.Min(1, fps/target))
	return BadColor.BlendHcl(GoodColor, ease.OutCubic(ratio)).Clamped()
}
