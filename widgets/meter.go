package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/viterin/vek/vek32"

	"go-gridsynth/theme"
)

// Peak returns the largest absolute sample in buf. tmp is scratch space and
// is grown when too small; the possibly grown slice is returned.
func Peak(buf, tmp []float32) (float32, []float32) {
	if len(buf) == 0 {
		return 0, tmp
	}
	if cap(tmp) < len(buf) {
		tmp = make([]float32, len(buf))
	}
	o := tmp[:len(buf)]
	copy(o, buf)
	vek32.Abs_Inplace(o)
	return vek32.Max(o), tmp
}

// Decibels converts a linear peak to dBFS, floored at -96.
func Decibels(peak float32) float64 {
	if peak <= 0 {
		return -96
	}
	return max(20*math.Log10(float64(peak)), -96)
}

// RenderMeter draws a horizontal level bar of width cells for a linear peak.
// The bar spans -48 dBFS to 0 dBFS.
func RenderMeter(th *theme.Theme, label string, peak float32, width int) string {
	db := Decibels(peak)
	filled := int(math.Round((db + 48) / 48 * float64(width)))
	filled = min(max(filled, 0), width)

	color := th.Accent()
	if peak >= 1 {
		color = th.Warning()
	}
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(th.Symbols.MeterFull), filled))
	rest := lipgloss.NewStyle().Foreground(th.Muted()).Render(strings.Repeat(string(th.Symbols.MeterEmpty), width-filled))
	return fmt.Sprintf("%s %s%s %6.1f dB", label, bar, rest, db)
}
