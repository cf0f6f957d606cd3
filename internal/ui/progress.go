package ui

import "strings"

// ProgressBar renders a fixed-width percentage bar.
type ProgressBar struct {
	width int
}

// NewProgressBar returns a bar that renders at the given character
// width.
func NewProgressBar(width int) *ProgressBar {
	if width <= 0 {
		width = 40
	}
	return &ProgressBar{width: width}
}

// Render draws the bar at the given fraction, clamped to [0, 1].
func (p *ProgressBar) Render(fraction float64) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(p.width))
	bar := ProgressFullStyle.Render(strings.Repeat("█", filled)) +
		ProgressEmptyStyle.Render(strings.Repeat("░", p.width-filled))
	return bar
}
