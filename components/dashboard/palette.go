package dashboard

import (
	"fmt"
	"math"
)

var planPalette = []string{"#0d6efd", "#198754", "#ffc107", "#dc3545", "#6610f2"}

const goldenAngle = 137.50776405003785

// PaletteColors returns n slice colours. The first five come from the fixed
// plan palette; the rest are generated by rotating the hue by the golden angle,
// so colours do not repeat within a chart.
func PaletteColors(n int) []string {
	if n <= 0 {
		return nil
	}
	colors := make([]string, n)
	for i := range colors {
		if i < len(planPalette) {
			colors[i] = planPalette[i]
			continue
		}
		step := float64(i - len(planPalette))
		hue := math.Mod(20+step*goldenAngle, 360)
		colors[i] = hslToHex(hue, 0.65, 0.5)
	}
	return colors
}

func hslToHex(h, s, l float64) string {
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	to8 := func(v float64) int { return int(math.Round((v + m) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to8(r), to8(g), to8(b))
}
