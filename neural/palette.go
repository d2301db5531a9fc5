package neural

import "math"

// SpeciesColor represents an RGB color for species visualization.
type SpeciesColor struct {
	R, G, B uint8
}

var speciesColors = generateDistinctColors(64)

// ColorForSpecies returns a stable color for a species id.
func ColorForSpecies(id int) SpeciesColor {
	if id < 0 {
		id = -id
	}
	return speciesColors[id%len(speciesColors)]
}

// generateDistinctColors creates visually distinct colors using golden angle.
func generateDistinctColors(count int) []SpeciesColor {
	colors := make([]SpeciesColor, count)
	goldenAngle := 137.508 // Golden angle in degrees

	for i := 0; i < count; i++ {
		hue := math.Mod(float64(i)*goldenAngle+40, 360.0)

		// Saturated and bright so birds stay visible against the sky
		r, g, b := hsvToRGB(hue, 0.75, 0.95)
		colors[i] = SpeciesColor{R: r, G: g, B: b}
	}
	return colors
}

// hsvToRGB converts HSV to RGB.
func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

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

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}
