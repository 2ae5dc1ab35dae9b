package export

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FieldToSVG renders u as a grayscale heatmap, one scale×scale square per
// grid point, black at the field minimum and white at its maximum.
func FieldToSVG(u mat.Matrix, scale int) string {
	r, c := u.Dims()
	if r == 0 || c == 0 {
		return ""
	}
	if scale < 1 {
		scale = 1
	}
	lo, hi := mat.Min(u), mat.Max(u)
	span := hi - lo
	if span == 0 {
		span = 1
	}

	width, height := c*scale, r*scale
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">
`, width, height, width, height))

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := int(255 * (u.At(i, j) - lo) / span)
			sb.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x"/>
`, j*scale, i*scale, scale, scale, g, g, g))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws values against their index as a polyline.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := floats.Min(values), floats.Max(values)
	rangeX := float64(len(values) - 1)
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
