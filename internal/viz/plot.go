package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/spinodal/internal/dynamo"
)

// PlotHistory draws one asciigraph chart per named column of h. Long
// histories are thinned to width points.
func PlotHistory(h *dynamo.History, columns []string, width, height int) (string, error) {
	if h.Len() < 2 {
		return "", fmt.Errorf("history has %d records, need at least 2", h.Len())
	}
	var b strings.Builder
	for _, name := range columns {
		col, ok := h.Column(name)
		if !ok {
			return "", fmt.Errorf("unknown column %q", name)
		}
		pts := thin(finite(col), width)
		if len(pts) < 2 {
			continue
		}
		b.WriteString(asciigraph.Plot(pts,
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption(fmt.Sprintf("%s over %d steps", name, h.Len()))))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func finite(col []float64) []float64 {
	out := make([]float64, 0, len(col))
	for _, v := range col {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// thin keeps at most n evenly spaced values, always including the last.
func thin(col []float64, n int) []float64 {
	if n < 2 || len(col) <= n {
		return col
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = col[i*(len(col)-1)/(n-1)]
	}
	return out
}
