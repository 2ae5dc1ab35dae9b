package export

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFieldToSVG(t *testing.T) {
	u := mat.NewDense(2, 2, []float64{0.1, 0.9, 0.5, 0.9})
	svg := FieldToSVG(u, 3)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("not an svg document")
	}
	if got := strings.Count(svg, "<rect "); got != 4 {
		t.Errorf("expected 4 cells, got %d", got)
	}
	if !strings.Contains(svg, `fill="#000000"`) || !strings.Contains(svg, `fill="#ffffff"`) {
		t.Error("expected the extremes to map to black and white")
	}
	if !strings.Contains(svg, `width="6"`) {
		t.Error("expected scaled width")
	}
}

func TestSeriesToSVG(t *testing.T) {
	if SeriesToSVG([]float64{1}, 100, 50, "#fff") != "" {
		t.Error("single point should render nothing")
	}
	svg := SeriesToSVG([]float64{1, 2, 3}, 100, 50, "#00ff00")
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
	if !strings.Contains(svg, `stroke="#00ff00"`) {
		t.Error("missing stroke color")
	}
}
