package viz

import (
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas is Width*2 by Height*4
// sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawField lights every sub-pixel whose nearest grid value lies below
// threshold, i.e. the phase that nucleates out of the matrix.
func (c *Canvas) DrawField(u mat.Matrix, threshold float64) {
	r, cols := u.Dims()
	pw, ph := c.Width*2, c.Height*4
	for y := 0; y < ph; y++ {
		i := y * r / ph
		for x := 0; x < pw; x++ {
			if u.At(i, x*cols/pw) < threshold {
				c.Set(x, y)
			}
		}
	}
}

// DrawProfile plots values left to right, scaled to the canvas height.
func (c *Canvas) DrawProfile(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	if span == 0 {
		span = 1
	}
	pw, ph := c.Width*2, c.Height*4
	px := func(k int) int {
		if len(values) == 1 {
			return 0
		}
		return k * (pw - 1) / (len(values) - 1)
	}
	py := func(v float64) int { return int(float64(ph-1) * (hi - v) / span) }

	x0, y0 := px(0), py(values[0])
	c.Set(x0, y0)
	for k := 1; k < len(values); k++ {
		x1, y1 := px(k), py(values[k])
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

// Filled returns the number of lit sub-pixels.
func (c *Canvas) Filled() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for b := r - 0x2800; b != 0; b &= b - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
