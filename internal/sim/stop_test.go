package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func risingThenFalling(n, peak int) []float64 {
	e2 := make([]float64, n)
	for i := range e2 {
		if i <= peak {
			e2[i] = 1 + float64(i)
		} else {
			e2[i] = 1 + float64(peak) - 0.5*float64(i-peak)
		}
	}
	return e2
}

func TestStopDetectorTooEarly(t *testing.T) {
	var d StopDetector
	e2 := risingThenFalling(99, 40)
	assert.False(t, d.Check(e2, 98))
	assert.False(t, d.Found())
}

func TestStopDetectorStillRising(t *testing.T) {
	var d StopDetector
	e2 := make([]float64, 150)
	for i := range e2 {
		e2[i] = float64(i)
	}
	assert.False(t, d.Check(e2, 149))
}

func TestStopDetectorFalling(t *testing.T) {
	var d StopDetector
	e2 := risingThenFalling(150, 110)
	assert.True(t, d.Check(e2, 149))
	assert.True(t, d.Found())
	d.Reset()
	assert.False(t, d.Found())
}

func TestStopDetectorBelowStart(t *testing.T) {
	var d StopDetector
	e2 := risingThenFalling(150, 110)
	e2[0] = 1e9
	assert.False(t, d.Check(e2, 149))
}

func TestStopDetectorWindowRule(t *testing.T) {
	// Last step falls, but the recent window still outweighs the one before.
	var d StopDetector
	e2 := make([]float64, 150)
	for i := range e2 {
		e2[i] = float64(i)
	}
	e2[149] = 147.5
	assert.False(t, d.Check(e2, 149))
}
