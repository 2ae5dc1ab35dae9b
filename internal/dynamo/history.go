package dynamo

import "math"

// StopReason tags why a run stopped advancing.
type StopReason int

const (
	StopNone StopReason = iota
	StopEnergyPlateau
	StopTimeLimit
	StopStepLimit
)

func (r StopReason) String() string {
	switch r {
	case StopEnergyPlateau:
		return "energy-plateau-detected"
	case StopTimeLimit:
		return "time-limit"
	case StopStepLimit:
		return "step-limit"
	default:
		return "none"
	}
}

// Record is one row of the diagnostics history.
type Record struct {
	Step    int
	E       float64
	E2      float64
	SA      float64
	DomTime float64
	Ra      float64
	L2      float64
	PS      float64
	Delt    float64
}

// Valid reports whether all scalar diagnostics are finite.
func (r Record) Valid() bool {
	for _, v := range [...]float64{r.E, r.E2, r.SA, r.DomTime, r.Ra, r.L2, r.PS, r.Delt} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// History is a preallocated, columnar time series. Row i always holds step i.
type History struct {
	n       int
	steps   []int
	e       []float64
	e2      []float64
	sa      []float64
	domtime []float64
	ra      []float64
	l2      []float64
	ps      []float64
	delt    []float64
}

// NewHistory allocates room for capacity records.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		steps:   make([]int, capacity),
		e:       make([]float64, capacity),
		e2:      make([]float64, capacity),
		sa:      make([]float64, capacity),
		domtime: make([]float64, capacity),
		ra:      make([]float64, capacity),
		l2:      make([]float64, capacity),
		ps:      make([]float64, capacity),
		delt:    make([]float64, capacity),
	}
}

// Len returns the number of records.
func (h *History) Len() int { return h.n }

// Cap returns the number of records that fit without reallocation.
func (h *History) Cap() int { return len(h.e) }

// Append adds r as the next record. It panics if r.Step is not Len(), since
// that would break the step-to-row correspondence.
func (h *History) Append(r Record) {
	if r.Step != h.n {
		panic("dynamo: history record out of order")
	}
	if h.n == len(h.e) {
		h.grow()
	}
	i := h.n
	h.steps[i] = r.Step
	h.e[i] = r.E
	h.e2[i] = r.E2
	h.sa[i] = r.SA
	h.domtime[i] = r.DomTime
	h.ra[i] = r.Ra
	h.l2[i] = r.L2
	h.ps[i] = r.PS
	h.delt[i] = r.Delt
	h.n++
}

func (h *History) grow() {
	c := 2 * len(h.e)
	steps := make([]int, c)
	copy(steps, h.steps)
	h.steps = steps
	h.e = growFloats(h.e, c)
	h.e2 = growFloats(h.e2, c)
	h.sa = growFloats(h.sa, c)
	h.domtime = growFloats(h.domtime, c)
	h.ra = growFloats(h.ra, c)
	h.l2 = growFloats(h.l2, c)
	h.ps = growFloats(h.ps, c)
	h.delt = growFloats(h.delt, c)
}

func growFloats(s []float64, c int) []float64 {
	out := make([]float64, c)
	copy(out, s)
	return out
}

// At returns record i.
func (h *History) At(i int) Record {
	return Record{
		Step:    h.steps[i],
		E:       h.e[i],
		E2:      h.e2[i],
		SA:      h.sa[i],
		DomTime: h.domtime[i],
		Ra:      h.ra[i],
		L2:      h.l2[i],
		PS:      h.ps[i],
		Delt:    h.delt[i],
	}
}

// Last returns the most recent record. ok is false for an empty history.
func (h *History) Last() (r Record, ok bool) {
	if h.n == 0 {
		return Record{}, false
	}
	return h.At(h.n - 1), true
}

// Column views share storage with the history and must not be modified.

func (h *History) Steps() []int       { return h.steps[:h.n] }
func (h *History) E() []float64       { return h.e[:h.n] }
func (h *History) E2() []float64      { return h.e2[:h.n] }
func (h *History) SA() []float64      { return h.sa[:h.n] }
func (h *History) DomTime() []float64 { return h.domtime[:h.n] }
func (h *History) Ra() []float64      { return h.ra[:h.n] }
func (h *History) L2() []float64      { return h.l2[:h.n] }
func (h *History) PS() []float64      { return h.ps[:h.n] }
func (h *History) Delt() []float64    { return h.delt[:h.n] }

// Column returns the named column ("E", "E2", "SA", "domtime", "Ra", "L2",
// "PS", "delt"). ok is false for unknown names.
func (h *History) Column(name string) (col []float64, ok bool) {
	switch name {
	case "E":
		return h.E(), true
	case "E2":
		return h.E2(), true
	case "SA":
		return h.SA(), true
	case "domtime":
		return h.DomTime(), true
	case "Ra":
		return h.Ra(), true
	case "L2":
		return h.L2(), true
	case "PS":
		return h.PS(), true
	case "delt":
		return h.Delt(), true
	}
	return nil, false
}

// ColumnNames lists the history columns in storage order.
func ColumnNames() []string {
	return []string{"E", "E2", "SA", "domtime", "Ra", "L2", "PS", "delt"}
}
