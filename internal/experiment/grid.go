package experiment

// GridSearch enumerates the cartesian product of named value ranges, the
// first name varying slowest.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	if len(g.ranges) == 0 {
		return 0
	}
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Walk calls visit for every grid point. The map is reused between calls.
func (g *GridSearch) Walk(visit func(map[string]float64)) {
	if len(g.paramNames) == 0 {
		return
	}
	g.walkRecursive(0, make(map[string]float64, len(g.paramNames)), visit)
}

func (g *GridSearch) walkRecursive(depth int, current map[string]float64, visit func(map[string]float64)) {
	if depth == len(g.paramNames) {
		visit(current)
		return
	}
	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.walkRecursive(depth+1, current, visit)
	}
}
