package grid

// Terrain describes movement costs on the battle grid. Cells absent from
// Costs use DefaultCost; cells present with cost <= 0 are impassable.
type Terrain struct {
	// Width and Height bound the grid; cells outside [0,Width)x[0,Height)
	// are impassable.
	Width  int
	Height int
	// Costs overrides the per-cell movement cost.
	Costs map[Point]int
	// DefaultCost is the cost of entering an unlisted cell; 0 means 1.
	DefaultCost int
}

// NewTerrain creates an open width x height terrain with uniform cost 1.
//
// Precondition: width > 0 and height > 0.
func NewTerrain(width, height int) *Terrain {
	return &Terrain{Width: width, Height: height, Costs: make(map[Point]int), DefaultCost: 1}
}

// SetCost overrides the cost of entering p. cost <= 0 marks p impassable.
func (t *Terrain) SetCost(p Point, cost int) {
	t.Costs[p] = cost
}

// CostAt returns the cost of entering p, or -1 if p is impassable or out of
// bounds.
func (t *Terrain) CostAt(p Point) int {
	if p.X < 0 || p.Y < 0 || p.X >= t.Width || p.Y >= t.Height {
		return -1
	}
	if c, ok := t.Costs[p]; ok {
		if c <= 0 {
			return -1
		}
		return c
	}
	if t.DefaultCost <= 0 {
		return 1
	}
	return t.DefaultCost
}

// InBounds reports whether p lies on the grid.
func (t *Terrain) InBounds(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < t.Width && p.Y < t.Height
}

// Reachable returns every cell reachable from start with total entry cost at
// most budget, excluding start itself and any cell for which blocked returns
// true. blocked may be nil. Uniform-cost search over the 8-neighborhood;
// the frontier is expanded in deterministic Neighbors order.
//
// Precondition: t must be non-nil; budget >= 0.
// Postcondition: start is never in the result; every returned cell satisfies
// CostAt >= 1 and !blocked.
func (t *Terrain) Reachable(start Point, budget int, blocked func(Point) bool) map[Point]int {
	if blocked == nil {
		blocked = func(Point) bool { return false }
	}
	best := map[Point]int{start: 0}
	frontier := []Point{start}
	for len(frontier) > 0 {
		// Pop the cheapest frontier cell; ties resolve to the earliest
		// inserted, keeping expansion order stable.
		idx := 0
		for i, p := range frontier {
			if best[p] < best[frontier[idx]] {
				idx = i
			}
		}
		cur := frontier[idx]
		frontier = append(frontier[:idx], frontier[idx+1:]...)

		for _, n := range Neighbors(cur) {
			cost := t.CostAt(n)
			if cost < 0 || blocked(n) {
				continue
			}
			total := best[cur] + cost
			if total > budget {
				continue
			}
			if prev, seen := best[n]; !seen || total < prev {
				best[n] = total
				frontier = append(frontier, n)
			}
		}
	}
	delete(best, start)
	return best
}

// CanReach reports whether dest is reachable from start within budget.
func (t *Terrain) CanReach(start, dest Point, budget int, blocked func(Point) bool) bool {
	if start == dest {
		return false
	}
	_, ok := t.Reachable(start, budget, blocked)[dest]
	return ok
}
