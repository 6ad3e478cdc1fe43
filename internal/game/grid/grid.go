// Package grid provides the integer battle-grid geometry used by targeting
// and movement: points, range checks, area shapes, and terrain-aware
// reachability.
package grid

// Point is a cell coordinate on the battle grid.
type Point struct {
	X int
	Y int
}

// Distance returns the Chebyshev distance between a and b. Diagonal steps
// count as one cell, which keeps melee range 1 meaning "the 8 surrounding
// cells".
//
// Postcondition: Returns >= 0; Distance(a, b) == Distance(b, a).
func Distance(a, b Point) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Adjacent reports whether a and b are distinct cells within one step of each
// other.
func Adjacent(a, b Point) bool {
	return a != b && Distance(a, b) == 1
}

// Neighbors returns the up-to-8 cells surrounding p, in a fixed scan order so
// movement search is deterministic.
func Neighbors(p Point) []Point {
	out := make([]Point, 0, 8)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			out = append(out, Point{X: p.X + dx, Y: p.Y + dy})
		}
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// sign returns -1, 0, or 1 matching the sign of n.
func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
