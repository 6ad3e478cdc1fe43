package grid

import "fmt"

// ShapeKind is the closed set of targeting shapes an ability can use.
// The zero value (ShapeSingle) targets exactly one cell.
type ShapeKind int

const (
	ShapeSingle ShapeKind = iota
	ShapeCircle
	ShapeCone
	ShapeLine
)

// String returns the YAML/catalog name of the shape kind.
func (k ShapeKind) String() string {
	switch k {
	case ShapeSingle:
		return "single"
	case ShapeCircle:
		return "circle"
	case ShapeCone:
		return "cone"
	case ShapeLine:
		return "line"
	default:
		return "unknown"
	}
}

// ParseShapeKind maps a catalog string to a ShapeKind.
//
// Postcondition: Returns an error for any string outside the closed set.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch s {
	case "single", "":
		return ShapeSingle, nil
	case "circle":
		return ShapeCircle, nil
	case "cone":
		return ShapeCone, nil
	case "line":
		return ShapeLine, nil
	default:
		return ShapeSingle, fmt.Errorf("grid: unknown shape kind %q", s)
	}
}

// Shape describes an ability's area of effect. Radius is the circle radius;
// Length is the cone/line reach. Single shapes ignore both.
type Shape struct {
	Kind   ShapeKind
	Radius int
	Length int
}

// Cells returns every cell covered by the shape when aimed from origin at
// target. The set always includes the anchor cell relevant to the kind:
//   - Single: exactly the target cell.
//   - Circle: all cells within Radius of the target cell.
//   - Cone: cells spreading from origin toward target, widening one cell per
//     step, up to Length steps. The origin cell itself is excluded.
//   - Line: cells stepping from origin toward target for Length steps,
//     excluding the origin cell.
//
// Cell order is deterministic (row-major within each construction) so area
// resolution order is stable.
//
// Precondition: for cone and line, target must differ from origin.
func (s Shape) Cells(origin, target Point) []Point {
	switch s.Kind {
	case ShapeCircle:
		return circleCells(target, s.Radius)
	case ShapeCone:
		return coneCells(origin, target, s.Length)
	case ShapeLine:
		return lineCells(origin, target, s.Length)
	default:
		return []Point{target}
	}
}

func circleCells(center Point, radius int) []Point {
	if radius <= 0 {
		return []Point{center}
	}
	var out []Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := Point{X: center.X + dx, Y: center.Y + dy}
			if Distance(center, p) <= radius {
				out = append(out, p)
			}
		}
	}
	return out
}

// coneCells walks from origin toward target along the dominant axis direction,
// widening perpendicular to it: step i covers a band of half-width i centered
// on the axis cell.
func coneCells(origin, target Point, length int) []Point {
	if length <= 0 {
		length = 1
	}
	dx := sign(target.X - origin.X)
	dy := sign(target.Y - origin.Y)
	if dx == 0 && dy == 0 {
		return nil
	}
	var out []Point
	for step := 1; step <= length; step++ {
		axis := Point{X: origin.X + dx*step, Y: origin.Y + dy*step}
		half := step - 1
		for w := -half; w <= half; w++ {
			var p Point
			if dx == 0 {
				// vertical cone widens in X
				p = Point{X: axis.X + w, Y: axis.Y}
			} else if dy == 0 {
				// horizontal cone widens in Y
				p = Point{X: axis.X, Y: axis.Y + w}
			} else {
				// diagonal cone widens along the anti-diagonal
				p = Point{X: axis.X + w*dy, Y: axis.Y - w*dx}
			}
			out = append(out, p)
		}
	}
	return dedupe(out)
}

func lineCells(origin, target Point, length int) []Point {
	if length <= 0 {
		length = 1
	}
	dx := sign(target.X - origin.X)
	dy := sign(target.Y - origin.Y)
	if dx == 0 && dy == 0 {
		return nil
	}
	out := make([]Point, 0, length)
	for step := 1; step <= length; step++ {
		out = append(out, Point{X: origin.X + dx*step, Y: origin.Y + dy*step})
	}
	return out
}

func dedupe(cells []Point) []Point {
	seen := make(map[Point]struct{}, len(cells))
	out := cells[:0]
	for _, c := range cells {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
