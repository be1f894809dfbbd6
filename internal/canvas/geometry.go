package canvas

import (
	"encoding/json"
	"math"

	"github.com/alexanderramin/draftboard/internal/domain"
)

// MinExtent is the smallest width or height a connector may have.
const MinExtent = 1.0

// DefaultPoints is the segment substituted for missing or degenerate
// connector point lists.
func DefaultPoints() []any {
	return []any{[]any{0.0, 0.0}, []any{100.0, 0.0}}
}

// NormalizeElements repairs connector geometry: arrow and line elements get
// numeric points (at least two of them) and a bounding box recomputed from
// those points. Other elements are copied unchanged. The input is not
// modified.
func NormalizeElements(elements []domain.Element) []domain.Element {
	out := make([]domain.Element, 0, len(elements))
	for _, e := range elements {
		if e == nil {
			continue
		}
		e = cloneElement(e)
		if t := e.Type(); t == "arrow" || t == "line" {
			normalizeConnector(e)
		}
		out = append(out, e)
	}
	return out
}

func normalizeConnector(e domain.Element) {
	points := coercePoints(e["points"])
	if len(points) < 2 {
		points = DefaultPoints()
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		xy := p.([]any)
		x, y := xy[0].(float64), xy[1].(float64)
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	e["points"] = points
	e["width"] = math.Max(maxX-minX, MinExtent)
	e["height"] = math.Max(maxY-minY, MinExtent)
	for _, k := range []string{"x", "y"} {
		if v, ok := e[k]; ok {
			e[k] = toNumber(v)
		}
	}
}

// coercePoints returns points as [][x, y] float64 pairs in the same shape
// JSON decoding produces. Anything that is not a list yields nil.
func coercePoints(v any) []any {
	var raw []any
	switch pts := v.(type) {
	case []any:
		raw = pts
	case [][]float64:
		for _, p := range pts {
			pair := make([]any, len(p))
			for i, f := range p {
				pair[i] = f
			}
			raw = append(raw, pair)
		}
	default:
		return nil
	}

	out := make([]any, 0, len(raw))
	for _, p := range raw {
		var coords []any
		switch xy := p.(type) {
		case []any:
			coords = xy
		case []float64:
			for _, f := range xy {
				coords = append(coords, f)
			}
		}
		var x, y float64
		if len(coords) > 0 {
			x = toNumber(coords[0])
		}
		if len(coords) > 1 {
			y = toNumber(coords[1])
		}
		out = append(out, []any{x, y})
	}
	return out
}

func toNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
