package canvas

import (
	"math"
	"testing"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertNumericPoints(t *testing.T, e domain.Element) {
	t.Helper()
	points, ok := e["points"].([]any)
	require.True(t, ok)
	require.GreaterOrEqual(t, len(points), 2)
	for _, p := range points {
		xy, ok := p.([]any)
		require.True(t, ok)
		require.Len(t, xy, 2)
		for _, v := range xy {
			f, ok := v.(float64)
			require.True(t, ok)
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
		}
	}
}

func TestNormalizeElements_NaNSinglePoint(t *testing.T) {
	in := []domain.Element{{"type": "arrow", "id": "a1", "points": []any{[]any{math.NaN(), 0.0}}}}

	out := NormalizeElements(in)
	require.Len(t, out, 1)
	assertNumericPoints(t, out[0])
	assert.Equal(t, DefaultPoints(), out[0]["points"])
	assert.GreaterOrEqual(t, out[0]["width"].(float64), 1.0)
	assert.GreaterOrEqual(t, out[0]["height"].(float64), 1.0)

	// Input is untouched.
	assert.Len(t, in[0]["points"], 1)
}

func TestNormalizeElements_MissingPoints(t *testing.T) {
	out := NormalizeElements([]domain.Element{{"type": "line"}})
	assert.Equal(t, DefaultPoints(), out[0]["points"])
	assert.Equal(t, 100.0, out[0]["width"])
	assert.Equal(t, 1.0, out[0]["height"])
}

func TestNormalizeElements_CoercesAndRecomputesBounds(t *testing.T) {
	in := []domain.Element{{
		"type":   "arrow",
		"x":      math.Inf(1),
		"points": []any{[]any{0.0, "bad"}, []any{30.0, 40.0}, []any{-10.0, nil}},
		"width":  999.0,
	}}

	out := NormalizeElements(in)
	assertNumericPoints(t, out[0])
	assert.Equal(t, []any{[]any{0.0, 0.0}, []any{30.0, 40.0}, []any{-10.0, 0.0}}, out[0]["points"])
	assert.Equal(t, 40.0, out[0]["width"])
	assert.Equal(t, 40.0, out[0]["height"])
	assert.Equal(t, 0.0, out[0]["x"])
}

func TestNormalizeElements_TypedPointSlices(t *testing.T) {
	out := NormalizeElements([]domain.Element{{"type": "arrow", "points": [][]float64{{0, 0}, {0, 0}}}})
	assertNumericPoints(t, out[0])
	assert.Equal(t, 1.0, out[0]["width"], "degenerate extent is floored")
	assert.Equal(t, 1.0, out[0]["height"])
}

func TestNormalizeElements_LeavesOtherShapes(t *testing.T) {
	rect := domain.Element{"type": "rectangle", "width": 0.0}
	out := NormalizeElements([]domain.Element{rect, nil})
	require.Len(t, out, 1)
	assert.Equal(t, rect, out[0])
}
