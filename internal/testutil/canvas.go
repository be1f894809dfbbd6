package testutil

import (
	"testing"

	"github.com/alexanderramin/draftboard/internal/canvas"
	"github.com/stretchr/testify/require"
)

// CanvasJSON encodes c as stored in a note's canvas_data.
func CanvasJSON(t testing.TB, c canvas.Collection) string {
	t.Helper()
	s, err := canvas.Encode(c)
	require.NoError(t, err)
	return s
}
