package domain

import "time"

// Canvas is an embeddable diagram. Two provenance paths produce canvases:
// inline diagram nodes in a note's content tree and the sidebar list.
type Canvas struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Data      CanvasData `json:"data"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CanvasData is the drawable payload of a canvas.
type CanvasData struct {
	Elements []Element      `json:"elements"`
	AppState map[string]any `json:"appState"`
	Files    map[string]any `json:"files"`
}

// Element is a single drawable shape. It is kept as an open map so that
// properties this package does not know about survive a round-trip.
type Element map[string]any

// Type returns the element's shape type ("arrow", "rectangle", ...).
func (e Element) Type() string {
	t, _ := e["type"].(string)
	return t
}

// ID returns the element id, if any.
func (e Element) ID() string {
	id, _ := e["id"].(string)
	return id
}
