// Package canvas owns the note's canvas collection: its at-rest encoding,
// geometry repair, and the merge of inline and sidebar canvases.
package canvas

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alexanderramin/draftboard/internal/domain"
	"github.com/google/uuid"
)

// LegacyName is given to the single canvas recovered from the legacy format.
const LegacyName = "Canvas 1"

// runtimeOnlyKeys are appState entries that must never be persisted.
var runtimeOnlyKeys = []string{"collaborators"}

// Collection is an ordered set of canvases with unique ids.
type Collection []domain.Canvas

// IDs lists the canvas ids in order.
func (c Collection) IDs() []string {
	ids := make([]string, len(c))
	for i, cv := range c {
		ids[i] = cv.ID
	}
	return ids
}

// Find returns the index of id, or -1.
func (c Collection) Find(id string) int {
	for i, cv := range c {
		if cv.ID == id {
			return i
		}
	}
	return -1
}

// Clone copies the collection deeply enough that edits to the copy's
// canvases, elements and appState do not reach the original.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for i, cv := range c {
		out[i] = cv
		out[i].Data = cloneData(cv.Data)
	}
	return out
}

// Decode reads a stored collection; see DecodeWithInfo.
func Decode(raw string, logger *slog.Logger) Collection {
	c, _ := DecodeWithInfo(raw, logger)
	return c
}

// DecodeWithInfo reads a stored collection in either the canonical array
// shape or the legacy single-canvas object shape. migrated reports that the
// legacy shape was upgraded. Malformed input decodes to an empty collection
// and is logged, never returned as an error.
func DecodeWithInfo(raw string, logger *slog.Logger) (c Collection, migrated bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return Collection{}, false
	}

	switch trimmed[0] {
	case '[':
		var list []domain.Canvas
		if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
			warn(logger, "discarding malformed canvas collection", err)
			return Collection{}, false
		}
		c = make(Collection, 0, len(list))
		seen := make(map[string]bool, len(list))
		for _, cv := range list {
			if cv.ID == "" {
				cv.ID = uuid.NewString()
			}
			if seen[cv.ID] {
				continue
			}
			seen[cv.ID] = true
			cv.Data = prepare(cv.Data)
			c = append(c, cv)
		}
		return c, false
	case '{':
		var data domain.CanvasData
		if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
			warn(logger, "discarding malformed legacy canvas", err)
			return Collection{}, false
		}
		now := time.Now().UTC()
		return Collection{{
			ID:        uuid.NewString(),
			Name:      LegacyName,
			Data:      prepare(data),
			CreatedAt: now,
			UpdatedAt: now,
		}}, true
	}

	warn(logger, "discarding unrecognized canvas data", fmt.Errorf("unexpected leading %q", trimmed[0]))
	return Collection{}, false
}

// Encode writes the canonical array shape. Runtime-only appState entries
// are dropped; map keys are emitted in sorted order so equal collections
// encode to equal strings.
func Encode(c Collection) (string, error) {
	out := make([]domain.Canvas, len(c))
	for i, cv := range c {
		out[i] = cv
		out[i].Data = persistable(cv.Data)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding canvas collection: %w", err)
	}
	return string(data), nil
}

// DataFrom converts a decoded JSON payload (as held in a content tree) into
// canvas data, normalized and ready for use.
func DataFrom(v any) domain.CanvasData {
	var data domain.CanvasData
	if v != nil {
		if raw, err := json.Marshal(v); err == nil {
			_ = json.Unmarshal(raw, &data)
		}
	}
	return prepare(data)
}

// DataMap is the inverse of DataFrom: the persistable payload as a generic
// JSON object, suitable for a content-tree node attribute.
func DataMap(d domain.CanvasData) map[string]any {
	out := map[string]any{}
	if raw, err := json.Marshal(persistable(d)); err == nil {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}

// prepare normalizes loaded data and rebuilds the runtime-only state.
func prepare(d domain.CanvasData) domain.CanvasData {
	d.Elements = NormalizeElements(d.Elements)
	if d.AppState == nil {
		d.AppState = map[string]any{}
	}
	if d.Files == nil {
		d.Files = map[string]any{}
	}
	d.AppState["collaborators"] = map[string]any{}
	return d
}

func persistable(d domain.CanvasData) domain.CanvasData {
	state := make(map[string]any, len(d.AppState))
	for k, v := range d.AppState {
		state[k] = v
	}
	for _, k := range runtimeOnlyKeys {
		delete(state, k)
	}
	d.AppState = state
	if d.Elements == nil {
		d.Elements = []domain.Element{}
	}
	if d.Files == nil {
		d.Files = map[string]any{}
	}
	return d
}

func cloneData(d domain.CanvasData) domain.CanvasData {
	out := domain.CanvasData{
		Elements: make([]domain.Element, len(d.Elements)),
		AppState: make(map[string]any, len(d.AppState)),
		Files:    make(map[string]any, len(d.Files)),
	}
	for i, e := range d.Elements {
		out.Elements[i] = cloneElement(e)
	}
	for k, v := range d.AppState {
		out.AppState[k] = v
	}
	for k, v := range d.Files {
		out.Files[k] = v
	}
	return out
}

func cloneElement(e domain.Element) domain.Element {
	out := make(domain.Element, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func warn(logger *slog.Logger, msg string, err error) {
	if logger != nil {
		logger.Warn(msg, "error", err)
	}
}
