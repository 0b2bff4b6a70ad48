package sink

import (
	"encoding/json"

	"github.com/certforge/certforge/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	designID   int
	designName string
	compact    bool
}

// WithJSONDesign records which design the ops were computed from.
func WithJSONDesign(id int, name string) JSONOption {
	return func(r *jsonRenderer) { r.designID = id; r.designName = name }
}

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	DesignID   int             `json:"designId,omitempty"`
	DesignName string          `json:"designName,omitempty"`
	Canvas     layout.Canvas   `json:"canvas"`
	SafeZone   layout.SafeZone `json:"safeZone"`
	Ops        []layout.Op     `json:"ops"`
}

// RenderJSON exports the op list with its canvas and safe zone. The output
// carries every resolved coordinate, so any 2D surface can replay it.
//
// RenderJSON does not modify ops and is safe to call concurrently.
func RenderJSON(ops []layout.Op, c layout.Canvas, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		DesignID:   r.designID,
		DesignName: r.designName,
		Canvas:     c,
		SafeZone:   layout.ZoneFor(c),
		Ops:        ops,
	}
	if out.Ops == nil {
		out.Ops = []layout.Op{}
	}
	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
