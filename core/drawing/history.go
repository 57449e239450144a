package drawing

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type OpKind string

const (
	OpAdd   OpKind = "add"
	OpClear OpKind = "clear"
)

// Op is one reversible edit of a drawing.
type Op struct {
	Kind    OpKind   `json:"kind"`
	Stroke  *Stroke  `json:"stroke,omitempty"`  // OpAdd
	Cleared []Stroke `json:"cleared,omitempty"` // OpClear, restored on undo
}

// History is the undo/redo buffer of a drawing being edited.
// The zero value is an empty drawing.
type History struct {
	strokes []Stroke
	done    []Op
	undone  []Op
}

func NewHistory(initial []Stroke) *History {
	return &History{strokes: append([]Stroke(nil), initial...)}
}

// Strokes returns a copy of the current drawing.
func (h *History) Strokes() []Stroke {
	return append([]Stroke{}, h.strokes...)
}

func (h *History) Add(s Stroke) {
	h.apply(Op{Kind: OpAdd, Stroke: &s})
	h.undone = nil
}

func (h *History) Clear() {
	if len(h.strokes) == 0 {
		return
	}
	h.apply(Op{Kind: OpClear, Cleared: h.Strokes()})
	h.undone = nil
}

func (h *History) CanUndo() bool { return len(h.done) > 0 }
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	op := h.done[len(h.done)-1]
	h.done = h.done[:len(h.done)-1]
	switch op.Kind {
	case OpAdd:
		h.strokes = h.strokes[:len(h.strokes)-1]
	case OpClear:
		h.strokes = append([]Stroke(nil), op.Cleared...)
	}
	h.undone = append(h.undone, op)
	return true
}

func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	op := h.undone[len(h.undone)-1]
	h.undone = h.undone[:len(h.undone)-1]
	h.apply(op)
	return true
}

func (h *History) apply(op Op) {
	switch op.Kind {
	case OpAdd:
		h.strokes = append(h.strokes, *op.Stroke)
	case OpClear:
		h.strokes = nil
	}
	h.done = append(h.done, op)
}

type historyJSON struct {
	Strokes []Stroke `json:"strokes"`
	Done    []Op     `json:"done"`
	Undone  []Op     `json:"undone"`
}

func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(historyJSON{Strokes: h.Strokes(), Done: h.done, Undone: h.undone})
}

func (h *History) UnmarshalJSON(data []byte) error {
	var v historyJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	for _, op := range append(append([]Op{}, v.Done...), v.Undone...) {
		switch op.Kind {
		case OpAdd:
			if op.Stroke == nil {
				return errors.New("history: add op without stroke")
			}
		case OpClear:
		default:
			return errors.Errorf("history: unknown op %q", op.Kind)
		}
	}
	h.strokes, h.done, h.undone = v.Strokes, v.Done, v.Undone
	return nil
}
