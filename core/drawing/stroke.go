package drawing

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Stroke is one continuous pen path as exported by the drawing canvas.
type Stroke struct {
	DrawMode       bool    `json:"drawMode"`
	StrokeColor    string  `json:"strokeColor,omitempty"`
	StrokeWidth    float64 `json:"strokeWidth,omitempty"`
	Paths          []Point `json:"paths"`
	StartTimestamp int64   `json:"startTimestamp,omitempty"`
	EndTimestamp   int64   `json:"endTimestamp,omitempty"`
}

// Parse decodes a stored drawing answer. An empty value is an empty drawing.
func Parse(value string) ([]Stroke, error) {
	if strings.TrimSpace(value) == "" {
		return []Stroke{}, nil
	}
	var strokes []Stroke
	if err := json.Unmarshal([]byte(value), &strokes); err != nil {
		return nil, errors.Wrap(err, "parsing strokes")
	}
	if strokes == nil {
		strokes = []Stroke{}
	}
	return strokes, nil
}

func Encode(strokes []Stroke) (string, error) {
	if strokes == nil {
		strokes = []Stroke{}
	}
	data, err := json.Marshal(strokes)
	if err != nil {
		return "", errors.Wrap(err, "encoding strokes")
	}
	return string(data), nil
}

// Compress simplifies every stroke independently and rounds the kept coordinates to 2 decimals.
// The input is left untouched.
func Compress(strokes []Stroke) []Stroke {
	res := make([]Stroke, 0, len(strokes))
	for _, s := range strokes {
		if s.Paths != nil {
			simplified := Simplify(s.Paths, Tolerance, true)
			rounded := make([]Point, len(simplified))
			for i, p := range simplified {
				rounded[i] = Point{X: Round2(p.X), Y: Round2(p.Y)}
			}
			s.Paths = rounded
		}
		res = append(res, s)
	}
	return res
}

// CompressAnswer parses a raw drawing answer, compresses it and encodes it back.
func CompressAnswer(value string) (string, error) {
	strokes, err := Parse(value)
	if err != nil {
		return "", err
	}
	return Encode(Compress(strokes))
}
