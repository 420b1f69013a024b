package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rwelin/soundgraph"
)

// Edge is either an unweighted [from, to] pair or a weighted
// [from, to, weight] triple.
type Edge struct {
	From, To int
	Weight   float64
	Weighted bool
}

// Transition returns the edge as an explicit triple. Unweighted edges get
// weight 1.
func (e Edge) Transition() soundgraph.Transition {
	w := e.Weight
	if !e.Weighted {
		w = 1
	}
	return soundgraph.Transition{From: e.From, To: e.To, Weight: w}
}

func (e *Edge) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: edge must be a sequence", value.Line)
	}
	switch len(value.Content) {
	case 2, 3:
	default:
		return fmt.Errorf("line %d: edge must have 2 or 3 items, got %d", value.Line, len(value.Content))
	}

	var out Edge
	if err := value.Content[0].Decode(&out.From); err != nil {
		return err
	}
	if err := value.Content[1].Decode(&out.To); err != nil {
		return err
	}
	if len(value.Content) == 3 {
		if err := value.Content[2].Decode(&out.Weight); err != nil {
			return err
		}
		out.Weighted = true
	}
	*e = out
	return nil
}

func (e Edge) MarshalYAML() (interface{}, error) {
	if e.Weighted {
		return []interface{}{e.From, e.To, e.Weight}, nil
	}
	return []int{e.From, e.To}, nil
}
