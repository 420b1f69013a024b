package soundgraph

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Generation is one snapshot of a node store and its transition matrix.
// A Generation is never modified after construction; mutation produces a
// new one.
type Generation struct {
	ID       string
	ParentID string
	Index    int
	Created  time.Time

	nodes  *Store
	matrix *Matrix
}

// NewGeneration checks that every edge references a node in nodes and
// returns the root generation. nodes and m are copied.
func NewGeneration(nodes *Store, m *Matrix) (*Generation, error) {
	for _, t := range m.Transitions() {
		if !nodes.Has(t.From) {
			return nil, &UnknownNodeError{Node: t.From}
		}
		if !nodes.Has(t.To) {
			return nil, &UnknownNodeError{Node: t.To}
		}
	}
	return &Generation{
		ID:      uuid.NewString(),
		Created: time.Now().UTC(),
		nodes:   nodes.Clone(),
		matrix:  m.Clone(),
	}, nil
}

// Build is a convenience wrapper around NewStore, MatrixFrom and NewGeneration.
func Build(nodes []Node, ts []Transition) (*Generation, error) {
	s, err := NewStore(nodes)
	if err != nil {
		return nil, err
	}
	m, err := MatrixFrom(ts)
	if err != nil {
		return nil, err
	}
	return NewGeneration(s, m)
}

// Nodes returns a copy of the generation's node store.
func (g *Generation) Nodes() *Store {
	return g.nodes.Clone()
}

// Matrix returns a copy of the generation's transition matrix.
func (g *Generation) Matrix() *Matrix {
	return g.matrix.Clone()
}

func (g *Generation) Node(id int) (Node, bool) {
	return g.nodes.Get(id)
}

func (g *Generation) Outgoing(id int) []Transition {
	return g.matrix.Outgoing(id)
}

// child wraps freshly mutated copies as the next generation.
func (g *Generation) child(nodes *Store, m *Matrix) *Generation {
	return &Generation{
		ID:       uuid.NewString(),
		ParentID: g.ID,
		Index:    g.Index + 1,
		Created:  time.Now().UTC(),
		nodes:    nodes,
		matrix:   m,
	}
}

type generationJSON struct {
	ID          string       `json:"id"`
	ParentID    string       `json:"parent_id,omitempty"`
	Index       int          `json:"index"`
	Created     time.Time    `json:"created"`
	Nodes       []Node       `json:"nodes"`
	Transitions []Transition `json:"transitions"`
}

func (g *Generation) MarshalJSON() ([]byte, error) {
	return json.Marshal(generationJSON{
		ID:          g.ID,
		ParentID:    g.ParentID,
		Index:       g.Index,
		Created:     g.Created,
		Nodes:       g.nodes.Nodes(),
		Transitions: g.matrix.Transitions(),
	})
}

// UnmarshalJSON validates the decoded graph the same way Build does.
func (g *Generation) UnmarshalJSON(data []byte) error {
	var v generationJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	b, err := Build(v.Nodes, v.Transitions)
	if err != nil {
		return err
	}
	*g = Generation{
		ID:       v.ID,
		ParentID: v.ParentID,
		Index:    v.Index,
		Created:  v.Created,
		nodes:    b.nodes,
		matrix:   b.matrix,
	}
	return nil
}
