// Package soundgraph sequences slices of a sound file by walking a weighted
// directed graph of playback events, and evolves that graph between walks.
package soundgraph

import (
	"math"
	"sort"
)

// Node holds the playback parameters of one sequencer step.
type Node struct {
	ID         int     `json:"id"`
	Duration   float64 `json:"duration"` // beats
	PitchRatio float64 `json:"pitch"`
	Inskip     float64 `json:"inskip"` // seconds into the asset
}

// Store maps node ids to nodes. The zero value is not usable, use NewStore.
type Store struct {
	nodes map[int]Node
	ids   []int // ascending
}

// NewStore builds a store from nodes. Ids must be positive and unique.
func NewStore(nodes []Node) (*Store, error) {
	s := &Store{
		nodes: make(map[int]Node, len(nodes)),
		ids:   make([]int, 0, len(nodes)),
	}
	for _, n := range nodes {
		if n.ID <= 0 {
			return nil, invalidNodef("id %d is not positive", n.ID)
		}
		if _, ok := s.nodes[n.ID]; ok {
			return nil, invalidNodef("duplicate id %d", n.ID)
		}
		if n.Inskip < 0 || math.IsNaN(n.Inskip) {
			return nil, invalidNodef("node %d: negative inskip %v", n.ID, n.Inskip)
		}
		if !(n.PitchRatio > 0) {
			return nil, invalidNodef("node %d: pitch ratio %v is not positive", n.ID, n.PitchRatio)
		}
		s.nodes[n.ID] = n
		s.ids = append(s.ids, n.ID)
	}
	sort.Ints(s.ids)
	return s, nil
}

func (s *Store) Get(id int) (Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// MustGet panics if id is not in the store.
func (s *Store) MustGet(id int) Node {
	n, ok := s.nodes[id]
	if !ok {
		panic(&UnknownNodeError{Node: id})
	}
	return n
}

func (s *Store) Has(id int) bool {
	_, ok := s.nodes[id]
	return ok
}

func (s *Store) Len() int {
	return len(s.ids)
}

// IDs returns the node ids in ascending order.
func (s *Store) IDs() []int {
	return append([]int(nil), s.ids...)
}

// Nodes returns the nodes in ascending id order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.ids))
	for i, id := range s.ids {
		out[i] = s.nodes[id]
	}
	return out
}

func (s *Store) Clone() *Store {
	c := &Store{
		nodes: make(map[int]Node, len(s.nodes)),
		ids:   append([]int(nil), s.ids...),
	}
	for id, n := range s.nodes {
		c.nodes[id] = n
	}
	return c
}

// set replaces an existing node. Only the mutation operators call it, and
// only on a fresh clone.
func (s *Store) set(n Node) {
	s.nodes[n.ID] = n
}
