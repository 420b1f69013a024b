package soundgraph

import (
	"math"
	"sort"
)

// Transition is a directed weighted edge between two node ids.
type Transition struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// Matrix is a sparse weighted adjacency structure keyed by node id.
// A missing or zero entry means there is no edge.
type Matrix struct {
	rows map[int]map[int]float64
}

func NewMatrix() *Matrix {
	return &Matrix{rows: make(map[int]map[int]float64)}
}

// MatrixFrom builds a matrix from ts. A later transition for the same pair
// overwrites the earlier one.
func MatrixFrom(ts []Transition) (*Matrix, error) {
	m := NewMatrix()
	for _, t := range ts {
		if err := m.SetWeight(t.From, t.To, t.Weight); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// SetWeight overwrites the weight of from -> to. Setting zero removes the edge.
func (m *Matrix) SetWeight(from, to int, w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return &WeightError{From: from, To: to, Weight: w}
	}
	row := m.rows[from]
	if w == 0 {
		if row != nil {
			delete(row, to)
			if len(row) == 0 {
				delete(m.rows, from)
			}
		}
		return nil
	}
	if row == nil {
		row = make(map[int]float64)
		m.rows[from] = row
	}
	row[to] = w
	return nil
}

func (m *Matrix) Weight(from, to int) float64 {
	return m.rows[from][to]
}

// Outgoing returns the edges leaving from with weight > 0, ordered by
// ascending target id.
func (m *Matrix) Outgoing(from int) []Transition {
	row := m.rows[from]
	out := make([]Transition, 0, len(row))
	for to, w := range row {
		out = append(out, Transition{From: from, To: to, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

func (m *Matrix) IsTerminal(from int) bool {
	return len(m.rows[from]) == 0
}

// Transitions returns every edge ordered by (from, to).
func (m *Matrix) Transitions() []Transition {
	froms := make([]int, 0, len(m.rows))
	for from := range m.rows {
		froms = append(froms, from)
	}
	sort.Ints(froms)

	var out []Transition
	for _, from := range froms {
		out = append(out, m.Outgoing(from)...)
	}
	return out
}

func (m *Matrix) Len() int {
	n := 0
	for _, row := range m.rows {
		n += len(row)
	}
	return n
}

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix()
	for from, row := range m.rows {
		r := make(map[int]float64, len(row))
		for to, w := range row {
			r[to] = w
		}
		c.rows[from] = r
	}
	return c
}
