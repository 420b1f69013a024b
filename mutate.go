package soundgraph

import "math"

// Slots is the number of equal slots an asset is divided into when
// re-rolling a node's offset and duration.
const Slots = 16

// RandomSimpleRatio returns a/b for two distinct a, b drawn from {1, 2, 3}.
func RandomSimpleRatio(rng Rand) float64 {
	vals := []int{1, 2, 3}
	i := rng.Intn(len(vals))
	a := vals[i]
	vals = append(vals[:i], vals[i+1:]...)
	b := vals[rng.Intn(len(vals))]
	return float64(a) / float64(b)
}

// RandomSlot picks a random slot of an asset assetLength seconds long and a
// duration in beats that does not run past the last slot. Four slots make a
// beat.
func RandomSlot(assetLength float64, rng Rand) (inskip, duration float64) {
	i := rng.Intn(Slots)
	inskip = assetLength * float64(i) / Slots
	maxBeats := float64(Slots-i) / 4
	for duration == 0 {
		duration = rng.Float64() * maxBeats
	}
	return inskip, duration
}

// clampPositive keeps a scaled weight or pitch finite and strictly positive.
func clampPositive(v float64) float64 {
	switch {
	case v > math.MaxFloat64:
		return math.MaxFloat64
	case v < math.SmallestNonzeroFloat64:
		return math.SmallestNonzeroFloat64
	}
	return v
}

func checkProbability(p float64) error {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return &ProbabilityError{Probability: p}
	}
	return nil
}

// MutateEdges returns a copy of m in which each existing edge, with
// probability p, has its weight multiplied by a random simple ratio.
// Edges are visited in (from, to) order and no edges are added.
func MutateEdges(m *Matrix, p float64, rng Rand) (*Matrix, error) {
	if err := checkProbability(p); err != nil {
		return nil, err
	}
	out := m.Clone()
	for _, t := range m.Transitions() {
		if rng.Float64() >= p {
			continue
		}
		out.rows[t.From][t.To] = clampPositive(t.Weight * RandomSimpleRatio(rng))
		mutationsTotal.WithLabelValues("edge_weight").Inc()
	}
	return out, nil
}

// MutateNodes returns a copy of s in which each node, with probability p,
// either gets a new slot (inskip and duration) within an asset assetLength
// seconds long or has its pitch ratio scaled by a random simple ratio.
func MutateNodes(s *Store, p, assetLength float64, rng Rand) (*Store, error) {
	if err := checkProbability(p); err != nil {
		return nil, err
	}
	out := s.Clone()
	for _, n := range s.Nodes() {
		if rng.Float64() >= p {
			continue
		}
		switch rng.Intn(2) {
		case 0:
			n.Inskip, n.Duration = RandomSlot(assetLength, rng)
			mutationsTotal.WithLabelValues("node_slot").Inc()
		default:
			n.PitchRatio = clampPositive(n.PitchRatio * RandomSimpleRatio(rng))
			mutationsTotal.WithLabelValues("node_pitch").Inc()
		}
		out.set(n)
	}
	return out, nil
}

// EdgeKey names an edge without a weight.
type EdgeKey struct {
	From, To int
}

// CreateEdges builds a new matrix holding exactly the given edges, each
// weighted by a random simple ratio. Later duplicates overwrite earlier ones.
func CreateEdges(edges []EdgeKey, rng Rand) *Matrix {
	m := NewMatrix()
	for _, e := range edges {
		// simple ratios are always positive and finite
		_ = m.SetWeight(e.From, e.To, RandomSimpleRatio(rng))
	}
	return m
}

// MutateOptions controls Generation.Mutate.
type MutateOptions struct {
	EdgeProbability float64
	NodeProbability float64
	// AssetLength is the playable length of the sound asset in seconds,
	// used to bound re-rolled node slots.
	AssetLength float64
}

// Mutate returns the next generation. g is left untouched.
func (g *Generation) Mutate(opts MutateOptions, rng Rand) (*Generation, error) {
	m, err := MutateEdges(g.matrix, opts.EdgeProbability, rng)
	if err != nil {
		return nil, err
	}
	nodes, err := MutateNodes(g.nodes, opts.NodeProbability, opts.AssetLength, rng)
	if err != nil {
		return nil, err
	}
	return g.child(nodes, m), nil
}

// Rewire returns the next generation with the same nodes and a matrix built
// by CreateEdges. Every edge must reference a node of g.
func (g *Generation) Rewire(edges []EdgeKey, rng Rand) (*Generation, error) {
	for _, e := range edges {
		if !g.nodes.Has(e.From) {
			return nil, &UnknownNodeError{Node: e.From}
		}
		if !g.nodes.Has(e.To) {
			return nil, &UnknownNodeError{Node: e.To}
		}
	}
	return g.child(g.nodes.Clone(), CreateEdges(edges, rng)), nil
}
