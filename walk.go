package soundgraph

import "math"

// Rand is the random source used by walks and mutations. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Event is one scheduled playback of a node.
type Event struct {
	Node          int     `json:"node"`
	StartBeat     float64 `json:"start_beat"`
	DurationBeats float64 `json:"duration_beats"`
	PitchRatio    float64 `json:"pitch_ratio"`
	SkipTime      float64 `json:"skip_time"`
}

// Timeline is the ordered output of a walk.
type Timeline struct {
	Events []Event `json:"events"`
	// Terminated is set when the walk stopped at a node without outgoing
	// edges before reaching the target length.
	Terminated bool `json:"terminated"`
}

// End is the beat at which the last event finishes.
func (t Timeline) End() float64 {
	var end float64
	for _, e := range t.Events {
		end += e.DurationBeats
	}
	return end
}

// Walk performs a weighted random walk from start until targetBeats beats
// have been scheduled or a terminal node is reached.
func (g *Generation) Walk(start int, targetBeats float64, rng Rand) (Timeline, error) {
	var tl Timeline
	current := start
	elapsed := 0.0

	for elapsed < targetBeats {
		n, ok := g.nodes.Get(current)
		if !ok {
			walksTotal.WithLabelValues("error").Inc()
			return tl, &UnknownNodeError{Node: current}
		}
		if !(n.Duration > 0) || math.IsInf(n.Duration, 0) {
			walksTotal.WithLabelValues("error").Inc()
			return tl, &DurationError{Node: n.ID, Duration: n.Duration}
		}

		tl.Events = append(tl.Events, Event{
			Node:          n.ID,
			StartBeat:     elapsed,
			DurationBeats: n.Duration,
			PitchRatio:    n.PitchRatio,
			SkipTime:      n.Inskip,
		})

		out := g.matrix.Outgoing(current)
		if len(out) == 0 {
			tl.Terminated = elapsed+n.Duration < targetBeats
			break
		}

		elapsed += n.Duration
		current = choose(out, rng)
	}

	if tl.Terminated {
		walksTotal.WithLabelValues("terminal").Inc()
	} else {
		walksTotal.WithLabelValues("complete").Inc()
	}
	walkEvents.Observe(float64(len(tl.Events)))
	return tl, nil
}

// choose draws from out in proportion to weight. out must be non-empty and
// in stable order. Weights are scaled by the row maximum so the sum stays
// finite for weights near math.MaxFloat64.
func choose(out []Transition, rng Rand) int {
	var top float64
	for _, t := range out {
		if t.Weight > top {
			top = t.Weight
		}
	}
	var sum float64
	for _, t := range out {
		sum += t.Weight / top
	}
	r := rng.Float64() * sum
	for _, t := range out {
		w := t.Weight / top
		if r < w {
			return t.To
		}
		r -= w
	}
	// rounding can leave r just past the final interval
	return out[len(out)-1].To
}
