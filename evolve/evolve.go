// Package evolve runs the generate, render and mutate loop over successive
// generations of a sound graph.
package evolve

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/render"
	"github.com/rwelin/soundgraph/score"
)

var generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "soundgraph_generations_total",
	Help: "Generations produced by evolution runs",
})

// Saver stores generations. *history.Store implements it.
type Saver interface {
	Save(g *soundgraph.Generation) error
}

type Evolver struct {
	Asset string
	Tempo float64
	Start int
	Beats float64

	EdgeProbability float64
	NodeProbability float64

	// Dir receives one score (and, if rendered, one audio file) per
	// generation.
	Dir string

	Probe    soundgraph.DurationProbe
	Renderer render.Renderer // nil skips rendering
	History  Saver           // nil keeps no history
	Logger   *slog.Logger
}

// Result describes one evolved generation.
type Result struct {
	Generation *soundgraph.Generation
	Timeline   soundgraph.Timeline
	ScoreFile  string
	AudioFile  string
}

// Run plays n generations starting with g. The generation after the last
// one played is not produced.
func (e *Evolver) Run(ctx context.Context, g *soundgraph.Generation, n int, rng soundgraph.Rand) ([]Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	length, err := e.Probe.Duration(e.Asset)
	if err != nil {
		return nil, err
	}
	logger.Debug("asset probed", "asset", e.Asset, "seconds", length)

	opts := soundgraph.MutateOptions{
		EdgeProbability: e.EdgeProbability,
		NodeProbability: e.NodeProbability,
		AssetLength:     length,
	}

	results := make([]Result, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := e.play(ctx, g, i, rng)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		generationsTotal.Inc()
		logger.Info("generation played",
			"index", g.Index,
			"id", g.ID,
			"events", len(res.Timeline.Events),
			"terminated", res.Timeline.Terminated,
			"score", res.ScoreFile)

		if i == n-1 {
			break
		}
		g, err = g.Mutate(opts, rng)
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

func (e *Evolver) play(ctx context.Context, g *soundgraph.Generation, i int, rng soundgraph.Rand) (Result, error) {
	tl, err := g.Walk(e.Start, e.Beats, rng)
	if err != nil {
		return Result{}, fmt.Errorf("generation %d: %w", g.Index, err)
	}

	res := Result{
		Generation: g,
		Timeline:   tl,
		ScoreFile:  filepath.Join(e.Dir, fmt.Sprintf("gen-%03d.csd", i)),
		AudioFile:  filepath.Join(e.Dir, fmt.Sprintf("gen-%03d.wav", i)),
	}
	err = score.WriteFile(res.ScoreFile, score.Score{
		Asset:  e.Asset,
		Tempo:  e.Tempo,
		Output: res.AudioFile,
		Events: tl.Events,
	})
	if err != nil {
		return res, err
	}

	if e.History != nil {
		if err := e.History.Save(g); err != nil {
			return res, fmt.Errorf("save generation %d: %w", g.Index, err)
		}
	}
	if e.Renderer != nil {
		if err := e.Renderer.Render(ctx, res.ScoreFile); err != nil {
			return res, err
		}
	}
	return res, nil
}
