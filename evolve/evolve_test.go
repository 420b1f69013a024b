package evolve

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/history"
	"github.com/rwelin/soundgraph/probe"
)

type recordingRenderer struct {
	scores []string
	err    error
}

func (r *recordingRenderer) Render(_ context.Context, scoreFile string) error {
	r.scores = append(r.scores, scoreFile)
	return r.err
}

func ring(t *testing.T) *soundgraph.Generation {
	t.Helper()
	g, err := soundgraph.Build([]soundgraph.Node{
		{ID: 1, Duration: 1, PitchRatio: 1},
		{ID: 2, Duration: 0.5, PitchRatio: 2, Inskip: 1},
		{ID: 3, Duration: 1, PitchRatio: 0.5, Inskip: 2},
	}, []soundgraph.Transition{
		{From: 1, To: 2, Weight: 1},
		{From: 2, To: 3, Weight: 1},
		{From: 3, To: 1, Weight: 1},
		{From: 3, To: 3, Weight: 1},
	})
	require.NoError(t, err)
	return g
}

func TestRun(t *testing.T) {
	h, err := history.Open(history.Config{InMemory: true})
	require.NoError(t, err)
	defer h.Close()

	r := &recordingRenderer{}
	e := &Evolver{
		Asset:           "loop.wav",
		Tempo:           120,
		Start:           1,
		Beats:           8,
		EdgeProbability: 0.5,
		NodeProbability: 0.5,
		Dir:             t.TempDir(),
		Probe:           probe.Fixed(4),
		Renderer:        r,
		History:         h,
	}

	g := ring(t)
	results, err := e.Run(context.Background(), g, 3, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, i, res.Generation.Index)
		assert.NotEmpty(t, res.Timeline.Events)
		_, err := os.Stat(res.ScoreFile)
		assert.NoError(t, err)
		if i > 0 {
			assert.Equal(t, results[i-1].Generation.ID, res.Generation.ParentID)
		}
	}
	assert.Len(t, r.scores, 3)
	assert.Equal(t, g.ID, results[0].Generation.ID)

	list, err := h.List()
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRunProbeFailure(t *testing.T) {
	e := &Evolver{
		Asset: "missing.wav",
		Tempo: 120,
		Start: 1,
		Beats: 4,
		Dir:   t.TempDir(),
		Probe: probe.WAV{},
	}
	_, err := e.Run(context.Background(), ring(t), 2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, soundgraph.ErrAssetUnreadable)
}

func TestRunProbesAsset(t *testing.T) {
	var probed []string
	e := &Evolver{
		Asset: "loop.wav",
		Tempo: 120,
		Start: 1,
		Beats: 4,
		Dir:   t.TempDir(),
		Probe: soundgraph.ProbeFunc(func(asset string) (float64, error) {
			probed = append(probed, asset)
			return 3, nil
		}),
	}
	results, err := e.Run(context.Background(), ring(t), 2, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"loop.wav"}, probed)
}

func TestRunStopsOnRenderError(t *testing.T) {
	boom := errors.New("boom")
	e := &Evolver{
		Asset:    "loop.wav",
		Tempo:    120,
		Start:    1,
		Beats:    4,
		Dir:      t.TempDir(),
		Probe:    probe.Fixed(2),
		Renderer: &recordingRenderer{err: boom},
	}
	results, err := e.Run(context.Background(), ring(t), 3, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, results)
}

func TestRunInvalidProbability(t *testing.T) {
	e := &Evolver{
		Asset:           "loop.wav",
		Tempo:           120,
		Start:           1,
		Beats:           4,
		EdgeProbability: 2,
		Dir:             t.TempDir(),
		Probe:           probe.Fixed(2),
	}
	results, err := e.Run(context.Background(), ring(t), 2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, soundgraph.ErrInvalidProbability)
	assert.Len(t, results, 1)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &Evolver{Asset: "a.wav", Tempo: 1, Start: 1, Beats: 1, Dir: t.TempDir(), Probe: probe.Fixed(1)}
	_, err := e.Run(ctx, ring(t), 2, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, context.Canceled)
}
