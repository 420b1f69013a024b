package api

import (
	"bytes"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/history"
	"github.com/rwelin/soundgraph/score"
)

// Session is the state behind a running server: the current generation and
// the parameters used to walk and score it. Generations are immutable, so
// walks run on a snapshot while mutations swap in a new one.
//
// The exported parameters may be set before the session is served. After
// that they change only through Load.
type Session struct {
	mu  sync.RWMutex
	gen *soundgraph.Generation

	Asset       string
	AssetLength float64 // seconds, bounds node slot mutations
	Tempo       float64
	Start       int
	Beats       float64

	History *history.Store
	Logger  *slog.Logger
}

func NewSession(g *soundgraph.Generation, hist *history.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{gen: g, History: hist, Logger: logger}
}

func (s *Session) Generation() *soundgraph.Generation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Reset replaces the current generation, e.g. after the config changed.
func (s *Session) Reset(g *soundgraph.Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen = g
	if s.History != nil {
		if err := s.History.Save(g); err != nil {
			s.Logger.Warn("save generation failed", "id", g.ID, "error", err)
		}
	}
}

// Load replaces the generation and every walk parameter with those of c.
// The asset is measured with probe before anything is swapped, so a config
// naming an unreadable asset leaves the session as it was.
func (s *Session) Load(c *config.Config, probe soundgraph.DurationProbe) error {
	g, err := c.Generation()
	if err != nil {
		return err
	}
	asset := c.AudioPath()
	length, err := probe.Duration(asset)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.gen = g
	s.Asset = asset
	s.AssetLength = length
	s.Tempo = c.Tempo
	s.Start = c.Start
	s.Beats = c.Beats
	s.mu.Unlock()

	if s.History != nil {
		if err := s.History.Save(g); err != nil {
			s.Logger.Warn("save generation failed", "id", g.ID, "error", err)
		}
	}
	s.Logger.Info("config loaded", "generation", g.ID, "asset", asset, "tempo", c.Tempo, "start", c.Start)
	return nil
}

// walkState is a consistent copy of what a walk and its score need.
type walkState struct {
	gen   *soundgraph.Generation
	asset string
	tempo float64
	start int
	beats float64
}

func (s *Session) state() walkState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return walkState{gen: s.gen, asset: s.Asset, tempo: s.Tempo, start: s.Start, beats: s.Beats}
}

func rngFor(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (s *Session) Walk(p WalkParams) (soundgraph.Timeline, error) {
	return s.walk(s.state(), p)
}

func (s *Session) walk(st walkState, p WalkParams) (soundgraph.Timeline, error) {
	start := p.Start
	if start == 0 {
		start = st.start
	}
	beats := st.beats
	if p.Beats != nil {
		beats = *p.Beats
	}
	tl, err := st.gen.Walk(start, beats, rngFor(p.Seed))
	if err != nil {
		return tl, err
	}
	s.Logger.Debug("walk", "generation", st.gen.ID, "start", start, "beats", beats, "events", len(tl.Events))
	return tl, nil
}

func (s *Session) Score(p WalkParams) ([]byte, error) {
	st := s.state()
	tl, err := s.walk(st, p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = score.Write(&buf, score.Score{
		Asset:  st.asset,
		Tempo:  st.tempo,
		Output: "out.wav",
		Events: tl.Events,
	})
	return buf.Bytes(), err
}

func (s *Session) Mutate(req MutateRequest) (*soundgraph.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.gen.Mutate(soundgraph.MutateOptions{
		EdgeProbability: req.EdgeProbability,
		NodeProbability: req.NodeProbability,
		AssetLength:     s.AssetLength,
	}, rngFor(req.Seed))
	if err != nil {
		return nil, err
	}
	if s.History != nil {
		if err := s.History.Save(next); err != nil {
			return nil, err
		}
	}
	s.Logger.Info("generation mutated", "parent", s.gen.ID, "id", next.ID, "index", next.Index)
	s.gen = next
	return next, nil
}

func (s *Session) Generations() ([]history.Summary, error) {
	if s.History == nil {
		g := s.Generation()
		return []history.Summary{{
			ID:       g.ID,
			ParentID: g.ParentID,
			Index:    g.Index,
			Created:  g.Created,
			Nodes:    g.Nodes().Len(),
			Edges:    g.Matrix().Len(),
		}}, nil
	}
	return s.History.List()
}

func (s *Session) LoadGeneration(id string) (*soundgraph.Generation, error) {
	if s.History == nil {
		if g := s.Generation(); g.ID == id {
			return g, nil
		}
		return nil, history.ErrNotFound
	}
	return s.History.Get(id)
}
