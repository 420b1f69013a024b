// Package config reads the YAML description of a sound graph.
//
// A config names a sound asset, a tempo and the graph itself:
//
//	audio: loop.wav
//	tempo: 120
//	events:
//	  - {duration: 1, pitch: 1, inskip: 0}
//	  - {duration: 0.5, pitch: 2, inskip: 1.5}
//	transitions:
//	  - {2: 1.0}
//	  - {1: 2.0, 2: 1.0}
//	edges:
//	  - [2, 1]
//	  - [1, 1, 0.5]
//
// Node i+1 takes its parameters from events[i] and its outgoing weights
// from transitions[i]. Edges are applied after transitions, in order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/rwelin/soundgraph"
)

const (
	DefaultStart = 1
	DefaultBeats = 16
)

type Event struct {
	Duration float64 `yaml:"duration"`
	Pitch    float64 `yaml:"pitch"`
	Inskip   float64 `yaml:"inskip"`
}

type Config struct {
	Audio       string            `yaml:"audio"`
	Tempo       float64           `yaml:"tempo"`
	Start       int               `yaml:"start,omitempty"`
	Beats       float64           `yaml:"beats,omitempty"`
	Events      []Event           `yaml:"events"`
	Transitions []map[int]float64 `yaml:"transitions"`
	Edges       []Edge            `yaml:"edges,omitempty"`

	// Dir is the directory of the file the config was read from.
	Dir string `yaml:"-"`
}

// Read parses and validates the config at filename.
func Read(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	c.Dir = filepath.Dir(filename)
	return c, nil
}

// Parse decodes and validates a config document. Start and Beats are
// defaulted when absent.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if c.Start == 0 {
		c.Start = DefaultStart
	}
	if c.Beats == 0 {
		c.Beats = DefaultBeats
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if !(c.Tempo > 0) {
		return fmt.Errorf("tempo must be positive, got %v", c.Tempo)
	}
	if len(c.Events) == 0 {
		return fmt.Errorf("no events")
	}
	if len(c.Transitions) > len(c.Events) {
		return fmt.Errorf("%d transition maps for %d events", len(c.Transitions), len(c.Events))
	}
	return nil
}

// AudioPath resolves Audio relative to the config's directory.
func (c *Config) AudioPath() string {
	if c.Audio == "" || filepath.IsAbs(c.Audio) || c.Dir == "" {
		return c.Audio
	}
	return filepath.Join(c.Dir, c.Audio)
}

func (c *Config) Nodes() []soundgraph.Node {
	nodes := make([]soundgraph.Node, len(c.Events))
	for i, e := range c.Events {
		nodes[i] = soundgraph.Node{
			ID:         i + 1,
			Duration:   e.Duration,
			PitchRatio: e.Pitch,
			Inskip:     e.Inskip,
		}
	}
	return nodes
}

// TransitionList flattens transitions and edges into explicit triples.
func (c *Config) TransitionList() []soundgraph.Transition {
	var ts []soundgraph.Transition
	for i, row := range c.Transitions {
		targets := make([]int, 0, len(row))
		for to := range row {
			targets = append(targets, to)
		}
		sort.Ints(targets)
		for _, to := range targets {
			ts = append(ts, soundgraph.Transition{From: i + 1, To: to, Weight: row[to]})
		}
	}
	for _, e := range c.Edges {
		ts = append(ts, e.Transition())
	}
	return ts
}

// Generation builds the root generation described by the config.
func (c *Config) Generation() (*soundgraph.Generation, error) {
	return soundgraph.Build(c.Nodes(), c.TransitionList())
}
