package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/evolve"
	"github.com/rwelin/soundgraph/history"
	"github.com/rwelin/soundgraph/probe"
	"github.com/rwelin/soundgraph/render"
)

var (
	evolveFlags       walkFlags
	evolveGenerations int
	evolveEdgeProb    float64
	evolveNodeProb    float64
	evolveDir         string
	evolveDB          string
	evolveNoRender    bool
	evolveAssetLength float64

	evolveCmd = &cobra.Command{
		Use:   "evolve CONFIG",
		Short: "Render successive generations, mutating the graph between them",
		Long: `Render successive generations of the graph. After each generation every
edge weight is scaled by a random simple ratio with probability --edge-prob,
and every node is re-sliced or re-pitched with probability --node-prob.

One score (gen-000.csd, gen-001.csd, ...) and one audio file per generation
are written to --dir. With --db every generation is kept in a history
database that 'soundgraph history' can read.`,
		Example: `  soundgraph evolve graph.yaml --generations 8 --edge-prob 0.3 --node-prob 0.1
  soundgraph evolve graph.yaml --seed 5 --db runs/db --no-render`,
		Args: cobra.ExactArgs(1),
		RunE: runEvolve,
	}
)

func init() {
	evolveFlags.register(evolveCmd)
	evolveCmd.Flags().IntVarP(&evolveGenerations, "generations", "n", 4, "number of generations to play")
	evolveCmd.Flags().Float64Var(&evolveEdgeProb, "edge-prob", 0.25, "per-edge mutation probability")
	evolveCmd.Flags().Float64Var(&evolveNodeProb, "node-prob", 0.1, "per-node mutation probability")
	evolveCmd.Flags().StringVar(&evolveDir, "dir", ".", "output directory for scores and audio")
	evolveCmd.Flags().StringVar(&evolveDB, "db", "", "history database directory")
	evolveCmd.Flags().BoolVar(&evolveNoRender, "no-render", false, "only write scores")
	evolveCmd.Flags().Float64Var(&evolveAssetLength, "asset-length", 0, "asset length in seconds instead of probing the file")
}

func runEvolve(cmd *cobra.Command, args []string) error {
	if evolveGenerations < 1 {
		return fmt.Errorf("--generations must be at least 1")
	}
	c, err := config.Read(args[0])
	if err != nil {
		return err
	}
	g, err := c.Generation()
	if err != nil {
		return err
	}
	wf := evolveFlags.withDefaults(c)

	if err := os.MkdirAll(evolveDir, 0755); err != nil {
		return err
	}

	e := &evolve.Evolver{
		Asset:           c.AudioPath(),
		Tempo:           c.Tempo,
		Start:           wf.start,
		Beats:           wf.beats,
		EdgeProbability: evolveEdgeProb,
		NodeProbability: evolveNodeProb,
		Dir:             evolveDir,
		Probe:           probe.WAV{},
		Logger:          logger,
	}
	if evolveAssetLength > 0 {
		e.Probe = probe.Fixed(evolveAssetLength)
	}
	if !evolveNoRender {
		e.Renderer = render.NewCsound(logger)
	}
	if evolveDB != "" {
		h, err := history.Open(history.Config{Path: evolveDB, SyncWrites: true, Logger: logger})
		if err != nil {
			return err
		}
		defer h.Close()
		e.History = h
	}

	results, err := e.Run(cmd.Context(), g, evolveGenerations, wf.rng())
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d events\t%s\n", r.Generation.Index, r.Generation.ID, len(r.Timeline.Events), r.ScoreFile)
	}
	return nil
}
