package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/examples"
)

var (
	walkFlagSet walkFlags
	walkJSON    bool
	walkExample string

	walkCmd = &cobra.Command{
		Use:   "walk [CONFIG]",
		Short: "Print one walk of the graph",
		Long: `Print one walk of the graph as a table or as JSON.

Instead of a config file a built-in example can be walked with --example.
Available examples: ` + strings.Join(examples.Names(), ", "),
		Example: `  soundgraph walk graph.yaml --seed 1
  soundgraph walk --example major --beats 8 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWalk,
	}
)

func init() {
	walkFlagSet.register(walkCmd)
	walkCmd.Flags().BoolVar(&walkJSON, "json", false, "print the timeline as JSON")
	walkCmd.Flags().StringVar(&walkExample, "example", "", "walk a built-in example instead of a config")
}

func loadWalkGeneration(args []string) (*soundgraph.Generation, *config.Config, error) {
	if walkExample != "" {
		g, err := examples.Get(walkExample)
		return g, &config.Config{Start: config.DefaultStart, Beats: config.DefaultBeats}, err
	}
	if len(args) == 0 {
		return nil, nil, errors.New("a config file or --example is required")
	}
	c, err := config.Read(args[0])
	if err != nil {
		return nil, nil, err
	}
	g, err := c.Generation()
	return g, c, err
}

func runWalk(cmd *cobra.Command, args []string) error {
	g, c, err := loadWalkGeneration(args)
	if err != nil {
		return err
	}
	wf := walkFlagSet.withDefaults(c)

	tl, err := g.Walk(wf.start, wf.beats, wf.rng())
	if err != nil {
		return err
	}
	return printTimeline(cmd.OutOrStdout(), tl, walkJSON)
}

func printTimeline(w io.Writer, tl soundgraph.Timeline, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tl)
	}
	fmt.Fprintf(w, "%-6s %-8s %-8s %-8s %s\n", "node", "start", "beats", "pitch", "skip")
	for _, e := range tl.Events {
		fmt.Fprintf(w, "%-6d %-8g %-8g %-8g %g\n", e.Node, e.StartBeat, e.DurationBeats, e.PitchRatio, e.SkipTime)
	}
	if tl.Terminated {
		fmt.Fprintf(w, "terminated at beat %g\n", tl.End())
	}
	return nil
}
