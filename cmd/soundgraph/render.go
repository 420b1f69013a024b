package main

import (
	"github.com/spf13/cobra"

	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/render"
	"github.com/rwelin/soundgraph/score"
)

var (
	renderFlags    walkFlags
	renderScore    string
	renderOut      string
	renderNoRender bool
	renderBinary   string

	renderCmd = &cobra.Command{
		Use:   "render CONFIG",
		Short: "Walk the graph once, write a Csound score and render it",
		Example: `  soundgraph render graph.yaml
  soundgraph render graph.yaml --seed 7 --beats 32 --out take7.wav`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
)

func init() {
	renderFlags.register(renderCmd)
	renderCmd.Flags().StringVar(&renderScore, "score", "temp.csd", "score file to write")
	renderCmd.Flags().StringVar(&renderOut, "out", "temp.wav", "audio file Csound writes")
	renderCmd.Flags().BoolVar(&renderNoRender, "no-render", false, "only write the score")
	renderCmd.Flags().StringVar(&renderBinary, "csound", render.DefaultBinary, "csound binary")
}

func runRender(cmd *cobra.Command, args []string) error {
	c, err := config.Read(args[0])
	if err != nil {
		return err
	}
	g, err := c.Generation()
	if err != nil {
		return err
	}
	wf := renderFlags.withDefaults(c)

	tl, err := g.Walk(wf.start, wf.beats, wf.rng())
	if err != nil {
		return err
	}
	if tl.Terminated {
		logger.Warn("walk reached a terminal node", "beats", tl.End(), "target", wf.beats)
	}

	err = score.WriteFile(renderScore, score.Score{
		Asset:  c.AudioPath(),
		Tempo:  c.Tempo,
		Output: renderOut,
		Events: tl.Events,
	})
	if err != nil {
		return err
	}
	logger.Info("score written", "path", renderScore, "events", len(tl.Events))

	if renderNoRender {
		return nil
	}
	r := render.NewCsound(logger)
	r.Binary = renderBinary
	if err := r.Render(cmd.Context(), renderScore); err != nil {
		return err
	}
	logger.Info("rendered", "path", renderOut)
	return nil
}
