package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/logging"
)

var (
	logLevel string
	logJSON  bool

	logger = logging.Discard()

	rootCmd = &cobra.Command{
		Use:   "soundgraph",
		Short: "Sequence sound file slices with weighted random walks and render them with Csound",
		Long: `soundgraph reads a graph of sound events from a YAML file, walks it at
random following the transition weights, and writes the result as a Csound
score that plays slices of a single sound file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = logging.New(logging.Config{Level: level, JSON: logJSON})
			slog.SetDefault(logger)
			return nil
		},
	}
)

// walkFlags are shared by the commands that walk a graph.
type walkFlags struct {
	seed  int64
	beats float64
	start int
}

func (f *walkFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed, 0 seeds from the clock")
	cmd.Flags().Float64Var(&f.beats, "beats", 0, "target length in beats (default from config)")
	cmd.Flags().IntVar(&f.start, "start", 0, "start node (default from config)")
}

// withDefaults fills unset flags from c.
func (f walkFlags) withDefaults(c *config.Config) walkFlags {
	if f.beats == 0 {
		f.beats = c.Beats
	}
	if f.start == 0 {
		f.start = c.Start
	}
	return f
}

func (f walkFlags) rng() *rand.Rand {
	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Debug("random source", "seed", seed)
	return rand.New(rand.NewSource(seed))
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON")

	rootCmd.AddCommand(renderCmd, walkCmd, evolveCmd, serveCmd, historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
