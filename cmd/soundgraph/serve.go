package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rwelin/soundgraph"
	"github.com/rwelin/soundgraph/api"
	"github.com/rwelin/soundgraph/config"
	"github.com/rwelin/soundgraph/history"
	"github.com/rwelin/soundgraph/probe"
)

var (
	serveAddr        string
	serveWatch       bool
	serveDB          string
	serveAssetLength float64

	serveCmd = &cobra.Command{
		Use:   "serve CONFIG",
		Short: "Serve walks, scores and mutations over HTTP",
		Long: `Serve the graph over HTTP:

  GET  /generation          current generation
  GET  /timeline            one walk (?seed=&beats=&start=)
  GET  /score               one walk as a Csound score
  POST /mutate              {"edge_probability":p,"node_probability":p,"seed":n}
  GET  /generations         generation history
  GET  /generations/{id}    one generation
  GET  /metrics             Prometheus metrics

Omitted start and beats come from the config. An explicit beats=0 gives an
empty timeline.

With --watch the graph, asset, tempo, start and beats are reloaded whenever
the config file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7999", "listen address")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the graph when the config changes")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "history database directory (default in memory)")
	serveCmd.Flags().Float64Var(&serveAssetLength, "asset-length", 0, "asset length in seconds instead of probing the file")
}

func assetProbe() soundgraph.DurationProbe {
	if serveAssetLength > 0 {
		return probe.Fixed(serveAssetLength)
	}
	return probe.WAV{}
}

func newSession(c *config.Config, hist *history.Store) (*api.Session, error) {
	s := api.NewSession(nil, hist, logger)
	if err := s.Load(c, assetProbe()); err != nil {
		return nil, err
	}
	return s, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	path := args[0]
	c, err := config.Read(path)
	if err != nil {
		return err
	}

	hcfg := history.Config{InMemory: true, Logger: logger}
	if serveDB != "" {
		hcfg = history.Config{Path: serveDB, SyncWrites: true, Logger: logger}
	}
	hist, err := history.Open(hcfg)
	if err != nil {
		return err
	}
	defer hist.Close()

	session, err := newSession(c, hist)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           api.NewHandler(session, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Info("listening", "addr", serveAddr, "generation", session.Generation().ID)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if serveWatch {
		eg.Go(func() error {
			return config.Watch(ctx, path, logger, func(c *config.Config) {
				g, err := c.Generation()
				if err != nil {
					logger.Warn("reloaded config has an invalid graph", "error", err)
					return
				}
				session.Reset(g)
				logger.Info("graph replaced", "generation", g.ID)
			})
		})
	}
	return eg.Wait()
}
