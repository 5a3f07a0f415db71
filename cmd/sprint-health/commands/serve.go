package commands

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"sprint-health/internal/api"
	"sprint-health/internal/stats"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var openBrowser bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the metrics HTTP API (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Data and policy
	data, err := loadDataset()
	if err != nil {
		return err
	}
	policy, err := stats.LoadHealthPolicy(cfg.HealthPolicyPath)
	if err != nil {
		return err
	}

	server, err := api.NewServer(cfg, data, policy)
	if err != nil {
		return err
	}

	// 2. Server and watcher share one lifetime
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})
	if cfg.WatchData {
		g.Go(func() error {
			return data.Watch(ctx)
		})
	}

	if openBrowser {
		url := "http://" + localAddr(cfg.HTTPAddr) + "/api/health"
		if err := browser.OpenURL(url); err != nil {
			log.Warn().Err(err).Str("url", url).Msg("Failed to open browser")
		}
	}

	return g.Wait()
}

// localAddr turns a listen address such as ":8000" into a dialable host:port.
func localAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

func init() {
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "open the health endpoint in a browser once serving")
}
