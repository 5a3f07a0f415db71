package commands

import (
	"sprint-health/internal/config"
	"sprint-health/internal/dataset"
	"sprint-health/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	verbose bool
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "sprint-health",
	Short: "Sprint health analytics over tracker exports",
	Long: `Computes per-sprint delivery metrics (status buckets, scope changes, status-transition
evenness) and a 0-100 health score from task, sprint and history exports, and serves them
over an HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if err := logging.AttachFile(cfg.LogDir); err != nil {
			return err
		}

		log.Info().
			Str("version", Version).
			Str("commit", Commit).
			Str("buildDate", BuildDate).
			Str("data", cfg.DataPath).
			Str("logs", cfg.LogDir).
			Msg("sprint-health starting")
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadDataset builds the dataset service and publishes the first snapshot.
func loadDataset() (*dataset.Service, error) {
	svc := dataset.NewService(cfg)
	if err := svc.Load(); err != nil {
		return nil, err
	}
	return svc, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.AddCommand(serveCmd, analyzeCmd, sprintsCmd)
}
