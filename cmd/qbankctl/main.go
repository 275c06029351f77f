// Command qbankctl runs maintenance tasks against the question bank.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yourusername/quizbank-api/internal/bootstrap"
	"github.com/yourusername/quizbank-api/internal/config"
	"github.com/yourusername/quizbank-api/internal/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "qbankctl",
		Short:         "Question bank maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.yaml"
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfig, "Path to the YAML config file")

	root.AddCommand(
		newCSVCmd(a),
		newAdminCmd(a),
		newTokenCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// open connects the configured stores and builds the services on top.
func (a *app) open(ctx context.Context) (*bootstrap.Repositories, *bootstrap.Services, error) {
	repos, err := bootstrap.OpenRepositories(ctx, a.cfg)
	if err != nil {
		return nil, nil, err
	}
	svcs, err := bootstrap.NewServices(a.cfg, repos)
	if err != nil {
		repos.Close()
		return nil, nil, err
	}
	return repos, svcs, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
