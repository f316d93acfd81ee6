// Command linepulse analyzes worker performance from collector event logs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	service "github.com/okian/linepulse/internal/app"
	"github.com/okian/linepulse/internal/config"
	"github.com/okian/linepulse/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli carries state shared by every subcommand once the root has set it up.
type cli struct {
	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "linepulse",
		Short:         "Worker performance analysis over collector event logs",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd.Context())
		},
	}
	root.AddCommand(c.serveCmd(), c.syncCmd(), c.analyzeCmd(), c.productionCmd(), c.cacheCmd())
	return root
}

// setup initializes logging and loads configuration (defaults -> .env -> file -> env).
func (c *cli) setup(ctx context.Context) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	c.log = logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		c.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	c.cfg = cfg
	return nil
}

func (c *cli) service(ctx context.Context) (*service.Service, error) {
	svc, err := service.New(ctx, c.cfg, service.WithLogger(c.log.Named("service")))
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return svc, nil
}
