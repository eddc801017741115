package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-connection/internal/app"
	"github.com/samvad-hq/samvad-connection/internal/config"
	"github.com/samvad-hq/samvad-connection/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "connctl failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

type globalFlags struct {
	baseEndpoint string
	storageType  string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "connctl",
		Short:         "Run requests with offline fallback and inspect the offline store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.baseEndpoint, "base-endpoint", "", "override BASE_ENDPOINT")
	root.PersistentFlags().StringVar(&flags.storageType, "storage", "", "override STORAGE_TYPE (none, memory, bbolt, sqlite)")

	root.AddCommand(newFetchCmd(flags))
	root.AddCommand(newPostsCmd(flags))
	root.AddCommand(newCacheCmd(flags))
	return root
}

// session holds what every command needs: config, logger and runtime.
type session struct {
	cfg *config.Config
	log logger.Logger
	rt  *app.Runtime
}

func openSession(ctx context.Context, flags *globalFlags) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.baseEndpoint != "" {
		cfg.BaseEndpoint = flags.baseEndpoint
	}
	if flags.storageType != "" {
		cfg.StorageType = flags.storageType
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("connctl starting", "config", cfg)

	rt, err := app.NewRuntime(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		_ = logger.Close()
		return nil, err
	}
	return &session{cfg: cfg, log: log, rt: rt}, nil
}

func (s *session) close() {
	if err := s.rt.Close(); err != nil {
		s.log.ErrorObj("runtime close failed", "error", err.Error())
	}
	_ = logger.Close()
}
