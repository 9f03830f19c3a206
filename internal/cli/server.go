package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wiredhikari/eix/internal/auth"
	"github.com/wiredhikari/eix/internal/config"
	"github.com/wiredhikari/eix/internal/server"
	"github.com/wiredhikari/eix/internal/server/handlers"
	"github.com/wiredhikari/eix/internal/storage"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the index over a read-only HTTP API",
		Long: `Start the HTTP server that answers package queries against the stored index.
Send SIGHUP to reload the index after 'eix update'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd, opts)
		},
	}
	cmd.Flags().String("host", "", "Listen address")
	cmd.Flags().Int("port", 0, "Listen port")
	addStorageFlags(cmd)
	return cmd
}

func runServer(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	logger.Info("Server starting",
		"version", cmd.Root().Version,
		"port", cfg.Server.Port,
		"config_file", opts.configFile,
		"storage_uri", cfg.Storage.URI,
		"storage_token", cfg.MaskToken(),
		"auth_type", cfg.Auth.Type)

	store, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage",
			"error", err,
			"storage_uri", cfg.Storage.URI)
		return err
	}

	authenticator, err := auth.New(cfg.Auth.Type, cfg.Auth.UsersFile, logger)
	if err != nil {
		store.Close()
		logger.Error("Failed to initialize authentication",
			"error", err,
			"auth_type", cfg.Auth.Type,
			"users_file", cfg.Auth.UsersFile)
		return fmt.Errorf("failed to initialize authentication: %w", err)
	}
	if cfg.Auth.Type == auth.TypeNone {
		logger.Info("Authentication disabled (auth.type=none)")
	}

	srv := newAPIServer(cfg, logger, store, authenticator)

	logger.Info("Server ready to accept connections",
		"address", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}
	return nil
}

// newAPIServer creates the server with every handler wired to its snapshot
func newAPIServer(cfg *config.Config, logger *slog.Logger, store storage.Store, authenticator auth.Authenticator) *server.Server {
	srv := server.NewServer(cfg, logger, store, authenticator)

	healthHandler := handlers.NewHealthHandler(srv.Snapshot(), logger)
	metricsHandler := handlers.NewMetricsHandler(nil)
	packageHandler := handlers.NewPackageHandler(srv.Snapshot(), logger)

	srv.SetHandlers(server.HandlerSet{
		Health:       healthHandler.GetHealth,
		Metrics:      metricsHandler.GetMetrics,
		ListPackages: packageHandler.ListPackages,
		GetPackage:   packageHandler.GetPackage,
		GetBest:      packageHandler.GetBest,
	})
	return srv
}
