// Package cli wires configuration, scanning, storage and the query API into
// the eix command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wiredhikari/eix/internal/client"
	"github.com/wiredhikari/eix/internal/config"
	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/server"
	"github.com/wiredhikari/eix/internal/storage"
	"github.com/wiredhikari/eix/internal/version"
)

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configFile string
}

// flagKeys maps command line flags onto configuration keys. A flag only
// overrides the file and environment when it is set.
var flagKeys = map[string]string{
	"log-level":     "logging.level",
	"log-format":    "logging.format",
	"storage-uri":   "storage.uri",
	"storage-token": "storage.token",
	"portdir":       "tree.portdir",
	"overlay":       "tree.overlays",
	"arch":          "tree.arch",
	"cache-method":  "cache.method",
	"workers":       "scan.workers",
	"host":          "server.host",
	"port":          "server.port",
}

// NewRootCmd builds the eix command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "eix",
		Short: "Index and search portage trees",
		Long: `eix scans a portage tree and its overlays, reads the metadata cache of every
package version and stores the result as one index. The index can be searched
from the command line or served read-only over HTTP.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to configuration file (optional, can also use "+config.ConfigFileEnv+" env var)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "", "Log format: json or text")

	root.AddCommand(newUpdateCmd(opts))
	root.AddCommand(newSearchCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newAuthCmd())

	root.SetVersionTemplate(`{{.Version}}
`)
	return root
}

// addStorageFlags registers the flags every command reading or writing the index takes
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().String("storage-uri", "", "Index location (file://, s3://, s3+http:// or oci://)")
	cmd.Flags().String("storage-token", "", "Storage credentials (or use EIX_STORAGE_TOKEN env var)")
}

// remoteOptions select a server instead of the local index
type remoteOptions struct {
	server  string
	token   string
	timeout time.Duration
}

func addRemoteFlags(cmd *cobra.Command, ro *remoteOptions) {
	cmd.Flags().StringVar(&ro.server, "server", "", "Query an eix server instead of the local index (or use "+client.URLEnvVar+" env var)")
	cmd.Flags().StringVar(&ro.token, "server-token", "", "Server credentials in 'user:password' format (or use "+client.TokenEnvVar+" env var)")
	cmd.Flags().DurationVar(&ro.timeout, "timeout", 30*time.Second, "Server request timeout")
}

// client returns nil when no server is configured
func (ro *remoteOptions) client() *client.Client {
	u := client.ResolveURL(ro.server)
	if u == "" {
		return nil
	}
	return client.NewClient(u, client.ResolveToken(ro.token), ro.timeout)
}

// remoteError maps server answers onto exit codes
func remoteError(err error) error {
	switch {
	case client.IsNotFound(err):
		return notFound(err)
	case client.IsBadRequest(err):
		return invalidArgs(err)
	}
	return err
}

// loadViper reads the config file and environment and binds the flags cmd has
func loadViper(cmd *cobra.Command, opts *globalOptions) (*viper.Viper, error) {
	v := config.NewViper()
	if err := config.ReadConfigFile(v, opts.configFile); err != nil {
		return nil, invalidArgs(err)
	}
	for flag, key := range flagKeys {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", flag, err)
			}
		}
	}
	return v, nil
}

// loadConfig resolves and validates configuration for cmd
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	v, err := loadViper(cmd, opts)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, invalidArgs(fmt.Errorf("failed to load configuration: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, invalidArgs(fmt.Errorf("invalid configuration: %w", err))
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return server.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
}

// openStore creates the Store named by storage.uri
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	uri, err := cfg.GetParsedStorageURI()
	if err != nil {
		return nil, invalidArgs(fmt.Errorf("invalid storage URI: %w", err))
	}
	store, err := storage.NewStorage(ctx, uri, cfg.Storage.Token, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

// loadIndex opens the configured store and loads the index from it
func loadIndex(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*models.Index, error) {
	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	idx, err := store.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notFound(fmt.Errorf("no index at %s; run 'eix update' first", cfg.Storage.URI))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	return idx, nil
}

// trees lists the primary tree followed by the overlays, with ids 0..n
func trees(cfg *config.Config) []models.Overlay {
	paths := append([]string{cfg.Tree.Portdir}, cfg.Tree.Overlays...)
	out := make([]models.Overlay, len(paths))
	for i, p := range paths {
		out[i] = models.Overlay{ID: version.Overlay(i), Label: repoName(p), Path: p}
	}
	return out
}

// repoName reads profiles/repo_name, falling back to the directory name
func repoName(tree string) string {
	data, err := os.ReadFile(filepath.Join(tree, "profiles", "repo_name"))
	if err == nil {
		if name := strings.TrimSpace(string(data)); name != "" {
			return name
		}
	}
	return filepath.Base(filepath.Clean(tree))
}

// overlayLabels maps overlay ids to display labels
func overlayLabels(idx *models.Index) map[int]string {
	labels := make(map[int]string, len(idx.Overlays))
	for _, o := range idx.Overlays {
		labels[int(o.ID)] = o.Label
	}
	return labels
}
