package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wiredhikari/eix/internal/cache"
	"github.com/wiredhikari/eix/internal/mask"
	"github.com/wiredhikari/eix/internal/output"
	"github.com/wiredhikari/eix/internal/scanner"
)

func newUpdateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Scan the trees and save a new index",
		Long: `Scan the primary tree and every overlay, read the metadata cache of each
version and save the resulting index to the configured storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts)
		},
	}

	cmd.Flags().String("portdir", "", "Primary tree (overlay id 0)")
	cmd.Flags().StringSlice("overlay", nil, "Overlay tree, ids 1..n in order (repeatable)")
	cmd.Flags().String("arch", "", "Architecture keyword used for stability")
	cmd.Flags().String("cache-method", "", "Metadata cache layout: flat or md5-dict")
	cmd.Flags().Int("workers", 0, "Packages scanned in parallel")
	addStorageFlags(cmd)
	return cmd
}

func runUpdate(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	reader, err := cache.NewReader(cfg.Cache.Method)
	if err != nil {
		return invalidArgs(err)
	}

	masks, err := mask.LoadSet(cfg.Profile.MaskFiles, cfg.Profile.PackagesFiles)
	if err != nil {
		// bad lines are dropped; the rest of each file still applies
		logger.Warn("Profile files contain errors", "error", err)
	}

	s, err := scanner.New(scanner.Options{
		Trees:          trees(cfg),
		CacheDir:       cfg.Cache.Dir,
		Reader:         reader,
		Arch:           cfg.Tree.Arch,
		AcceptKeywords: cfg.Tree.AcceptKeywords,
		Masks:          masks,
		Workers:        cfg.Scan.Workers,
	}, logger)
	if err != nil {
		return invalidArgs(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Update starting",
		"portdir", cfg.Tree.Portdir,
		"overlays", len(cfg.Tree.Overlays),
		"cache_method", cfg.Cache.Method,
		"storage_uri", cfg.Storage.URI,
		"storage_token", cfg.MaskToken())

	result, err := s.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, result.Index); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	st := result.Stats
	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Indexed %d packages (%d versions) from %d trees in %s",
		st.Packages, st.Versions, len(result.Index.Overlays), result.Duration.Round(time.Millisecond)))
	if skipped := st.Malformed + st.CacheErrors; skipped > 0 {
		output.PrintWarning(cmd.OutOrStdout(), fmt.Sprintf("Skipped %d versions (%d malformed, %d without cache entry)",
			skipped, st.Malformed, st.CacheErrors))
	}
	if st.MetadataErrors > 0 {
		output.PrintWarning(cmd.OutOrStdout(), fmt.Sprintf("%d versions indexed without metadata", st.MetadataErrors))
	}
	return nil
}
