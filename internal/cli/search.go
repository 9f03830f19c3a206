package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/output"
	"github.com/wiredhikari/eix/internal/query"
	"github.com/wiredhikari/eix/internal/version"
)

type searchOptions struct {
	fields     []string
	category   string
	duplicates string
	overlay    int
	slotsMany  bool
	system     bool
	stable     bool
	format     string
	remote     remoteOptions
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [pattern]",
		Short: "Search the index",
		Long: `Search the index. The pattern is a case-insensitive regular expression matched
against the package name unless --field says otherwise. All filters must hold.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, opts, so, args)
		},
	}

	cmd.Flags().StringSliceVarP(&so.fields, "field", "f", nil, "Field the pattern is matched against: name, description, homepage, license, provide (repeatable)")
	cmd.Flags().StringVar(&so.category, "category", "", "Only this category")
	cmd.Flags().StringVar(&so.duplicates, "dup", "", "Only packages with this duplicate status: none, some, overlays")
	cmd.Flags().IntVar(&so.overlay, "overlay", -1, "Only packages with a version from this overlay id")
	cmd.Flags().BoolVar(&so.slotsMany, "slots-many", false, "Only packages using more than one slot")
	cmd.Flags().BoolVar(&so.system, "system", false, "Only system packages")
	cmd.Flags().BoolVar(&so.stable, "stable", false, "Only packages with a stable, unmasked version")
	cmd.Flags().StringVarP(&so.format, "output", "o", string(output.FormatTable), "Output format: table, json or yaml")
	addStorageFlags(cmd)
	addRemoteFlags(cmd, &so.remote)
	return cmd
}

func (so *searchOptions) criteria(args []string) (query.Criteria, error) {
	c := query.Criteria{
		Fields:     so.fields,
		Category:   so.category,
		SlotsMany:  so.slotsMany,
		SystemOnly: so.system,
		StableOnly: so.stable,
	}
	if len(args) > 0 {
		c.Pattern = args[0]
	}
	if so.duplicates != "" {
		d, err := models.ParseDuplicateStatus(so.duplicates)
		if err != nil {
			return c, err
		}
		c.Duplicates = &d
	}
	if so.overlay >= 0 {
		o := version.Overlay(so.overlay)
		c.Overlay = &o
	}
	return c, nil
}

func runSearch(cmd *cobra.Command, opts *globalOptions, so *searchOptions, args []string) error {
	format, err := output.ParseFormat(so.format)
	if err != nil {
		return invalidArgs(err)
	}
	criteria, err := so.criteria(args)
	if err != nil {
		return invalidArgs(err)
	}

	if c := so.remote.client(); c != nil {
		summaries, err := c.Search(cmd.Context(), criteria)
		if err != nil {
			return remoteError(err)
		}
		return output.WriteSummaries(cmd.OutOrStdout(), format, summaries)
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	idx, err := loadIndex(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	pkgs, err := query.Run(idx, criteria)
	if err != nil {
		return invalidArgs(err)
	}
	if err := output.WritePackages(cmd.OutOrStdout(), format, pkgs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
