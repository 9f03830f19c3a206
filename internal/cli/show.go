package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wiredhikari/eix/internal/models"
	"github.com/wiredhikari/eix/internal/output"
)

type showOptions struct {
	format string
	best   bool
	remote remoteOptions
}

func newShowCmd(opts *globalOptions) *cobra.Command {
	so := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show <category/name>",
		Short: "Show every version of one package",
		Long: `Show every version of one package with its slot, overlay and stability.
--best prints only the highest stable, unmasked version.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, so, args[0])
		},
	}
	cmd.Flags().StringVarP(&so.format, "output", "o", string(output.FormatTable), "Output format: table, json or yaml")
	cmd.Flags().BoolVar(&so.best, "best", false, "Only the best visible version")
	addStorageFlags(cmd)
	addRemoteFlags(cmd, &so.remote)
	return cmd
}

// splitFullName splits and validates "category/name"
func splitFullName(s string) (string, string, error) {
	category, name, ok := strings.Cut(s, "/")
	if !ok {
		return "", "", fmt.Errorf("package must be given as category/name, got %q", s)
	}
	if err := models.ValidateCategory(category); err != nil {
		return "", "", err
	}
	if err := models.ValidatePackageName(name); err != nil {
		return "", "", err
	}
	return category, name, nil
}

func noVisibleVersion(fullName string) error {
	return notFound(fmt.Errorf("no stable, unmasked version of %s", fullName))
}

func runShow(cmd *cobra.Command, opts *globalOptions, so *showOptions, fullName string) error {
	format, err := output.ParseFormat(so.format)
	if err != nil {
		return invalidArgs(err)
	}
	category, name, err := splitFullName(fullName)
	if err != nil {
		return invalidArgs(err)
	}
	fullName = category + "/" + name
	w := cmd.OutOrStdout()

	if c := so.remote.client(); c != nil {
		if so.best {
			v, err := c.Best(cmd.Context(), category, name)
			if err != nil {
				return remoteError(err)
			}
			return output.WriteBest(w, format, fullName, v, nil)
		}
		p, err := c.Package(cmd.Context(), category, name)
		if err != nil {
			return remoteError(err)
		}
		return output.WritePackage(w, format, p, nil)
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

	p := idx.Get(category, name)
	if p == nil {
		return notFound(fmt.Errorf("package %s not found", fullName))
	}
	if so.best {
		v := p.BestVisible()
		if v == nil {
			return noVisibleVersion(fullName)
		}
		return output.WriteBest(w, format, fullName, v, overlayLabels(idx))
	}
	if err := output.WritePackage(w, format, p, overlayLabels(idx)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
