package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wiredhikari/eix/internal/config"
	"github.com/wiredhikari/eix/internal/output"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	var defaults, redundant bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print configuration",
		Long: `Print the effective configuration as YAML. --defaults lists every option
with its type and default value; --redundant shows the resolved redundancy checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case defaults && redundant:
				return invalidArgs(fmt.Errorf("--defaults and --redundant are mutually exclusive"))
			case defaults:
				return printDefaults(cmd)
			case redundant:
				return printRedundant(cmd, opts)
			}
			return printEffective(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "List every option with its default")
	cmd.Flags().BoolVar(&redundant, "redundant", false, "Show resolved redundancy policies")
	return cmd
}

func formatDefault(v any) string {
	switch d := v.(type) {
	case []string:
		if len(d) == 0 {
			return "-"
		}
		return strings.Join(d, ",")
	case string:
		if d == "" {
			return "-"
		}
		return d
	}
	return fmt.Sprint(v)
}

func printDefaults(cmd *cobra.Command) error {
	table := output.NewTableWriter(cmd.OutOrStdout())
	table.WriteHeader("KEY", "TYPE", "DEFAULT", "DESCRIPTION")
	for _, o := range config.Defaults() {
		table.WriteRow(o.Key, o.Type, formatDefault(o.Default), o.Description)
	}
	return table.Flush()
}

func printRedundant(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	flags := cfg.RedundantFlags(newLogger(cmd, cfg))

	table := output.NewTableWriter(cmd.OutOrStdout())
	table.WriteHeader("CHECK", "POLICY", "DESCRIPTION")
	for _, r := range config.RedundancyTypes {
		table.WriteRow(r.Key, flags.Policy(r.Type), r.Description)
	}
	return table.Flush()
}

// printEffective prints every setting after file, environment and flags are merged
func printEffective(cmd *cobra.Command, opts *globalOptions) error {
	v, err := loadViper(cmd, opts)
	if err != nil {
		return err
	}
	if v.GetString("storage.token") != "" {
		v.Set("storage.token", "***")
	}

	// yaml.v3 sorts map keys
	return output.WriteYAML(cmd.OutOrStdout(), v.AllSettings())
}
