package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cniutil/internal/dialect"
	"cniutil/internal/driver"
	"cniutil/internal/project"
)

// loadManifest finds the cniutil.toml manifest above the working directory.
// A missing manifest is not an error; the returned pointer is nil then.
func loadManifest() (*project.Manifest, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	manifest, found, err := project.Load(wd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return manifest, nil
}

// resolveDialect combines manifest defaults with explicitly set flags.
// A flag passed on the command line wins over the manifest either way,
// so --ini=false disables a manifest-enabled extension.
func resolveDialect(cmd *cobra.Command, manifest *project.Manifest) (dialect.Dialect, error) {
	d := manifest.Dialect()

	flags := cmd.Root().PersistentFlags()
	if flags.Changed("ini") {
		ini, err := flags.GetBool("ini")
		if err != nil {
			return dialect.Dialect{}, fmt.Errorf("failed to get ini flag: %w", err)
		}
		d.INI = ini
	}
	if flags.Changed("more-keys") {
		moreKeys, err := flags.GetBool("more-keys")
		if err != nil {
			return dialect.Dialect{}, fmt.Errorf("failed to get more-keys flag: %w", err)
		}
		d.MoreKeys = moreKeys
	}
	return d, nil
}

func resolveMaxDiagnostics(cmd *cobra.Command, manifest *project.Manifest) (int, error) {
	flags := cmd.Root().PersistentFlags()
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if maxDiagnostics > 0 {
		return maxDiagnostics, nil
	}
	if manifest != nil && manifest.Config.Lint.MaxDiagnostics > 0 {
		return manifest.Config.Lint.MaxDiagnostics, nil
	}
	return driver.DefaultMaxDiagnostics, nil
}

func resolveColor(cmd *cobra.Command) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(os.Stdout), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}
}

// inputPaths applies the stdin default and expands directory arguments.
func inputPaths(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{driver.StdinPath}
	}
	return driver.ExpandPaths(args)
}
