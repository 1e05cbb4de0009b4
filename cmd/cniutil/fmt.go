package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cniutil/internal/driver"
	"cniutil/internal/format"
)

var fmtCmd = &cobra.Command{
	Use:     "fmt [flags] [FILE]",
	Aliases: []string{"format"},
	Short:   "Reformat a CNI file into a strict canonical form",
	Long:    `Fmt parses a CNI file ('-' means stdin) and prints a strictly formatted representation with sorted keys and section headings where they pay off`,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runFmt,
}

func init() {
	fmtCmd.Flags().IntP("section-threshold", "n", 0, "minimum entries in a section before a section heading is used (0=manifest or 10)")
}

func runFmt(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	d, err := resolveDialect(cmd, manifest)
	if err != nil {
		return err
	}

	threshold, err := cmd.Flags().GetInt("section-threshold")
	if err != nil {
		return fmt.Errorf("failed to get section-threshold flag: %w", err)
	}
	if !cmd.Flags().Changed("section-threshold") {
		threshold = 10
		if manifest != nil && manifest.Config.Format.SectionThreshold > 0 {
			threshold = manifest.Config.Format.SectionThreshold
		}
	}

	path := driver.StdinPath
	if len(args) == 1 {
		path = args[0]
	}

	m, err := driver.ParsePaths([]string{path}, driver.Options{Dialect: d})
	if err != nil {
		return err
	}

	format.Format(os.Stdout, m, threshold)
	return nil
}
