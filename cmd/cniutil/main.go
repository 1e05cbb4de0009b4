package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cniutil/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cniutil",
	Short: "Tooling for the CNI configuration format",
	Long:  `cniutil lints, dumps and reformats CNI configuration files`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().Bool("ini", false, "enable the ini compatibility extension")
	rootCmd.PersistentFlags().Bool("more-keys", false, "enable the more-keys extension")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show per file (0=default)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
