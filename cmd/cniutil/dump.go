package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/vmihailenco/msgpack/v5"

	"cniutil/internal/driver"
	"cniutil/internal/format"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [flags] [FILES...]",
	Short: "Read CNI files and show the combined result",
	Long:  `Dump parses CNI files ('-' means stdin), merges them with later files overwriting earlier keys, and prints the flat key-value result`,
	RunE:  runDump,
}

func init() {
	dumpCmd.Flags().String("format", "cni", "output format (cni|csv|null|json|msgpack)")
	dumpCmd.Flags().String("prefix", "", "custom line prefix, overrides --format")
	dumpCmd.Flags().String("infix", " ", "custom key-value separator, overrides --format")
	dumpCmd.Flags().String("postfix", "\n", "custom line postfix, overrides --format")
}

func runDump(cmd *cobra.Command, args []string) error {
	outFormat, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	d, err := resolveDialect(cmd, manifest)
	if err != nil {
		return err
	}

	paths, err := inputPaths(args)
	if err != nil {
		return err
	}

	merged, err := driver.ParsePaths(paths, driver.Options{Dialect: d})
	if err != nil {
		return err
	}

	custom := cmd.Flags().Changed("prefix") ||
		cmd.Flags().Changed("infix") ||
		cmd.Flags().Changed("postfix")
	if custom {
		prefix, _ := cmd.Flags().GetString("prefix")
		infix, _ := cmd.Flags().GetString("infix")
		postfix, _ := cmd.Flags().GetString("postfix")
		dumpCustom(os.Stdout, merged, prefix, infix, postfix)
		return nil
	}

	switch outFormat {
	case "cni":
		for _, key := range slices.Sorted(maps.Keys(merged)) {
			fmt.Fprintf(os.Stdout, "%s = %s\n", key, format.Value(merged[key]))
		}
	case "csv":
		dumpCustom(os.Stdout, merged, "", ",\"", "\"\n")
	case "null":
		dumpCustom(os.Stdout, merged, "", "=", "\x00")
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(merged); err != nil {
			return fmt.Errorf("failed to encode json output: %w", err)
		}
	case "msgpack":
		encoder := msgpack.NewEncoder(os.Stdout)
		encoder.SetSortMapKeys(true)
		if err := encoder.Encode(merged); err != nil {
			return fmt.Errorf("failed to encode msgpack output: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", outFormat)
	}
	return nil
}

func dumpCustom(w io.Writer, m map[string]string, prefix, infix, postfix string) {
	for _, key := range slices.Sorted(maps.Keys(m)) {
		fmt.Fprintf(w, "%s%s%s%s%s", prefix, key, infix, m[key], postfix)
	}
}
