package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cniutil/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show cniutil build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOut, err := cmd.Flags().GetBool("json")
		if err != nil {
			return fmt.Errorf("failed to get json flag: %w", err)
		}
		if !jsonOut {
			fmt.Fprintln(os.Stdout, version.Full())
			return nil
		}
		payload := versionPayload{
			Tool:      "cniutil",
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildDate: version.BuildDate,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "machine readable output")
}
