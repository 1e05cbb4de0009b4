package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"cniutil/internal/diag"
	"cniutil/internal/diagfmt"
	"cniutil/internal/driver"
	"cniutil/internal/source"
	"cniutil/internal/ui"
)

var lintCmd = &cobra.Command{
	Use:   "lint [flags] [FILES|DIR...]",
	Short: "Comment on validity and style of CNI files",
	Long:  `Lint reads CNI files ('-' means stdin, directories are walked for *.cni files) and reports syntax errors and style issues`,
	RunE:  runLint,
}

func init() {
	lintCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	lintCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	lintCmd.Flags().String("ui", "off", "interactive progress display (auto|on|off)")
	lintCmd.Flags().Bool("no-context", false, "omit source context lines from pretty output")
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	noContext, err := cmd.Flags().GetBool("no-context")
	if err != nil {
		return fmt.Errorf("failed to get no-context flag: %w", err)
	}

	manifest, err := loadManifest()
	if err != nil {
		return err
	}
	d, err := resolveDialect(cmd, manifest)
	if err != nil {
		return err
	}
	maxDiagnostics, err := resolveMaxDiagnostics(cmd, manifest)
	if err != nil {
		return err
	}
	useColor, err := resolveColor(cmd)
	if err != nil {
		return err
	}

	paths, err := inputPaths(args)
	if err != nil {
		return err
	}

	opts := driver.Options{
		Dialect:        d,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           jobs,
	}

	var (
		fileSet *source.FileSet
		results []driver.LintResult
	)
	if format == "pretty" && shouldUseTUI(mode, len(paths)) {
		fileSet, results, err = lintWithUI(cmd.Context(), paths, opts)
	} else {
		fileSet, results, err = driver.LintPaths(cmd.Context(), paths, opts)
	}
	if err != nil {
		return err
	}

	exit := 0
	for _, r := range results {
		if r.Bag.HasErrors() {
			exit = 1
			break
		}
	}

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{Color: useColor, Context: !noContext}
		showHeaders := len(results) > 1
		for idx, r := range results {
			if showHeaders {
				if idx > 0 {
					fmt.Fprintln(os.Stdout)
				}
				fmt.Fprintf(os.Stdout, "%s\n", r.Path)
			}
			diagfmt.Pretty(os.Stdout, r.Bag, lintResultFile(fileSet, r), prettyOpts)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{}
		if len(results) == 1 {
			r := results[0]
			if err := diagfmt.JSON(os.Stdout, r.Bag, lintResultFile(fileSet, r), jsonOpts); err != nil {
				return fmt.Errorf("failed to format diagnostics: %w", err)
			}
			break
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[r.Path] = diagfmt.BuildDiagnosticsOutput(r.Bag, lintResultFile(fileSet, r), jsonOpts)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if exit != 0 {
		// diagnostics were already printed, suppress cobra's own output
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

// lintResultFile resolves the source file behind a result. Results whose
// load failed carry no file; context printing is skipped for them.
func lintResultFile(fileSet *source.FileSet, r driver.LintResult) *source.File {
	if hasLoadFailure(r.Bag) {
		return nil
	}
	return fileSet.Get(r.FileID)
}

type lintOutcome struct {
	fileSet *source.FileSet
	results []driver.LintResult
	err     error
}

func lintWithUI(ctx context.Context, paths []string, opts driver.Options) (*source.FileSet, []driver.LintResult, error) {
	events := make(chan ui.Event, 256)
	outcomeCh := make(chan lintOutcome, 1)

	opts.Progress = func(r driver.LintResult) {
		ev := ui.Event{File: r.Path, Status: ui.StatusClean}
		switch {
		case hasLoadFailure(r.Bag):
			ev.Status = ui.StatusFailed
		case r.Bag.Len() > 0:
			ev.Status = ui.StatusIssues
			ev.Issues = r.Bag.Len()
		}
		events <- ev
	}

	go func() {
		fileSet, results, err := driver.LintPaths(ctx, paths, opts)
		outcomeCh <- lintOutcome{fileSet: fileSet, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("linting", paths, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fileSet, outcome.results, uiErr
	}
	return outcome.fileSet, outcome.results, outcome.err
}

func hasLoadFailure(bag *diag.Bag) bool {
	for _, item := range bag.Items() {
		if item.Code == diag.IOLoadFile {
			return true
		}
	}
	return false
}
