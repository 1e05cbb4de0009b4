// Package driver orchestrates the per-file work behind the CLI commands:
// expanding arguments into file lists, loading content (including stdin),
// fanning the linter out over a worker pool and folding parse results into
// one map.
package driver

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"cniutil/internal/diag"
	"cniutil/internal/dialect"
	"cniutil/internal/linter"
	"cniutil/internal/parser"
	"cniutil/internal/source"
)

// StdinPath is the pseudo path that stands for standard input.
const StdinPath = "-"

// DefaultMaxDiagnostics caps each file's diagnostic bag unless a limit is
// configured.
const DefaultMaxDiagnostics = 256

// Options configures a driver run.
type Options struct {
	Dialect        dialect.Dialect
	MaxDiagnostics int
	// Jobs caps lint parallelism. Zero or less means GOMAXPROCS.
	Jobs int
	// Stdin backs the "-" pseudo path. Defaults to os.Stdin.
	Stdin io.Reader
	// Progress, when set, is invoked once per finished file. Callbacks may
	// run concurrently from worker goroutines.
	Progress func(LintResult)
}

func (o *Options) maxDiagnostics() int {
	if o.MaxDiagnostics > 0 {
		return o.MaxDiagnostics
	}
	return DefaultMaxDiagnostics
}

// LintResult is the outcome of linting one file.
type LintResult struct {
	Path   string
	FileID source.FileID
	Bag    *diag.Bag
}

// ListCNIFiles returns the sorted list of all *.cni files under dir.
func ListCNIFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".cni") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ExpandPaths turns command line arguments into a flat file list. A
// directory argument contributes every *.cni file under it; "-" passes
// through untouched.
func ExpandPaths(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		if arg == StdinPath {
			files = append(files, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		inDir, err := ListCNIFiles(arg)
		if err != nil {
			return nil, err
		}
		files = append(files, inDir...)
	}
	return files, nil
}

// load resolves one path into the FileSet. Stdin content goes through the
// same BOM/CRLF normalization as disk files.
func (o *Options) load(fileSet *source.FileSet, path string) (source.FileID, error) {
	if path != StdinPath {
		return fileSet.Load(path)
	}
	stdin := o.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	content, err := io.ReadAll(stdin)
	if err != nil {
		return 0, fmt.Errorf("cannot process stdin: %w", err)
	}
	content, flags := source.Normalize(content)
	return fileSet.Add(StdinPath, content, flags|source.FileVirtual), nil
}

// LintPaths lints every path in parallel. Load failures do not abort the
// run; they surface as an error-severity diagnostic on the affected file so
// the remaining files still get linted.
func LintPaths(ctx context.Context, paths []string, opts Options) (*source.FileSet, []LintResult, error) {
	fileSet := source.NewFileSet()
	if len(paths) == 0 {
		return fileSet, nil, nil
	}

	// preload sequentially, the FileSet is not safe for concurrent writes
	fileIDs := make(map[string]source.FileID, len(paths))
	loadErrors := make(map[string]error, len(paths))
	for _, path := range paths {
		id, err := opts.load(fileSet, path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// each goroutine owns its own index, no mutex needed
	results := make([]LintResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(opts.maxDiagnostics())
			if loadErr, failed := loadErrors[path]; failed {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFile,
					Span:     source.Point(source.LineCol{Line: 1, Col: 1}),
					Message:  "failed to load file: " + loadErr.Error(),
				})
				results[i] = LintResult{Path: path, Bag: bag}
				if opts.Progress != nil {
					opts.Progress(results[i])
				}
				return nil
			}

			fileID := fileIDs[path]
			linter.Lint(fileSet.Get(fileID), opts.Dialect, diag.BagReporter{Bag: bag})
			results[i] = LintResult{Path: path, FileID: fileID, Bag: bag}
			if opts.Progress != nil {
				opts.Progress(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// ParsePaths parses every path with the strict parser and folds the results
// into one map, in argument order. Later files overwrite earlier keys, the
// same way later lines overwrite earlier ones within a file. The first
// syntax or I/O error aborts the fold.
func ParsePaths(paths []string, opts Options) (map[string]string, error) {
	fileSet := source.NewFileSet()
	merged := make(map[string]string)

	for _, path := range paths {
		id, err := opts.load(fileSet, path)
		if err != nil {
			return nil, err
		}
		pairs, err := parser.Parse(fileSet.Get(id), opts.Dialect)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for key, value := range pairs {
			merged[key] = value
		}
	}
	return merged, nil
}
