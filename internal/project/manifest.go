// Package project locates and loads the optional cniutil.toml manifest.
// The manifest supplies per-project defaults for the dialect flags and the
// lint/format commands; command line flags still override it.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"cniutil/internal/dialect"
)

// ManifestName is the file looked up from the working directory upwards.
const ManifestName = "cniutil.toml"

// Manifest is a loaded cniutil.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the cniutil.toml layout. Every section is optional.
type Config struct {
	Dialect DialectConfig `toml:"dialect"`
	Lint    LintConfig    `toml:"lint"`
	Format  FormatConfig  `toml:"format"`
}

type DialectConfig struct {
	INI      bool `toml:"ini"`
	MoreKeys bool `toml:"more-keys"`
}

type LintConfig struct {
	MaxDiagnostics int `toml:"max-diagnostics"`
}

type FormatConfig struct {
	SectionThreshold int `toml:"section-threshold"`
}

// Dialect returns the dialect the manifest configures.
func (m *Manifest) Dialect() dialect.Dialect {
	if m == nil {
		return dialect.Dialect{}
	}
	return dialect.Dialect{
		INI:      m.Config.Dialect.INI,
		MoreKeys: m.Config.Dialect.MoreKeys,
	}
}

// Find walks from startDir to the filesystem root looking for cniutil.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and parses the nearest manifest. The second return value is
// false when no manifest exists, which is not an error.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Lint.MaxDiagnostics < 0 {
		return Config{}, fmt.Errorf("%s: [lint].max-diagnostics must not be negative", path)
	}
	if cfg.Format.SectionThreshold < 0 {
		return Config{}, fmt.Errorf("%s: [format].section-threshold must not be negative", path)
	}
	return cfg, nil
}
