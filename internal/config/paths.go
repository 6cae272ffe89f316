package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths holds resolved absolute locations used by the CLI and server.
type Paths struct {
	BaseDir   string
	DataFile  string
	OutputDir string
	LogsDir   string
	Holdings  string
}

// ResolvePaths resolves the configured paths against baseDir. An empty
// baseDir means the current working directory.
func ResolvePaths(pc PathsConfig, baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		baseDir = wd
	}
	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	return &Paths{
		BaseDir:   baseDir,
		DataFile:  resolve(baseDir, pc.DataFile),
		OutputDir: resolve(baseDir, pc.OutputDir),
		LogsDir:   resolve(baseDir, pc.LogsDir),
		Holdings:  resolve(baseDir, pc.Holdings),
	}, nil
}

// ResolvedPaths resolves c.Paths against the working directory.
func (c *Config) ResolvedPaths() (*Paths, error) {
	return ResolvePaths(c.Paths, "")
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the output and log directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()
	for _, dir := range []string{p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// OutputPath returns filename inside the output directory. Absolute names
// are returned unchanged.
func (p *Paths) OutputPath(filename string) string {
	return resolve(p.OutputDir, filename)
}

// LogPath returns filename inside the logs directory.
func (p *Paths) LogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs the resolved paths at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_file", p.DataFile),
		slog.Bool("data_file_exists", FileExists(p.DataFile)),
		slog.String("output_dir", p.OutputDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("holdings", p.Holdings))
}
