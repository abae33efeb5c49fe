// Package spool reads bulletin files from a watched spool directory.
package spool

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quakeline/nordic-etl/internal/config"
	"github.com/quakeline/nordic-etl/internal/domain"
)

// Reader extracts S-files from a spool directory.
// It implements pipeline.BatchExtractor. Committing a file moves it into the
// done directory, so a crash between load and commit re-delivers the file.
type Reader struct {
	dir          string
	doneDir      string
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewReader creates a spool reader over the configured directory.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	return &Reader{
		dir:          cfg.SpoolDir,
		doneDir:      cfg.SpoolDoneDir,
		pollInterval: cfg.PollInterval,
		logger:       logger,
	}
}

// ExtractBatch returns up to batchSize files in name order. When the spool is
// empty it sleeps one poll interval before returning, so the pipeline loop
// does not spin.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.SourceFile, error) {
	paths, err := r.scan()
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		r.wait(ctx)
		return nil, ctx.Err()
	}
	if len(paths) > batchSize {
		paths = paths[:batchSize]
	}

	files := make([]domain.SourceFile, 0, len(paths))
	for _, path := range paths {
		lines, err := readLines(path)
		if err != nil {
			r.logger.Warn("unreadable spool file", "path", path, "error", err)
			continue
		}
		files = append(files, domain.SourceFile{
			Name:   filepath.Base(path),
			Lines:  lines,
			Commit: r.commitFunc(path),
		})
	}
	return files, nil
}

// scan walks the spool tree collecting candidate S-files, sorted by name.
// Editor backups, SEISAN output files and the done directory are skipped.
func (r *Reader) scan() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(r.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != r.dir && (path == r.doneDir || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipName(name) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// skipName filters out files that are never bulletins: editor backups ("~"),
// SEISAN program output (".out") and backup copies (".sebk").
func skipName(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.Contains(name, "~") ||
		strings.Contains(name, ".out") ||
		strings.Contains(name, ".sebk")
}

// commitFunc moves the file into the done directory once its event has been
// durably handed off.
func (r *Reader) commitFunc(path string) func(ctx context.Context) error {
	return func(_ context.Context) error {
		if err := os.MkdirAll(r.doneDir, 0o755); err != nil {
			return err
		}
		return os.Rename(path, filepath.Join(r.doneDir, filepath.Base(path)))
	}
}

func (r *Reader) wait(ctx context.Context) {
	timer := time.NewTimer(r.pollInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), nil
}
