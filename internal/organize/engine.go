// Package organize moves files into category folders. The Engine is the
// single mover: the watch daemon, the one-shot command, and tests all
// dispatch through it.
package organize

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"dropsort/internal/category"
	"dropsort/internal/config"
	"dropsort/internal/errors"
	"dropsort/internal/log"
	"dropsort/pkg/types"
)

// maxCollisionProbes caps the "(n)" suffix search for a free destination
const maxCollisionProbes = 1000

// Recorder persists completed moves. The journal implements it; a nil
// recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, move types.Move) error
}

// Engine handles file dispatch and directory sweeps
type Engine struct {
	table        *category.Table
	dryRun       bool
	ignoreHidden bool
	recorder     Recorder
	mu           sync.Mutex // serializes collision probing against moves
}

// New creates an Engine over the given category table
func New(table *category.Table) *Engine {
	return &Engine{
		table:        table,
		ignoreHidden: true,
	}
}

// NewWithConfig creates an Engine configured from cfg
func NewWithConfig(cfg *config.Config) *Engine {
	return &Engine{
		table:        cfg.Table(),
		dryRun:       cfg.Settings.DryRun,
		ignoreHidden: cfg.Settings.IgnoreHidden,
	}
}

// SetDryRun sets whether operations should be performed or just simulated
func (e *Engine) SetDryRun(dryRun bool) {
	e.mu.Lock()
	e.dryRun = dryRun
	e.mu.Unlock()
}

// IsDryRun returns whether the engine is in dry run mode
func (e *Engine) IsDryRun() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dryRun
}

// SetRecorder attaches a journal to the engine
func (e *Engine) SetRecorder(r Recorder) {
	e.mu.Lock()
	e.recorder = r
	e.mu.Unlock()
}

// Table returns the engine's category table
func (e *Engine) Table() *category.Table {
	return e.table
}

// Dispatch moves path into its category folder under the file's parent
// directory, creating the folder when missing and resolving name
// collisions with a "(n)" suffix. In dry run mode the result carries the
// would-be destination and Moved stays false.
func (e *Engine) Dispatch(ctx context.Context, path string) (types.MoveResult, error) {
	cat := e.table.ResolvePath(path)
	result := types.MoveResult{SourcePath: path, Category: cat}

	srcInfo, err := os.Stat(path)
	if err != nil {
		result.Error = errors.NewFileError("cannot stat source", path, errors.FileNotFound, err)
		return result, result.Error
	}
	if srcInfo.IsDir() {
		result.Error = errors.NewFileError("cannot dispatch a directory", path, errors.InvalidPath, nil)
		return result, result.Error
	}

	destDir := filepath.Join(filepath.Dir(path), cat)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dryRun {
		// Report the would-be destination without touching the filesystem
		dest, err := findAvailableName(destDir, filepath.Base(path))
		if err != nil {
			result.Error = err
			return result, result.Error
		}
		result.DestinationPath = dest
		log.Info("Would move %s -> %s", path, dest)
		return result, nil
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		result.Error = errors.NewFileError("cannot create category directory", destDir, errors.FileOperationFailed, err)
		return result, result.Error
	}

	dest, err := findAvailableName(destDir, filepath.Base(path))
	if err != nil {
		result.Error = err
		return result, result.Error
	}
	result.DestinationPath = dest

	if err := moveFile(path, dest); err != nil {
		result.Error = errors.NewFileError("move failed", path, errors.FileOperationFailed, err)
		return result, result.Error
	}
	result.Moved = true
	log.LogWithFields(log.F("source", path), log.F("destination", dest), log.F("category", cat)).Info("Moved file")

	if e.recorder != nil {
		move := types.Move{
			SourcePath:  path,
			Destination: dest,
			Category:    cat,
			SizeBytes:   srcInfo.Size(),
			MovedAt:     time.Now(),
		}
		if err := e.recorder.Record(ctx, move); err != nil {
			// Journal trouble never undoes or fails a completed move
			log.LogWithError(err).Warn("Failed to record move in journal")
		}
	}

	return result, nil
}

// Scan enumerates the immediate children of dir exactly once and
// dispatches every regular, non-hidden file. Per-file failures are
// recorded in the report and do not stop the sweep. Files created after
// the listing snapshot are left for the next scan.
func (e *Engine) Scan(ctx context.Context, dir string) (types.ScanReport, error) {
	report := types.ScanReport{Directory: dir}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return report, errors.NewFileError("cannot read directory", dir, errors.FileAccessDenied, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if e.ignoreHidden && strings.HasPrefix(name, ".") {
			continue
		}

		report.Eligible++
		result, err := e.Dispatch(ctx, filepath.Join(dir, name))
		if err != nil {
			report.Failed++
			log.LogWithError(err).Warn("Failed to organize file")
		} else if result.Moved {
			report.Moved++
		}
		report.Results = append(report.Results, result)
	}

	if report.Empty() {
		log.Info("No files to organize in %s", dir)
	}

	return report, nil
}

// findAvailableName returns dir/name, or the first dir/"stem(n)suffix"
// that does not exist yet, probing n = 1, 2, 3, ...
func findAvailableName(dir, name string) (string, error) {
	dest := filepath.Join(dir, name)
	if _, err := os.Lstat(dest); os.IsNotExist(err) {
		return dest, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; n <= maxCollisionProbes; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s(%d)%s", stem, n, ext))
		if _, err := os.Lstat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}

	return "", errors.NewFileError(
		fmt.Sprintf("no free name after %d attempts", maxCollisionProbes),
		dest, errors.FileOperationFailed, nil)
}

// renameFunc is swapped out in tests to force the cross-device path
var renameFunc = os.Rename

// moveFile renames src to dest, falling back to copy-then-delete when the
// destination is on a different filesystem.
func moveFile(src, dest string) error {
	err := renameFunc(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		log.Debug("Cross-device move, copying %s -> %s", src, dest)
		return copyThenRemove(src, dest)
	}

	return err
}

// copyThenRemove copies src to a temporary name inside dest's directory,
// fsyncs, renames it to dest, and only then removes src. A partial copy
// never occupies the final destination name.
func copyThenRemove(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".dropsort-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := io.Copy(tmp, in); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, srcInfo.Mode().Perm()); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Remove(src)
}
