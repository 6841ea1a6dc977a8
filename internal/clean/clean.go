// Package clean resets the pipeline's intermediate outputs.
package clean

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/notechunk/internal/logging"
)

// Options selects what a Cleaner removes
type Options struct {
	// OutputDir holds the intermediate directories
	OutputDir string

	// Dirs are emptied, relative to OutputDir
	Dirs []string

	// CacheFile is deleted
	CacheFile string

	// Protected paths are never emptied, nor any directory containing them
	Protected []string

	// DryRun reports without deleting
	DryRun bool
}

// PathError is a failure to remove one path
type PathError struct {
	Path string
	Err  error
}

func (e PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Report summarizes a cleanup
type Report struct {
	OutputMissing bool
	Emptied       []string // directories whose content was removed
	Removed       []string // entries deleted (or that would be, in a dry run)
	Skipped       []string // protected directories left alone
	Errors        []PathError
}

// OK reports whether every removal succeeded
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Cleaner empties intermediate directories while keeping them in place
type Cleaner struct {
	opts   Options
	logger logging.Logger
}

// New creates a cleaner
func New(opts Options, logger logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cleaner{opts: opts, logger: logger}
}

// Run empties every configured directory and deletes the cache file.
// Individual failures are logged and collected; they never stop the run.
func (c *Cleaner) Run() *Report {
	report := &Report{}

	if _, err := os.Stat(c.opts.OutputDir); errors.Is(err, os.ErrNotExist) {
		c.logger.Info("output directory absent, nothing to clean", "path", c.opts.OutputDir)
		report.OutputMissing = true
		return report
	}

	for _, name := range c.opts.Dirs {
		dir := filepath.Join(c.opts.OutputDir, name)
		if c.protected(dir) {
			c.logger.Warn("refusing to empty protected directory", "path", dir)
			report.Skipped = append(report.Skipped, dir)
			continue
		}
		c.emptyDir(dir, report)
	}

	if c.opts.CacheFile != "" {
		c.removeCache(report)
	}
	return report
}

func (c *Cleaner) emptyDir(dir string, report *Report) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		c.logger.Debug("directory absent", "path", dir)
		return
	}
	if err != nil {
		c.fail(report, dir, err)
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if c.opts.DryRun {
			report.Removed = append(report.Removed, path)
			continue
		}
		// RemoveAll does not follow symlinks
		if err := os.RemoveAll(path); err != nil {
			c.fail(report, path, err)
			continue
		}
		report.Removed = append(report.Removed, path)
	}
	report.Emptied = append(report.Emptied, dir)
	c.logger.Debug("emptied", "path", dir, "entries", len(entries))
}

func (c *Cleaner) removeCache(report *Report) {
	path := c.opts.CacheFile
	if _, err := os.Lstat(path); errors.Is(err, os.ErrNotExist) {
		return
	}
	if c.opts.DryRun {
		report.Removed = append(report.Removed, path)
		return
	}
	if err := os.Remove(path); err != nil {
		c.fail(report, path, err)
		return
	}
	report.Removed = append(report.Removed, path)
}

func (c *Cleaner) fail(report *Report, path string, err error) {
	c.logger.Warn("cleanup failed", "path", path, "error", err)
	report.Errors = append(report.Errors, PathError{Path: path, Err: err})
}

// protected reports whether dir is, or contains, a protected path
func (c *Cleaner) protected(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return true
	}
	for _, p := range c.opts.Protected {
		if p == "" {
			continue
		}
		pabs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if pabs == abs || strings.HasPrefix(pabs, abs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
