// Package writeback writes an annotated unit back to disk the same way the
// teacher's core.AtomicWriter does: content lands in a temp file beside the
// target, then an atomic rename replaces the original, so a crash or a
// concurrent reader never observes a half-written file. Unlike the
// teacher's writer, stereoscope has exactly one writer per path per run, so
// the cross-process lock-file dance that guards concurrent writers is
// dropped — there is nothing here for it to guard against.
package writeback

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Options controls one write.
type Options struct {
	// Backup, when true and the target already exists, copies the
	// pre-write content to "<path>.bak.<timestamp>" before replacing it.
	Backup bool
	// Fsync forces the temp file to durable storage before the rename.
	Fsync bool
}

const tempSuffix = ".stereoscope.tmp"

// Write atomically replaces path's contents with data.
func Write(path string, data []byte, opts Options) error {
	info, statErr := os.Stat(path)
	mode := os.FileMode(0o644)
	if statErr == nil {
		mode = info.Mode()
	}

	if opts.Backup && statErr == nil {
		if err := backup(path, mode); err != nil {
			return fmt.Errorf("writeback: backup %s: %w", path, err)
		}
	}

	tempPath := path + tempSuffix
	tempFile, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("writeback: create temp file for %s: %w", path, err)
	}

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("writeback: write %s: %w", path, err)
	}

	if opts.Fsync {
		if err := tempFile.Sync(); err != nil {
			tempFile.Close()
			os.Remove(tempPath)
			return fmt.Errorf("writeback: sync %s: %w", path, err)
		}
	}

	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("writeback: close temp file for %s: %w", path, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("writeback: rename into %s: %w", path, err)
	}
	return nil
}

func backup(path string, mode os.FileMode) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	backupPath := fmt.Sprintf("%s.bak.%s", path, time.Now().Format("20060102-150405"))
	if err := os.WriteFile(backupPath, content, mode.Perm()); err != nil {
		return err
	}
	return nil
}

// EnsureDir creates the directory a write target lives in, mirroring the
// CLI's mirrored-output-tree mode (writeAnnotated with --overwrite unset).
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
