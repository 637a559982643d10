package kv

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Dir is a substrate storing each slot as a file in a directory.
// Writes go to a temp file that is synced and renamed over the slot file.
//
// File names are the path-escaped key, so on a case-insensitive filesystem
// keys differing only in case ("Task", "task") share one slot.
type Dir struct {
	root string
}

// NewDir creates the directory if needed and returns a substrate rooted there.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create slot dir: %w", err)
	}
	return &Dir{root: root}, nil
}

// Root returns the directory backing the substrate.
func (d *Dir) Root() string {
	return d.root
}

// Available implements Substrate.
func (d *Dir) Available(_ context.Context) error {
	info, err := os.Stat(d.root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrUnavailable, d.root)
	}
	return nil
}

// Get implements Substrate.
func (d *Dir) Get(_ context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(d.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read slot %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Substrate.
func (d *Dir) Set(_ context.Context, key, value string) error {
	tmp, err := os.CreateTemp(d.root, ".slot-*")
	if err != nil {
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	if err := os.Rename(tmpName, d.path(key)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write slot %q: %w", key, err)
	}
	return nil
}

// Remove implements Substrate.
func (d *Dir) Remove(_ context.Context, key string) error {
	err := os.Remove(d.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove slot %q: %w", key, err)
	}
	return nil
}

func (d *Dir) path(key string) string {
	return filepath.Join(d.root, url.PathEscape(key)+".json")
}
