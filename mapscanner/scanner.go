package mapscanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MapEntry represents a discoverable map document under a content directory
type MapEntry struct {
	Name string // Display name (file name without extension)
	Path string // Path relative to the scanned root
}

// ScanDirectory walks root for Tiled map documents (.tmx)
// Returns one MapEntry per map file found, in walk order
func ScanDirectory(root string) ([]MapEntry, error) {
	var maps []MapEntry

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Skip hidden directories
			if name := d.Name(); name != "." && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isMapFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		maps = append(maps, MapEntry{Name: name, Path: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan map directory: %w", err)
	}

	return maps, nil
}

// ScanDirectoryFS is ScanDirectory over an fs.FS, for embedded content
func ScanDirectoryFS(fsys fs.FS) ([]MapEntry, error) {
	var maps []MapEntry

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isMapFile(d.Name()) {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		maps = append(maps, MapEntry{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan map directory: %w", err)
	}

	return maps, nil
}

// isMapFile checks for the map document extension
func isMapFile(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".tmx")
}

// Exists reports whether the map file at path is present and regular
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
