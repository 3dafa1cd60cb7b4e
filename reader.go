package tiled

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ResourceReader provides the bytes of externally referenced documents (maps,
// tilesets, templates). The context is the only suspension point of a load:
// blocking readers may ignore it beyond the initial cancellation check, while
// readers backed by slower transports should honor it fully.
type ResourceReader interface {
	OpenResource(ctx context.Context, path string) (io.ReadCloser, error)
}

// FilesystemResourceReader reads resources from the OS filesystem.
type FilesystemResourceReader struct{}

func (FilesystemResourceReader) OpenResource(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open resource %s: %w", path, err)
	}
	return f, nil
}

// FSResourceReader reads resources from an fs.FS, which allows embedded
// assets and other virtual filesystems to back a load without touching the
// OS filesystem.
type FSResourceReader struct {
	FS fs.FS
}

func (r FSResourceReader) OpenResource(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// fs paths are always unrooted.
	f, err := r.FS.Open(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("open resource %s: %w", path, err)
	}
	return f, nil
}
