package tiled

import (
	"context"
	"fmt"
)

// Loader loads maps, tilesets and templates. It holds the ResourceReader
// used to obtain document bytes and the ResourceCache that deduplicates
// parsing of externally referenced tilesets and templates, so reusing one
// Loader across several loads shares those artifacts.
//
// A Loader is not safe for concurrent use: the cache is a single mutable
// resource and loads assume exclusive access to it.
type Loader struct {
	reader ResourceReader
	cache  ResourceCache
}

// NewLoader creates a loader reading from the OS filesystem with a fresh
// DefaultResourceCache.
func NewLoader() *Loader {
	return &Loader{
		reader: FilesystemResourceReader{},
		cache:  NewDefaultResourceCache(),
	}
}

// NewLoaderWithReader creates a loader with a custom reader and a fresh
// DefaultResourceCache.
func NewLoaderWithReader(reader ResourceReader) *Loader {
	return &Loader{
		reader: reader,
		cache:  NewDefaultResourceCache(),
	}
}

// NewLoaderWithCacheAndReader creates a loader with a custom cache and
// reader. Pass NoopResourceCache to disable artifact sharing.
func NewLoaderWithCacheAndReader(cache ResourceCache, reader ResourceReader) *Loader {
	return &Loader{reader: reader, cache: cache}
}

// Cache returns the loader's resource cache.
func (l *Loader) Cache() ResourceCache {
	return l.cache
}

// Reader returns the loader's resource reader.
func (l *Loader) Reader() ResourceReader {
	return l.reader
}

// LoadMap loads the map document at path, resolving every external tileset
// and template reference relative to it.
func (l *Loader) LoadMap(path string) (*Map, error) {
	return l.LoadMapContext(context.Background(), path)
}

// LoadMapContext is LoadMap with cancellation. Resource fetches are the only
// points the load observes the context; artifacts cached before a
// cancellation stay in the cache.
func (l *Loader) LoadMapContext(ctx context.Context, path string) (*Map, error) {
	m, err := loadDocument(ctx, l, path, parseMapDocument)
	if err != nil {
		return nil, fmt.Errorf("load map %s: %w", path, err)
	}
	return m, nil
}

// LoadTileset loads a standalone tileset document. The result is not
// inserted into the cache: a directly requested tileset is a final artifact,
// not an intermediate one.
func (l *Loader) LoadTileset(path string) (*Tileset, error) {
	return l.LoadTilesetContext(context.Background(), path)
}

// LoadTilesetContext is LoadTileset with cancellation.
func (l *Loader) LoadTilesetContext(ctx context.Context, path string) (*Tileset, error) {
	ts, err := loadDocument(ctx, l, path, func(p *parser) (*Tileset, error) {
		start, err := p.root("tileset")
		if err != nil {
			return nil, err
		}
		return parseTileset(p, start, p.path)
	})
	if err != nil {
		return nil, fmt.Errorf("load tileset %s: %w", path, err)
	}
	return ts, nil
}

// LoadTemplate loads a standalone object template. Templates are shared
// prototypes by definition, so the result is cached like any template
// reached through a map.
func (l *Loader) LoadTemplate(path string) (*Template, error) {
	return l.LoadTemplateContext(context.Background(), path)
}

// LoadTemplateContext is LoadTemplate with cancellation.
func (l *Loader) LoadTemplateContext(ctx context.Context, path string) (*Template, error) {
	target := NormalizePath(path)
	if tpl, ok := l.cache.Template(target); ok {
		return tpl, nil
	}
	tpl, err := loadDocument(ctx, l, path, func(p *parser) (*Template, error) {
		start, err := p.root("template")
		if err != nil {
			return nil, err
		}
		return parseTemplate(p, start)
	})
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	l.cache.InsertTemplate(target, tpl)
	return tpl, nil
}

func loadDocument[T any](ctx context.Context, l *Loader, path string, parse func(*parser) (T, error)) (T, error) {
	var zero T
	target := NormalizePath(path)
	rc, err := l.reader.OpenResource(ctx, path)
	if err != nil {
		return zero, err
	}
	defer rc.Close()
	p := newParser(ctx, rc, target, l.reader, l.cache)
	return parse(p)
}
