package tiled

import (
	"path"
	"path/filepath"
)

// ResourcePath is a normalized, comparable identifier for an external
// resource. Two references that denote the same file normalize to equal
// ResourcePath values, which makes it suitable as a cache key.
type ResourcePath string

// NormalizePath converts an OS path into its canonical ResourcePath form:
// forward slashes, redundant elements removed.
func NormalizePath(p string) ResourcePath {
	return ResourcePath(path.Clean(filepath.ToSlash(p)))
}

// RelativeTo resolves a reference found inside the document at base against
// base's directory and normalizes the result.
func (base ResourcePath) RelativeTo(ref string) ResourcePath {
	ref = filepath.ToSlash(ref)
	if path.IsAbs(ref) {
		return ResourcePath(path.Clean(ref))
	}
	return ResourcePath(path.Join(path.Dir(string(base)), ref))
}

// ResourceCache is a session-scoped, path-keyed store of parsed external
// artifacts. It guarantees shared views: every request for an already-stored
// path receives a handle to the same parsed artifact.
//
// The cache performs no I/O; misses are resolved by the parser through the
// ResourceReader and then inserted explicitly. It is not safe for concurrent
// use; a load session assumes exclusive access.
type ResourceCache interface {
	// Tileset returns the cached tileset for path, if any.
	Tileset(path ResourcePath) (*Tileset, bool)
	// Template returns the cached template for path, if any.
	Template(path ResourcePath) (*Template, bool)
	// InsertTileset stores a parsed tileset under path.
	InsertTileset(path ResourcePath, ts *Tileset)
	// InsertTemplate stores a parsed template under path.
	InsertTemplate(path ResourcePath, tpl *Template)
}

// DefaultResourceCache is a plain dictionary cache with no eviction. Within
// one load session each distinct path is parsed at most once.
type DefaultResourceCache struct {
	tilesets  map[ResourcePath]*Tileset
	templates map[ResourcePath]*Template
}

// NewDefaultResourceCache creates an empty cache.
func NewDefaultResourceCache() *DefaultResourceCache {
	return &DefaultResourceCache{
		tilesets:  make(map[ResourcePath]*Tileset),
		templates: make(map[ResourcePath]*Template),
	}
}

func (c *DefaultResourceCache) Tileset(path ResourcePath) (*Tileset, bool) {
	ts, ok := c.tilesets[path]
	return ts, ok
}

func (c *DefaultResourceCache) Template(path ResourcePath) (*Template, bool) {
	tpl, ok := c.templates[path]
	return tpl, ok
}

func (c *DefaultResourceCache) InsertTileset(path ResourcePath, ts *Tileset) {
	c.tilesets[path] = ts
}

func (c *DefaultResourceCache) InsertTemplate(path ResourcePath, tpl *Template) {
	c.templates[path] = tpl
}

// NoopResourceCache never stores anything. Every external reference is
// re-parsed on every encounter; useful as a baseline and for callers that
// want to opt out of artifact sharing.
type NoopResourceCache struct{}

func (NoopResourceCache) Tileset(ResourcePath) (*Tileset, bool)   { return nil, false }
func (NoopResourceCache) Template(ResourcePath) (*Template, bool) { return nil, false }
func (NoopResourceCache) InsertTileset(ResourcePath, *Tileset)    {}
func (NoopResourceCache) InsertTemplate(ResourcePath, *Template)  {}
