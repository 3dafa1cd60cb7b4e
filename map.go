package tiled

import (
	"encoding/xml"
	"iter"
)

// Orientation is the map's tile arrangement scheme.
type Orientation string

const (
	Orthogonal Orientation = "orthogonal"
	Isometric  Orientation = "isometric"
	Staggered  Orientation = "staggered"
	Hexagonal  Orientation = "hexagonal"
)

// Map is a fully loaded map document: the top-level layer tree, the tileset
// reference table, and document metadata. It is immutable after loading.
type Map struct {
	// Source is the normalized path the map was loaded from.
	Source ResourcePath

	Version      string
	TiledVersion string
	Class        string
	Orientation  Orientation
	// RenderOrder is the order tiles are drawn in, e.g. "right-down".
	RenderOrder string

	Width      int
	Height     int
	TileWidth  int
	TileHeight int

	StaggerAxis   string
	StaggerIndex  string
	HexSideLength int

	Infinite        bool
	BackgroundColor *Color
	Properties      Properties

	// tilesets is kept sorted ascending by FirstGID: declaration order in
	// the document is not guaranteed ascending, and gid resolution relies on
	// the sort.
	tilesets []MapTileset
	layers   []*Layer
}

// Tilesets returns the map's tileset references sorted ascending by first
// gid. Tileset handles are shared with the cache and any other map loaded in
// the same session.
func (m *Map) Tilesets() []MapTileset {
	return m.tilesets
}

// Layers returns the top-level layers in document order.
func (m *Map) Layers() []*Layer {
	return m.layers
}

// AllLayers iterates over every layer depth-first in document (z-) order,
// descending into group layers.
func (m *Map) AllLayers() iter.Seq[*Layer] {
	return flattenAll(m.layers)
}

// ResolveGID maps a global tile id back to (tileset, local id, flip flags).
// GID 0 means "no tile" and yields (nil, nil); a gid no declared tileset
// covers is a data error.
func (m *Map) ResolveGID(gid GID) (*ResolvedTile, error) {
	return resolveGID(m.tilesets, gid)
}

// ResolveObjectGID resolves a tile object's gid. Objects instantiated from a
// template with its own tileset resolve against that tileset; everything
// else resolves against the map's tileset table.
func (m *Map) ResolveObjectGID(o *Object) (*ResolvedTile, error) {
	if o.tileset != nil {
		return resolveGID([]MapTileset{*o.tileset}, o.GID)
	}
	return resolveGID(m.tilesets, o.GID)
}

// parseMapDocument parses a whole map document from its root.
func parseMapDocument(p *parser) (*Map, error) {
	start, err := p.root("map")
	if err != nil {
		return nil, err
	}
	return parseMap(p, start)
}

func parseMap(p *parser, start xml.StartElement) (*Map, error) {
	const el = "map"

	m := &Map{Source: p.path}
	m.Version, _ = optString(start.Attr, "version")
	m.TiledVersion, _ = optString(start.Attr, "tiledversion")
	m.Class, _ = optString(start.Attr, "class")

	orientation, err := reqString(el, start.Attr, "orientation")
	if err != nil {
		return nil, err
	}
	m.Orientation = Orientation(orientation)

	renderOrder, ok := optString(start.Attr, "renderorder")
	if !ok {
		renderOrder = "right-down"
	}
	m.RenderOrder = renderOrder

	if m.Width, err = reqInt(el, start.Attr, "width"); err != nil {
		return nil, err
	}
	if m.Height, err = reqInt(el, start.Attr, "height"); err != nil {
		return nil, err
	}
	if m.TileWidth, err = reqInt(el, start.Attr, "tilewidth"); err != nil {
		return nil, err
	}
	if m.TileHeight, err = reqInt(el, start.Attr, "tileheight"); err != nil {
		return nil, err
	}
	m.StaggerAxis, _ = optString(start.Attr, "staggeraxis")
	m.StaggerIndex, _ = optString(start.Attr, "staggerindex")
	if m.HexSideLength, err = optInt(el, start.Attr, "hexsidelength", 0); err != nil {
		return nil, err
	}
	if m.Infinite, err = optBool(el, start.Attr, "infinite", false); err != nil {
		return nil, err
	}
	if m.BackgroundColor, err = optColor(el, start.Attr, "backgroundcolor"); err != nil {
		return nil, err
	}

	err = p.children(el, func(child xml.StartElement) error {
		switch {
		case child.Name.Local == "tileset":
			ref, err := parseTilesetReference(p, child)
			if err != nil {
				return err
			}
			m.tilesets = append(m.tilesets, *ref)
			return nil
		case child.Name.Local == "properties":
			props, err := parseProperties(p)
			if err != nil {
				return err
			}
			m.Properties = props
			return nil
		case isLayerTag(child.Name.Local):
			layer, err := parseAnyLayer(p, child, m)
			if err != nil {
				return err
			}
			m.layers = append(m.layers, layer)
			return nil
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}

	sortTilesets(m.tilesets)
	return m, nil
}
