package tiled

import "encoding/xml"

// Tileset is a named collection of tile definitions. It is immutable once
// parsed; external tilesets are parsed once per load session and shared by
// handle among every referencing site.
type Tileset struct {
	// Source is the path the tileset was loaded from, or "" for tilesets
	// embedded in their map document.
	Source ResourcePath

	Name       string
	Class      string
	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int
	// TileCount is the declared number of tiles. When the document omits it,
	// the count is derived from the atlas image geometry or, for image
	// collection tilesets, from the highest declared tile id.
	TileCount uint32
	Columns   int
	// ObjectAlignment controls how tile objects of this tileset anchor to
	// their position ("unspecified" when the document omits it).
	ObjectAlignment string

	// Image is the tileset's atlas image. Nil for image collection tilesets,
	// whose tiles carry individual images instead.
	Image *Image

	// OffsetX and OffsetY shift tiles of this tileset when drawn.
	OffsetX int
	OffsetY int

	Properties Properties

	tiles map[TileID]*TileData
}

// Tile returns the explicit data declared for a local tile id, or nil when
// the tile exists only implicitly (an atlas tile without per-tile metadata).
func (ts *Tileset) Tile(id TileID) *TileData {
	return ts.tiles[id]
}

// Tiles returns the per-tile data declared by the tileset, keyed by local id.
// Ids are not necessarily contiguous.
func (ts *Tileset) Tiles() map[TileID]*TileData {
	return ts.tiles
}

// tileSpan is the number of local ids the tileset covers, used as the upper
// bound during gid resolution.
func (ts *Tileset) tileSpan() uint32 {
	if ts.TileCount > 0 {
		return ts.TileCount
	}
	var max uint32
	for id := range ts.tiles {
		if uint32(id)+1 > max {
			max = uint32(id) + 1
		}
	}
	return max
}

// parseTileset consumes a <tileset> element body. It serves both embedded
// tilesets (start inside a map document) and external documents whose root
// is <tileset>; source distinguishes the two.
func parseTileset(p *parser, start xml.StartElement, source ResourcePath) (*Tileset, error) {
	const el = "tileset"

	name, _ := optString(start.Attr, "name")
	class, _ := optString(start.Attr, "class")
	tileWidth, err := optInt(el, start.Attr, "tilewidth", 0)
	if err != nil {
		return nil, err
	}
	tileHeight, err := optInt(el, start.Attr, "tileheight", 0)
	if err != nil {
		return nil, err
	}
	spacing, err := optInt(el, start.Attr, "spacing", 0)
	if err != nil {
		return nil, err
	}
	margin, err := optInt(el, start.Attr, "margin", 0)
	if err != nil {
		return nil, err
	}
	tileCount, err := optUint32(el, start.Attr, "tilecount", 0)
	if err != nil {
		return nil, err
	}
	columns, err := optInt(el, start.Attr, "columns", 0)
	if err != nil {
		return nil, err
	}
	objectAlignment, ok := optString(start.Attr, "objectalignment")
	if !ok {
		objectAlignment = "unspecified"
	}

	ts := &Tileset{
		Source:          source,
		Name:            name,
		Class:           class,
		TileWidth:       tileWidth,
		TileHeight:      tileHeight,
		Spacing:         spacing,
		Margin:          margin,
		TileCount:       tileCount,
		Columns:         columns,
		ObjectAlignment: objectAlignment,
		tiles:           make(map[TileID]*TileData),
	}

	err = p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "image":
			img, err := parseImage(p, child)
			if err != nil {
				return err
			}
			ts.Image = img
		case "tileoffset":
			x, err := optInt("tileoffset", child.Attr, "x", 0)
			if err != nil {
				return err
			}
			y, err := optInt("tileoffset", child.Attr, "y", 0)
			if err != nil {
				return err
			}
			ts.OffsetX, ts.OffsetY = x, y
			return p.skip()
		case "properties":
			props, err := parseProperties(p)
			if err != nil {
				return err
			}
			ts.Properties = props
		case "tile":
			id, data, err := parseTile(p, child)
			if err != nil {
				return err
			}
			ts.tiles[id] = data
		default:
			return p.skip()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ts.TileCount == 0 && ts.Image != nil && ts.TileWidth > 0 && ts.TileHeight > 0 {
		cols := ts.Columns
		if cols == 0 && ts.Image.Width > 0 {
			cols = (ts.Image.Width - 2*ts.Margin + ts.Spacing) / (ts.TileWidth + ts.Spacing)
		}
		if cols > 0 && ts.Image.Height > 0 {
			rows := (ts.Image.Height - 2*ts.Margin + ts.Spacing) / (ts.TileHeight + ts.Spacing)
			ts.TileCount = uint32(cols * rows)
			if ts.Columns == 0 {
				ts.Columns = cols
			}
		}
	}
	return ts, nil
}
