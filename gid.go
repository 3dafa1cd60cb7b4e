package tiled

import (
	"fmt"
	"sort"
)

// TileID is a tile id local to one tileset. Ids are 0-based, unique within
// their tileset, and not necessarily contiguous.
type TileID uint32

// GID is a packed 32-bit global tile reference: the top three bits carry
// orientation flags, the rest a tile id offset by the owning tileset's first
// gid. GID 0 is reserved for "no tile".
type GID uint32

const (
	// FlipHorizontalFlag is set on a GID when the tile is flipped horizontally.
	FlipHorizontalFlag GID = 0x80000000
	// FlipVerticalFlag is set on a GID when the tile is flipped vertically.
	FlipVerticalFlag GID = 0x40000000
	// FlipDiagonalFlag is set on a GID when the tile is flipped along its
	// top-left to bottom-right diagonal (a rotation building block).
	FlipDiagonalFlag GID = 0x20000000

	flipMask = FlipHorizontalFlag | FlipVerticalFlag | FlipDiagonalFlag
)

// Stripped returns the gid with all orientation flags removed.
func (g GID) Stripped() GID {
	return g &^ flipMask
}

// FlippedHorizontally reports whether the horizontal flip flag is set.
func (g GID) FlippedHorizontally() bool { return g&FlipHorizontalFlag != 0 }

// FlippedVertically reports whether the vertical flip flag is set.
func (g GID) FlippedVertically() bool { return g&FlipVerticalFlag != 0 }

// FlippedDiagonally reports whether the diagonal flip flag is set.
func (g GID) FlippedDiagonally() bool { return g&FlipDiagonalFlag != 0 }

// MapTileset pairs a tileset with the first gid assigned to it by the map
// (or template) that references it. The tileset handle is shared with the
// cache and with every other referencing site.
type MapTileset struct {
	FirstGID GID
	Tileset  *Tileset
}

// ResolvedTile is the result of mapping a GID back to a concrete tileset:
// the tileset handle, the tile id local to it, and the orientation flags the
// gid carried.
type ResolvedTile struct {
	Tileset *Tileset
	ID      TileID

	FlipHorizontal bool
	FlipVertical   bool
	FlipDiagonal   bool
}

// TileData returns the explicit per-tile data for the resolved tile, or nil
// when the tileset declares none for that id.
func (r *ResolvedTile) TileData() *TileData {
	return r.Tileset.Tile(r.ID)
}

// resolveGID maps gid onto the tileset table, which must be sorted ascending
// by FirstGID. It returns (nil, nil) for gid 0. A stripped value below every
// first gid, or a local id at or beyond the matched tileset's tile span, is
// a data error, never clamped.
func resolveGID(table []MapTileset, gid GID) (*ResolvedTile, error) {
	if gid == 0 {
		return nil, nil
	}
	stripped := gid.Stripped()

	// Greatest FirstGID <= stripped.
	i := sort.Search(len(table), func(i int) bool { return table[i].FirstGID > stripped })
	if i == 0 {
		return nil, fmt.Errorf("%w: gid %d is below every tileset's first gid", ErrInvalidGID, uint32(gid))
	}
	entry := table[i-1]
	local := TileID(stripped - entry.FirstGID)
	if span := entry.Tileset.tileSpan(); uint32(local) >= span {
		return nil, fmt.Errorf("%w: gid %d: local id %d is outside tileset %q (%d tiles)",
			ErrInvalidGID, uint32(gid), uint32(local), entry.Tileset.Name, span)
	}
	return &ResolvedTile{
		Tileset:        entry.Tileset,
		ID:             local,
		FlipHorizontal: gid.FlippedHorizontally(),
		FlipVertical:   gid.FlippedVertically(),
		FlipDiagonal:   gid.FlippedDiagonally(),
	}, nil
}

func sortTilesets(table []MapTileset) {
	sort.Slice(table, func(i, j int) bool { return table[i].FirstGID < table[j].FirstGID })
}
