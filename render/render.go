// Package render rasterizes loaded maps with ebiten. It decodes the tileset
// images the core model only references by path, and draws tile layers and
// image layers honoring per-cell orientation flags.
package render

import (
	"fmt"
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	tiled "github.com/Debaug/rs-tiled"
)

// MapRenderer draws a loaded map. It owns the decoded images for every
// tileset the map references.
type MapRenderer struct {
	m      *tiled.Map
	atlas  map[*tiled.Tileset]*ebiten.Image
	sprite map[*tiled.Tileset]map[tiled.TileID]*ebiten.Image
	images map[tiled.ResourcePath]*ebiten.Image
}

// NewMapRenderer loads the images referenced by m's tilesets and image
// layers. Paths in the model are already normalized relative to the map
// document, so they are opened as-is.
func NewMapRenderer(m *tiled.Map) (*MapRenderer, error) {
	r := &MapRenderer{
		m:      m,
		atlas:  make(map[*tiled.Tileset]*ebiten.Image),
		sprite: make(map[*tiled.Tileset]map[tiled.TileID]*ebiten.Image),
		images: make(map[tiled.ResourcePath]*ebiten.Image),
	}

	for _, ref := range m.Tilesets() {
		ts := ref.Tileset
		if ts.Image != nil {
			img, err := r.loadImage(ts.Image.Source)
			if err != nil {
				return nil, fmt.Errorf("tileset %s: %w", ts.Name, err)
			}
			r.atlas[ts] = img
		}
		// Image collection tilesets carry one image per tile.
		for id, data := range ts.Tiles() {
			if data.Image == nil {
				continue
			}
			img, err := r.loadImage(data.Image.Source)
			if err != nil {
				return nil, fmt.Errorf("tileset %s, tile %d: %w", ts.Name, id, err)
			}
			if r.sprite[ts] == nil {
				r.sprite[ts] = make(map[tiled.TileID]*ebiten.Image)
			}
			r.sprite[ts][id] = img
		}
	}

	for layer := range m.AllLayers() {
		if layer.Kind != tiled.LayerKindImage || layer.Image.Image == nil {
			continue
		}
		if _, err := r.loadImage(layer.Image.Image.Source); err != nil {
			return nil, fmt.Errorf("image layer %s: %w", layer.Name, err)
		}
	}
	return r, nil
}

func (r *MapRenderer) loadImage(source tiled.ResourcePath) (*ebiten.Image, error) {
	if img, ok := r.images[source]; ok {
		return img, nil
	}
	img, _, err := ebitenutil.NewImageFromFile(string(source))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", source, err)
	}
	r.images[source] = img
	return img, nil
}

// Draw renders every visible layer of the map onto screen in document order.
func (r *MapRenderer) Draw(screen *ebiten.Image) error {
	for _, layer := range r.m.Layers() {
		if err := r.drawLayer(screen, layer, 0, 0, 1.0); err != nil {
			return err
		}
	}
	return nil
}

func (r *MapRenderer) drawLayer(screen *ebiten.Image, layer *tiled.Layer, offX, offY, opacity float64) error {
	if !layer.Visible {
		return nil
	}
	offX += layer.OffsetX
	offY += layer.OffsetY
	opacity *= layer.Opacity

	switch layer.Kind {
	case tiled.LayerKindTile:
		return r.drawTileLayer(screen, layer.Tiles, offX, offY, opacity)
	case tiled.LayerKindImage:
		if layer.Image.Image == nil {
			// An image layer may be declared without an image.
			return nil
		}
		img, ok := r.images[layer.Image.Image.Source]
		if !ok {
			return nil
		}
		opts := &ebiten.DrawImageOptions{}
		opts.GeoM.Translate(offX, offY)
		opts.ColorScale.ScaleAlpha(float32(opacity))
		screen.DrawImage(img, opts)
		return nil
	case tiled.LayerKindGroup:
		for _, child := range layer.Group.Layers() {
			if err := r.drawLayer(screen, child, offX, offY, opacity); err != nil {
				return err
			}
		}
	case tiled.LayerKindObjects:
		// Object layers carry gameplay data, not imagery; tile objects are
		// drawn by the host with TileImage.
	}
	return nil
}

func (r *MapRenderer) drawTileLayer(screen *ebiten.Image, tl *tiled.TileLayer, offX, offY, opacity float64) error {
	draw := func(x, y int) error {
		gid := tl.GIDAt(x, y)
		if gid == 0 {
			return nil
		}
		resolved, err := r.m.ResolveGID(gid)
		if err != nil {
			return err
		}
		src := r.tileImage(resolved)
		if src == nil {
			return nil
		}
		opts := &ebiten.DrawImageOptions{}
		applyFlips(opts, resolved, src)
		opts.GeoM.Translate(
			offX+float64(x*r.m.TileWidth+resolved.Tileset.OffsetX),
			offY+float64(y*r.m.TileHeight+resolved.Tileset.OffsetY),
		)
		opts.ColorScale.ScaleAlpha(float32(opacity))
		screen.DrawImage(src, opts)
		return nil
	}

	if tl.Infinite() {
		for _, chunk := range tl.Chunks() {
			for cy := 0; cy < chunk.Height; cy++ {
				for cx := 0; cx < chunk.Width; cx++ {
					if err := draw(chunk.X+cx, chunk.Y+cy); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	for y := 0; y < tl.Height; y++ {
		for x := 0; x < tl.Width; x++ {
			if err := draw(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}

// TileImage returns the image for a resolved tile: a sub-image of the
// tileset atlas, or the tile's own image in a collection tileset.
func (r *MapRenderer) TileImage(resolved *tiled.ResolvedTile) *ebiten.Image {
	return r.tileImage(resolved)
}

func (r *MapRenderer) tileImage(resolved *tiled.ResolvedTile) *ebiten.Image {
	ts := resolved.Tileset
	if sprites, ok := r.sprite[ts]; ok {
		if img, ok := sprites[resolved.ID]; ok {
			return img
		}
	}
	atlas, ok := r.atlas[ts]
	if !ok || ts.Columns <= 0 {
		return nil
	}
	col := int(resolved.ID) % ts.Columns
	row := int(resolved.ID) / ts.Columns
	x := ts.Margin + col*(ts.TileWidth+ts.Spacing)
	y := ts.Margin + row*(ts.TileHeight+ts.Spacing)
	rect := image.Rect(x, y, x+ts.TileWidth, y+ts.TileHeight)
	return atlas.SubImage(rect).(*ebiten.Image)
}

// applyFlips composes the gid orientation flags into the draw transform.
// Diagonal flip is an anti-diagonal mirror, applied before the axis flips.
func applyFlips(opts *ebiten.DrawImageOptions, t *tiled.ResolvedTile, src *ebiten.Image) {
	w := float64(src.Bounds().Dx())
	h := float64(src.Bounds().Dy())
	if t.FlipDiagonal {
		// Transpose: (x, y) -> (y, x).
		opts.GeoM.Scale(1, -1)
		opts.GeoM.Rotate(math.Pi / 2)
	}
	if t.FlipHorizontal {
		opts.GeoM.Scale(-1, 1)
		opts.GeoM.Translate(w, 0)
	}
	if t.FlipVertical {
		opts.GeoM.Scale(1, -1)
		opts.GeoM.Translate(0, h)
	}
}
