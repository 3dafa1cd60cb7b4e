package tiled

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TileLayer is a grid of gids: dense for finite maps, chunked for infinite
// ones. Cells hold raw gids with orientation flags intact; resolution against
// the map's tilesets happens lazily through Map.ResolveGID.
type TileLayer struct {
	Width  int
	Height int

	tiles []GID // finite maps, row-major, len == Width*Height

	chunks         map[chunkOrigin]*Chunk // infinite maps
	chunkW, chunkH int
}

type chunkOrigin struct {
	X, Y int
}

// Chunk is one sparse block of an infinite map's tile layer.
type Chunk struct {
	X, Y          int // origin in layer tile coordinates
	Width, Height int

	tiles []GID
}

// GIDAt returns the gid at chunk-local coordinates.
func (c *Chunk) GIDAt(x, y int) GID {
	if x < 0 || x >= c.Width || y < 0 || y >= c.Height {
		return 0
	}
	return c.tiles[y*c.Width+x]
}

// Infinite reports whether the layer stores chunks instead of a dense grid.
func (l *TileLayer) Infinite() bool {
	return l.chunks != nil
}

// GIDAt returns the gid at layer coordinates, or 0 where no tile is placed.
// For finite layers coordinates outside the grid yield 0.
func (l *TileLayer) GIDAt(x, y int) GID {
	if l.chunks != nil {
		c, ok := l.chunks[chunkOrigin{floorAlign(x, l.chunkW), floorAlign(y, l.chunkH)}]
		if !ok {
			return 0
		}
		return c.GIDAt(x-c.X, y-c.Y)
	}
	if x < 0 || x >= l.Width || y < 0 || y >= l.Height {
		return 0
	}
	return l.tiles[y*l.Width+x]
}

// Chunks returns the layer's chunks; nil for finite layers. Order is
// unspecified.
func (l *TileLayer) Chunks() []*Chunk {
	if l.chunks == nil {
		return nil
	}
	out := make([]*Chunk, 0, len(l.chunks))
	for _, c := range l.chunks {
		out = append(out, c)
	}
	return out
}

// floorAlign rounds v down to the nearest multiple of step, correctly for
// negative coordinates.
func floorAlign(v, step int) int {
	if step <= 0 {
		return v
	}
	q := v / step
	if v%step != 0 && v < 0 {
		q--
	}
	return q * step
}

func parseTileLayer(p *parser, start xml.StartElement, m *Map) (*TileLayer, Properties, error) {
	const el = "layer"

	width, err := optInt(el, start.Attr, "width", m.Width)
	if err != nil {
		return nil, nil, err
	}
	height, err := optInt(el, start.Attr, "height", m.Height)
	if err != nil {
		return nil, nil, err
	}
	layer := &TileLayer{Width: width, Height: height}

	var props Properties
	err = p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "data":
			return parseLayerData(p, child, layer, m.Infinite)
		case "properties":
			parsed, err := parseProperties(p)
			if err != nil {
				return err
			}
			props = parsed
			return nil
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return layer, props, nil
}

func parseLayerData(p *parser, start xml.StartElement, layer *TileLayer, infinite bool) error {
	encoding, _ := optString(start.Attr, "encoding")
	compression, _ := optString(start.Attr, "compression")

	if !infinite {
		cells, err := decodeCells(p, "data", encoding, compression, layer.Width*layer.Height)
		if err != nil {
			return err
		}
		layer.tiles = cells
		return nil
	}

	layer.chunks = make(map[chunkOrigin]*Chunk)
	return p.children("data", func(child xml.StartElement) error {
		if child.Name.Local != "chunk" {
			return p.skip()
		}
		x, err := reqInt("chunk", child.Attr, "x")
		if err != nil {
			return err
		}
		y, err := reqInt("chunk", child.Attr, "y")
		if err != nil {
			return err
		}
		w, err := reqInt("chunk", child.Attr, "width")
		if err != nil {
			return err
		}
		h, err := reqInt("chunk", child.Attr, "height")
		if err != nil {
			return err
		}
		cells, err := decodeCells(p, "chunk", encoding, compression, w*h)
		if err != nil {
			return err
		}
		chunk := &Chunk{X: x, Y: y, Width: w, Height: h, tiles: cells}
		if layer.chunkW == 0 {
			layer.chunkW, layer.chunkH = w, h
		}
		layer.chunks[chunkOrigin{x, y}] = chunk
		return nil
	})
}

// decodeCells consumes the remaining content of a <data> or <chunk> element
// and decodes it into gids. Three shapes exist in the wild: legacy child
// <tile gid=…> elements, csv text, and base64 text optionally compressed
// with gzip or zlib.
func decodeCells(p *parser, el, encoding, compression string, expect int) ([]GID, error) {
	var text strings.Builder
	var legacy []GID
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: inside <%s>: %v", ErrMalformedDocument, p.path, el, err)
		}
		if _, ok := tok.(xml.EndElement); ok {
			break
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			if encoding == "" && t.Name.Local == "tile" {
				gid, err := optUint32("tile", t.Attr, "gid", 0)
				if err != nil {
					return nil, err
				}
				legacy = append(legacy, GID(gid))
			}
			if err := p.skip(); err != nil {
				return nil, err
			}
		}
	}

	var cells []GID
	switch encoding {
	case "":
		cells = legacy
	case "csv":
		raw := strings.TrimSpace(text.String())
		if raw != "" {
			fields := strings.Split(raw, ",")
			cells = make([]GID, 0, len(fields))
			for _, f := range fields {
				n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: csv tile data: %v", ErrMalformedDocument, p.path, err)
				}
				cells = append(cells, GID(n))
			}
		}
	case "base64":
		buf, err := base64.StdEncoding.DecodeString(strings.TrimSpace(text.String()))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: base64 tile data: %v", ErrMalformedDocument, p.path, err)
		}
		buf, err = decompressCells(p.path, buf, compression)
		if err != nil {
			return nil, err
		}
		if len(buf)%4 != 0 {
			return nil, fmt.Errorf("%w: %s: tile data length %d is not a multiple of 4",
				ErrMalformedDocument, p.path, len(buf))
		}
		cells = make([]GID, 0, len(buf)/4)
		for i := 0; i+4 <= len(buf); i += 4 {
			cells = append(cells, GID(binary.LittleEndian.Uint32(buf[i:])))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	if expect > 0 && len(cells) != expect {
		return nil, fmt.Errorf("%w: %s: <%s> holds %d cells, expected %d",
			ErrMalformedDocument, p.path, el, len(cells), expect)
	}
	return cells, nil
}

func decompressCells(path ResourcePath, buf []byte, compression string) ([]byte, error) {
	switch compression {
	case "":
		return buf, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: gzip tile data: %v", ErrMalformedDocument, path, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: gzip tile data: %v", ErrMalformedDocument, path, err)
		}
		return out, nil
	case "zlib":
		zr, err := zlib.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: zlib tile data: %v", ErrMalformedDocument, path, err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: zlib tile data: %v", ErrMalformedDocument, path, err)
		}
		return out, nil
	default:
		// zstd in particular is declared but not handled here.
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCompression, compression)
	}
}
