package tiled

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
)

func mapWithData(data string) map[string]string {
	return map[string]string{
		"main.tmx": fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16">
 <layer id="1" name="ground" width="2" height="2">
  %s
 </layer>
</map>`, data),
	}
}

func encodeCells(t *testing.T, cells []uint32, compression string) string {
	t.Helper()
	raw := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.LittleEndian.PutUint32(raw[4*i:], c)
	}
	switch compression {
	case "":
	case "gzip":
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		raw = buf.Bytes()
	case "zlib":
		var buf bytes.Buffer
		zw := zlib.NewWriter(&buf)
		if _, err := zw.Write(raw); err != nil {
			t.Fatal(err)
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		raw = buf.Bytes()
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestTileDataEncodings(t *testing.T) {
	cells := []uint32{1, 0, 2, 3}

	tests := []struct {
		name string
		data string
	}{
		{"csv", `<data encoding="csv">1,0,
2,3</data>`},
		{"xml", `<data><tile gid="1"/><tile/><tile gid="2"/><tile gid="3"/></data>`},
		{"base64", fmt.Sprintf(`<data encoding="base64">%s</data>`, encodeCells(t, cells, ""))},
		{"base64-gzip", fmt.Sprintf(`<data encoding="base64" compression="gzip">%s</data>`, encodeCells(t, cells, "gzip"))},
		{"base64-zlib", fmt.Sprintf(`<data encoding="base64" compression="zlib">%s</data>`, encodeCells(t, cells, "zlib"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := loadTestMap(t, mapWithData(tt.data), "main.tmx")
			tl := m.Layers()[0].Tiles
			for i, want := range cells {
				if got := tl.GIDAt(i%2, i/2); got != GID(want) {
					t.Errorf("cell %d = %d, want %d", i, got, want)
				}
			}
		})
	}
}

func TestTileDataCellCountMismatch(t *testing.T) {
	loader := NewLoaderWithReader(newMemReader(mapWithData(`<data encoding="csv">1,2,3</data>`)))
	if _, err := loader.LoadMap("main.tmx"); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("error = %v, want ErrMalformedDocument for 3 cells in a 2x2 layer", err)
	}
}

func TestUnsupportedCompression(t *testing.T) {
	data := fmt.Sprintf(`<data encoding="base64" compression="zstd">%s</data>`,
		encodeCells(t, []uint32{1, 2, 3, 4}, ""))
	loader := NewLoaderWithReader(newMemReader(mapWithData(data)))
	if _, err := loader.LoadMap("main.tmx"); !errors.Is(err, ErrUnsupportedCompression) {
		t.Fatalf("error = %v, want ErrUnsupportedCompression", err)
	}
}

func TestUnsupportedEncoding(t *testing.T) {
	loader := NewLoaderWithReader(newMemReader(mapWithData(`<data encoding="base85">nope</data>`)))
	if _, err := loader.LoadMap("main.tmx"); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("error = %v, want ErrUnsupportedEncoding", err)
	}
}

func TestInfiniteMapChunks(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" infinite="1" width="4" height="4" tilewidth="16" tileheight="16">
 <layer id="1" name="ground" width="4" height="4">
  <data encoding="csv">
   <chunk x="0" y="0" width="4" height="4">
    1,2,3,4,
    5,6,7,8,
    9,10,11,12,
    13,14,15,16
   </chunk>
   <chunk x="-4" y="0" width="4" height="4">
    16,15,14,13,
    12,11,10,9,
    8,7,6,5,
    4,3,2,1
   </chunk>
  </data>
 </layer>
</map>`,
	}
	m, _ := loadTestMap(t, files, "main.tmx")
	tl := m.Layers()[0].Tiles

	if !tl.Infinite() {
		t.Fatal("layer should be chunked")
	}
	if len(tl.Chunks()) != 2 {
		t.Fatalf("got %d chunks, want 2", len(tl.Chunks()))
	}
	if got := tl.GIDAt(0, 0); got != 1 {
		t.Errorf("GIDAt(0,0) = %d, want 1", got)
	}
	if got := tl.GIDAt(3, 3); got != 16 {
		t.Errorf("GIDAt(3,3) = %d, want 16", got)
	}
	if got := tl.GIDAt(-4, 0); got != 16 {
		t.Errorf("GIDAt(-4,0) = %d, want 16", got)
	}
	if got := tl.GIDAt(-1, 3); got != 1 {
		t.Errorf("GIDAt(-1,3) = %d, want 1", got)
	}
	// Outside every chunk there is no tile.
	if got := tl.GIDAt(100, 100); got != 0 {
		t.Errorf("GIDAt(100,100) = %d, want 0", got)
	}
}

func TestFiniteGIDAtOutOfBounds(t *testing.T) {
	m, _ := loadTestMap(t, mapWithData(`<data encoding="csv">1,2,3,4</data>`), "main.tmx")
	tl := m.Layers()[0].Tiles
	if got := tl.GIDAt(-1, 0); got != 0 {
		t.Errorf("GIDAt(-1,0) = %d, want 0", got)
	}
	if got := tl.GIDAt(2, 0); got != 0 {
		t.Errorf("GIDAt(2,0) = %d, want 0", got)
	}
}

func TestFloorAlign(t *testing.T) {
	tests := []struct {
		v, step, want int
	}{
		{0, 16, 0},
		{15, 16, 0},
		{16, 16, 16},
		{-1, 16, -16},
		{-16, 16, -16},
		{-17, 16, -32},
	}
	for _, tt := range tests {
		if got := floorAlign(tt.v, tt.step); got != tt.want {
			t.Errorf("floorAlign(%d, %d) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}
