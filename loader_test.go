package tiled

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"
)

// memReader serves documents from memory and counts how often each path is
// opened, which makes cache deduplication observable.
type memReader struct {
	files map[string]string
	opens map[string]int
}

func newMemReader(files map[string]string) *memReader {
	return &memReader{files: files, opens: make(map[string]int)}
}

func (r *memReader) OpenResource(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content, ok := r.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	r.opens[path]++
	return io.NopCloser(strings.NewReader(content)), nil
}

const sharedTSX = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="shared" tilewidth="16" tileheight="16" tilecount="8" columns="4">
 <image source="shared.png" width="64" height="32"/>
</tileset>`

func loadTestMap(t *testing.T, files map[string]string, path string) (*Map, *memReader) {
	t.Helper()
	reader := newMemReader(files)
	loader := NewLoaderWithReader(reader)
	m, err := loader.LoadMap(path)
	if err != nil {
		t.Fatalf("LoadMap(%s) failed: %v", path, err)
	}
	return m, reader
}

func TestLoadMapRoundTrip(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" name="terrain" tilewidth="16" tileheight="16" tilecount="4" columns="2">
  <image source="terrain.png" width="32" height="32"/>
 </tileset>
 <layer id="1" name="ground" width="4" height="1">
  <data encoding="csv">1,2,3,4</data>
 </layer>
</map>`,
	}
	m, _ := loadTestMap(t, files, "main.tmx")

	if m.Width != 4 || m.Height != 1 {
		t.Fatalf("map is %dx%d, want 4x1", m.Width, m.Height)
	}
	if m.Orientation != Orthogonal {
		t.Errorf("orientation = %q, want orthogonal", m.Orientation)
	}
	if len(m.Tilesets()) != 1 {
		t.Fatalf("got %d tilesets, want 1", len(m.Tilesets()))
	}
	ts := m.Tilesets()[0].Tileset
	if ts.Name != "terrain" {
		t.Errorf("tileset name = %q, want terrain", ts.Name)
	}
	if got := ts.Image.Source; got != "terrain.png" {
		t.Errorf("tileset image = %q, want terrain.png", got)
	}

	layer := m.Layers()[0]
	if layer.Kind != LayerKindTile {
		t.Fatalf("layer kind = %v, want tile", layer.Kind)
	}
	// Every referenced gid in [1, 4] resolves back to its local id with no
	// flags set.
	for x := 0; x < 4; x++ {
		gid := layer.Tiles.GIDAt(x, 0)
		resolved, err := m.ResolveGID(gid)
		if err != nil {
			t.Fatalf("ResolveGID(%d): %v", gid, err)
		}
		if resolved.Tileset != ts {
			t.Errorf("gid %d resolved to tileset %q", gid, resolved.Tileset.Name)
		}
		if want := TileID(x); resolved.ID != want {
			t.Errorf("gid %d local id = %d, want %d", gid, resolved.ID, want)
		}
		if resolved.FlipHorizontal || resolved.FlipVertical || resolved.FlipDiagonal {
			t.Errorf("gid %d has unexpected flip flags", gid)
		}
	}
}

func TestExternalTilesetParsedOnce(t *testing.T) {
	files := map[string]string{
		"shared.tsx": sharedTSX,
		// Two references to the same external tileset path: the cache must
		// hand both the same parsed artifact, after exactly one parse.
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="2" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="shared.tsx"/>
 <tileset firstgid="101" source="shared.tsx"/>
 <layer id="1" name="a" width="2" height="1">
  <data encoding="csv">1,0</data>
 </layer>
 <layer id="2" name="b" width="2" height="1">
  <data encoding="csv">0,103</data>
 </layer>
</map>`,
	}
	m, reader := loadTestMap(t, files, "main.tmx")

	if got := reader.opens["shared.tsx"]; got != 1 {
		t.Errorf("shared.tsx opened %d times, want 1", got)
	}

	layers := m.Layers()
	a, err := m.ResolveGID(layers[0].Tiles.GIDAt(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.ResolveGID(layers[1].Tiles.GIDAt(1, 0))
	if err != nil {
		t.Fatal(err)
	}
	if a.Tileset != b.Tileset {
		t.Error("layers resolved to distinct tileset handles, want identical shared handle")
	}
	if a.ID != 0 || b.ID != 2 {
		t.Errorf("local ids = %d, %d, want 0, 2", a.ID, b.ID)
	}
}

func TestLoaderSharesTilesetsAcrossMaps(t *testing.T) {
	mapDoc := `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="shared.tsx"/>
 <layer id="1" name="ground" width="1" height="1">
  <data encoding="csv">1</data>
 </layer>
</map>`
	files := map[string]string{
		"shared.tsx": sharedTSX,
		"one.tmx":    mapDoc,
		"two.tmx":    mapDoc,
	}
	reader := newMemReader(files)
	loader := NewLoaderWithReader(reader)

	one, err := loader.LoadMap("one.tmx")
	if err != nil {
		t.Fatal(err)
	}
	two, err := loader.LoadMap("two.tmx")
	if err != nil {
		t.Fatal(err)
	}
	if reader.opens["shared.tsx"] != 1 {
		t.Errorf("shared.tsx opened %d times across two loads, want 1", reader.opens["shared.tsx"])
	}
	if one.Tilesets()[0].Tileset != two.Tilesets()[0].Tileset {
		t.Error("maps loaded through one loader hold distinct tileset handles")
	}
}

func TestNoopCacheReparses(t *testing.T) {
	files := map[string]string{
		"shared.tsx": sharedTSX,
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="shared.tsx"/>
 <tileset firstgid="101" source="shared.tsx"/>
</map>`,
	}
	reader := newMemReader(files)
	loader := NewLoaderWithCacheAndReader(NoopResourceCache{}, reader)
	if _, err := loader.LoadMap("main.tmx"); err != nil {
		t.Fatal(err)
	}
	if got := reader.opens["shared.tsx"]; got != 2 {
		t.Errorf("with no-op cache shared.tsx opened %d times, want 2", got)
	}
}

func TestUnknownTagsAreSkipped(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <editorsettings>
  <chunksize width="16" height="16"/>
  <export target="out.lua" format="lua"/>
 </editorsettings>
 <tileset firstgid="1" name="t" tilewidth="16" tileheight="16" tilecount="1" columns="1">
  <image source="t.png" width="16" height="16"/>
  <somefutureelement><nested attr="1">text</nested></somefutureelement>
 </tileset>
 <layer id="1" name="ground" width="1" height="1">
  <notyetinvented/>
  <data encoding="csv">1</data>
 </layer>
</map>`,
	}
	m, _ := loadTestMap(t, files, "main.tmx")
	if got := m.Layers()[0].Tiles.GIDAt(0, 0); got != 1 {
		t.Errorf("gid = %d, want 1: unknown elements must not disturb known ones", got)
	}
}

func TestUnresolvedExternalReference(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="missing.tsx"/>
</map>`,
	}
	loader := NewLoaderWithReader(newMemReader(files))
	_, err := loader.LoadMap("main.tmx")
	if err == nil {
		t.Fatal("expected error for missing external tileset")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}
	if !strings.Contains(err.Error(), "missing.tsx") {
		t.Errorf("error %v does not name the offending path", err)
	}
}

func TestMissingRequiredAttribute(t *testing.T) {
	files := map[string]string{
		// No width attribute on <map>.
		"main.tmx": `<map version="1.10" orientation="orthogonal" height="1" tilewidth="16" tileheight="16"></map>`,
	}
	loader := NewLoaderWithReader(newMemReader(files))
	_, err := loader.LoadMap("main.tmx")
	if !errors.Is(err, ErrAttrMissing) {
		t.Fatalf("error = %v, want ErrAttrMissing", err)
	}
	var attrErr *AttrError
	if !errors.As(err, &attrErr) {
		t.Fatalf("error %v is not an AttrError", err)
	}
	if attrErr.Element != "map" || attrErr.Attr != "width" {
		t.Errorf("AttrError = %s/%s, want map/width", attrErr.Element, attrErr.Attr)
	}
}

func TestInvalidAttributeType(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<map version="1.10" orientation="orthogonal" width="wide" height="1" tilewidth="16" tileheight="16"></map>`,
	}
	loader := NewLoaderWithReader(newMemReader(files))
	_, err := loader.LoadMap("main.tmx")
	var attrErr *AttrError
	if !errors.As(err, &attrErr) {
		t.Fatalf("error %v is not an AttrError", err)
	}
	if attrErr.Element != "map" || attrErr.Attr != "width" {
		t.Errorf("AttrError = %s/%s, want map/width", attrErr.Element, attrErr.Attr)
	}
}

func TestTruncatedDocument(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <layer id="1" name="ground" width="1" height="1">
  <data encoding="csv">1`,
	}
	loader := NewLoaderWithReader(newMemReader(files))
	_, err := loader.LoadMap("main.tmx")
	if !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("error = %v, want ErrMalformedDocument", err)
	}
}

func TestLoadCancelled(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16"></map>`,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader := NewLoaderWithReader(newMemReader(files))
	if _, err := loader.LoadMapContext(ctx, "main.tmx"); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestLoadTilesetStandalone(t *testing.T) {
	reader := newMemReader(map[string]string{"shared.tsx": sharedTSX})
	loader := NewLoaderWithReader(reader)
	ts, err := loader.LoadTileset("shared.tsx")
	if err != nil {
		t.Fatalf("LoadTileset: %v", err)
	}
	if ts.Name != "shared" || ts.TileCount != 8 || ts.Columns != 4 {
		t.Errorf("tileset = %q/%d/%d, want shared/8/4", ts.Name, ts.TileCount, ts.Columns)
	}
	// A directly requested tileset is a final artifact, not an intermediate
	// one, and must not populate the cache.
	if _, ok := loader.Cache().Tileset("shared.tsx"); ok {
		t.Error("standalone tileset load populated the cache")
	}
}

func TestLoadThroughFS(t *testing.T) {
	fsys := fstest.MapFS{
		"maps/main.tmx": {Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="../shared.tsx"/>
 <layer id="1" name="ground" width="1" height="1">
  <data encoding="csv">1</data>
 </layer>
</map>`)},
		"shared.tsx": {Data: []byte(sharedTSX)},
	}
	loader := NewLoaderWithReader(FSResourceReader{FS: fsys})

	m, err := loader.LoadMap("maps/main.tmx")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	// The ../ reference normalizes to a root-relative fs path.
	resolved, err := m.ResolveGID(m.Layers()[0].Tiles.GIDAt(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if resolved.Tileset.Name != "shared" {
		t.Errorf("resolved tileset = %q, want shared", resolved.Tileset.Name)
	}
	if _, ok := loader.Cache().Tileset("shared.tsx"); !ok {
		t.Error("external tileset missing from the cache under its normalized path")
	}
}

func TestDuplicateAttributeLastWins(t *testing.T) {
	files := map[string]string{
		"main.tmx": `<map version="1.10" orientation="orthogonal" width="3" width="5" height="1" tilewidth="16" tileheight="16"></map>`,
	}
	m, _ := loadTestMap(t, files, "main.tmx")
	if m.Width != 5 {
		t.Errorf("width = %d, want 5 (last duplicate attribute wins)", m.Width)
	}
}
