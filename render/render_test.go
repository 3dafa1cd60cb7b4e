package render

import (
	"testing"
	"testing/fstest"

	tiled "github.com/Debaug/rs-tiled"
)

func TestDrawSkipsEmptyImageLayer(t *testing.T) {
	fsys := fstest.MapFS{
		"main.tmx": {Data: []byte(`<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <imagelayer id="2" name="backdrop"/>
</map>`)},
	}
	loader := tiled.NewLoaderWithReader(tiled.FSResourceReader{FS: fsys})
	m, err := loader.LoadMap("main.tmx")
	if err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	layer := m.Layers()[0]
	if layer.Kind != tiled.LayerKindImage || layer.Image.Image != nil {
		t.Fatalf("layer = %+v, want an image layer without an image", layer)
	}

	r, err := NewMapRenderer(m)
	if err != nil {
		t.Fatalf("NewMapRenderer: %v", err)
	}
	// The layer has nothing to draw, so drawing it must not touch the screen.
	if err := r.Draw(nil); err != nil {
		t.Errorf("Draw: %v", err)
	}
}
