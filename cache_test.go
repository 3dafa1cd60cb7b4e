package tiled

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in   string
		want ResourcePath
	}{
		{"maps/level1.tmx", "maps/level1.tmx"},
		{"maps/./level1.tmx", "maps/level1.tmx"},
		{"maps/east/../west/level1.tmx", "maps/west/level1.tmx"},
		{"./level1.tmx", "level1.tmx"},
		{"maps//level1.tmx", "maps/level1.tmx"},
	}
	for _, c := range cases {
		if got := NormalizePath(c.in); got != c.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	cases := []struct {
		base ResourcePath
		ref  string
		want ResourcePath
	}{
		{"maps/level1.tmx", "terrain.tsx", "maps/terrain.tsx"},
		{"maps/level1.tmx", "../shared/terrain.tsx", "shared/terrain.tsx"},
		{"maps/level1.tmx", "./terrain.tsx", "maps/terrain.tsx"},
		{"level1.tmx", "terrain.tsx", "terrain.tsx"},
		{"maps/level1.tmx", "/abs/terrain.tsx", "/abs/terrain.tsx"},
	}
	for _, c := range cases {
		if got := c.base.RelativeTo(c.ref); got != c.want {
			t.Errorf("%q.RelativeTo(%q) = %q, want %q", c.base, c.ref, got, c.want)
		}
	}
}

// Two references spelled differently but denoting the same file must collide
// on the same cache key.
func TestEquivalentReferencesShareCacheEntry(t *testing.T) {
	cache := NewDefaultResourceCache()
	ts := &Tileset{Name: "shared"}
	cache.InsertTileset(NormalizePath("maps/../shared/a.tsx"), ts)

	got, ok := cache.Tileset(NormalizePath("./shared/a.tsx"))
	if !ok {
		t.Fatal("equivalent spelling missed the cache")
	}
	if got != ts {
		t.Error("cache returned a distinct handle")
	}
}

func TestDefaultResourceCache(t *testing.T) {
	cache := NewDefaultResourceCache()
	if _, ok := cache.Tileset("a.tsx"); ok {
		t.Error("empty cache reported a tileset hit")
	}
	if _, ok := cache.Template("a.tx"); ok {
		t.Error("empty cache reported a template hit")
	}

	ts := &Tileset{Name: "a"}
	tpl := &Template{}
	cache.InsertTileset("a.tsx", ts)
	cache.InsertTemplate("a.tx", tpl)

	if got, ok := cache.Tileset("a.tsx"); !ok || got != ts {
		t.Error("tileset handle did not round-trip")
	}
	if got, ok := cache.Template("a.tx"); !ok || got != tpl {
		t.Error("template handle did not round-trip")
	}
	// Tileset and template namespaces are independent.
	if _, ok := cache.Tileset("a.tx"); ok {
		t.Error("template path answered a tileset lookup")
	}
}

func TestNoopResourceCache(t *testing.T) {
	cache := NoopResourceCache{}
	cache.InsertTileset("a.tsx", &Tileset{})
	cache.InsertTemplate("a.tx", &Template{})
	if _, ok := cache.Tileset("a.tsx"); ok {
		t.Error("no-op cache retained a tileset")
	}
	if _, ok := cache.Template("a.tx"); ok {
		t.Error("no-op cache retained a template")
	}
}
