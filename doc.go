// Package tiled loads hierarchical tile-map documents in the TMX family of
// formats (maps, external tilesets, object templates) into an immutable
// in-memory model.
//
// Loading goes through a Loader, which pairs a ResourceReader (how document
// bytes are obtained) with a ResourceCache (so an external tileset or
// template referenced from many places is parsed at most once per session
// and shared by handle):
//
//	loader := tiled.NewLoader()
//	m, err := loader.LoadMap("assets/world.tmx")
//	if err != nil {
//		// a failed load produces no model
//	}
//	for layer := range m.AllLayers() {
//		// depth-first, in document order
//	}
//
// Tile cells and tile objects store packed global tile ids (GID) carrying
// orientation flags; Map.ResolveGID maps them back to a tileset handle and a
// local tile id on demand.
package tiled
