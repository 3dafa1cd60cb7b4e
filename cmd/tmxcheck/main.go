// tmxcheck scans a directory tree for map documents and loads every one of
// them, reporting any that fail to parse. Maps are checked concurrently,
// each with its own loader and cache.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	tiled "github.com/Debaug/rs-tiled"
	"github.com/Debaug/rs-tiled/mapscanner"
)

func main() {
	dir := flag.String("dir", ".", "directory to scan for .tmx maps")
	jobs := flag.Int("jobs", 4, "maximum concurrent map loads")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	entries, err := mapscanner.ScanDirectory(*dir)
	if err != nil {
		logger.Error("scan failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		logger.Info("no maps found", "dir", *dir)
		return
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*jobs)

	failed := make([]string, len(entries))
	for i, entry := range entries {
		g.Go(func() error {
			path := filepath.Join(*dir, entry.Path)
			// One loader per map: a cache must not be shared across
			// concurrent loads without external synchronization.
			loader := tiled.NewLoader()
			m, err := loader.LoadMapContext(ctx, path)
			if err != nil {
				failed[i] = entry.Path
				logger.Error("load failed", "map", entry.Path, "error", err)
				return nil
			}
			if err := checkGIDs(m); err != nil {
				failed[i] = entry.Path
				logger.Error("gid check failed", "map", entry.Path, "error", err)
				return nil
			}
			logger.Info("ok", "map", entry.Path, "tilesets", len(m.Tilesets()))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("check aborted", "error", err)
		os.Exit(1)
	}

	bad := 0
	for _, f := range failed {
		if f != "" {
			bad++
		}
	}
	if bad > 0 {
		logger.Error("maps with errors", "count", bad, "total", len(entries))
		os.Exit(1)
	}
	logger.Info("all maps ok", "count", len(entries))
}

// checkGIDs resolves every gid placed on every tile layer, surfacing data
// errors that parsing alone leaves latent.
func checkGIDs(m *tiled.Map) error {
	for layer := range m.AllLayers() {
		switch layer.Kind {
		case tiled.LayerKindTile:
			if err := checkTileLayer(m, layer.Tiles); err != nil {
				return err
			}
		case tiled.LayerKindObjects:
			for _, obj := range layer.Objects.Objects {
				if obj.GID == 0 {
					continue
				}
				if _, err := m.ResolveObjectGID(obj); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkTileLayer(m *tiled.Map, tl *tiled.TileLayer) error {
	resolve := func(x, y int) error {
		_, err := m.ResolveGID(tl.GIDAt(x, y))
		return err
	}
	if tl.Infinite() {
		for _, chunk := range tl.Chunks() {
			for y := 0; y < chunk.Height; y++ {
				for x := 0; x < chunk.Width; x++ {
					if err := resolve(chunk.X+x, chunk.Y+y); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	for y := 0; y < tl.Height; y++ {
		for x := 0; x < tl.Width; x++ {
			if err := resolve(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}
