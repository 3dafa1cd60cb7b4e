package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	tiled "github.com/Debaug/rs-tiled"
	"github.com/Debaug/rs-tiled/mapscanner"
	"github.com/Debaug/rs-tiled/render"
)

type viewer struct {
	renderer *render.MapRenderer
	width    int
	height   int
}

func (v *viewer) Update() error { return nil }

func (v *viewer) Draw(screen *ebiten.Image) {
	if err := v.renderer.Draw(screen); err != nil {
		log.Printf("draw: %v", err)
	}
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

func main() {
	mapPath := flag.String("map", "", "path to the .tmx map to display")
	flag.Parse()

	if *mapPath == "" {
		log.Fatal("usage: tmxview -map <file.tmx>")
	}
	if !mapscanner.Exists(*mapPath) {
		log.Fatalf("No map file at %s", *mapPath)
	}

	loader := tiled.NewLoader()
	m, err := loader.LoadMap(*mapPath)
	if err != nil {
		log.Fatalf("Failed to load map: %v", err)
	}

	renderer, err := render.NewMapRenderer(m)
	if err != nil {
		log.Fatalf("Failed to prepare renderer: %v", err)
	}

	width := m.Width * m.TileWidth
	height := m.Height * m.TileHeight
	if width <= 0 || height <= 0 {
		// Infinite maps have no fixed pixel size; pick a window.
		width, height = 1280, 800
	}

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("tmxview - " + *mapPath)

	if err := ebiten.RunGame(&viewer{renderer: renderer, width: width, height: height}); err != nil {
		log.Fatalf("Viewer exited with error: %v", err)
	}
}
