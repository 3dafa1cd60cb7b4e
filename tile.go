package tiled

import (
	"encoding/xml"
	"time"
)

// TileData is the explicit metadata a tileset declares for one tile.
type TileData struct {
	// Image is set when the tile belongs to an image collection tileset.
	Image      *Image
	Properties Properties
	// Collision holds the tile's collision shapes, if any were drawn.
	Collision *ObjectGroup
	// Animation is the tile's frame sequence, nil for static tiles.
	Animation []Frame
	// Class is the user-assigned tile class ("type" in older documents).
	Class string
	// Probability weights this tile during terrain brush fills.
	Probability float64
}

// Frame is a single step of a tile animation.
type Frame struct {
	TileID   TileID
	Duration time.Duration
}

func parseTile(p *parser, start xml.StartElement) (TileID, *TileData, error) {
	const el = "tile"

	id, err := reqUint32(el, start.Attr, "id")
	if err != nil {
		return 0, nil, err
	}
	class, ok := optString(start.Attr, "class")
	if !ok {
		// "type" is the pre-1.9 spelling of the same attribute.
		class, _ = optString(start.Attr, "type")
	}
	probability, err := optFloat(el, start.Attr, "probability", 1.0)
	if err != nil {
		return 0, nil, err
	}

	data := &TileData{Class: class, Probability: probability}
	err = p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "image":
			img, err := parseImage(p, child)
			if err != nil {
				return err
			}
			data.Image = img
		case "properties":
			props, err := parseProperties(p)
			if err != nil {
				return err
			}
			data.Properties = props
		case "objectgroup":
			group, _, err := parseObjectGroup(p, child)
			if err != nil {
				return err
			}
			data.Collision = group
		case "animation":
			frames, err := parseAnimation(p)
			if err != nil {
				return err
			}
			data.Animation = frames
		default:
			return p.skip()
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return TileID(id), data, nil
}

func parseAnimation(p *parser) ([]Frame, error) {
	var frames []Frame
	err := p.children("animation", func(child xml.StartElement) error {
		if child.Name.Local != "frame" {
			return p.skip()
		}
		tileID, err := reqUint32("frame", child.Attr, "tileid")
		if err != nil {
			return err
		}
		durationMS, err := reqUint32("frame", child.Attr, "duration")
		if err != nil {
			return err
		}
		frames = append(frames, Frame{
			TileID:   TileID(tileID),
			Duration: time.Duration(durationMS) * time.Millisecond,
		})
		return p.skip()
	})
	if err != nil {
		return nil, err
	}
	return frames, nil
}
