package tiled

import (
	"encoding/xml"
	"iter"
)

// LayerKind discriminates the four layer variants.
type LayerKind int

const (
	LayerKindTile LayerKind = iota
	LayerKindImage
	LayerKindObjects
	LayerKindGroup
)

// Layer carries the metadata common to every layer variant plus exactly one
// populated variant selected by Kind. Layers never hold a reference back to
// their owning map; gid resolution goes through Map at the point of access.
type Layer struct {
	ID      uint32
	Name    string
	Class   string
	Visible bool
	Opacity float64

	OffsetX   float64
	OffsetY   float64
	ParallaxX float64
	ParallaxY float64

	TintColor  *Color
	Properties Properties

	Kind    LayerKind
	Tiles   *TileLayer   // Kind == LayerKindTile
	Image   *ImageLayer  // Kind == LayerKindImage
	Objects *ObjectGroup // Kind == LayerKindObjects
	Group   *GroupLayer  // Kind == LayerKindGroup
}

// ImageLayer shows a single image.
type ImageLayer struct {
	Image   *Image
	RepeatX bool
	RepeatY bool
}

// GroupLayer owns an ordered sequence of child layers of any variant,
// nesting to arbitrary depth.
type GroupLayer struct {
	layers []*Layer
}

// Layers returns the group's direct children in document order.
func (g *GroupLayer) Layers() []*Layer {
	return g.layers
}

// Layer returns the i-th direct child, or nil when out of range.
func (g *GroupLayer) Layer(i int) *Layer {
	if i < 0 || i >= len(g.layers) {
		return nil
	}
	return g.layers[i]
}

// layerTags names the elements parseAnyLayer dispatches on.
func isLayerTag(tag string) bool {
	switch tag {
	case "layer", "imagelayer", "objectgroup", "group":
		return true
	}
	return false
}

func parseLayerCommon(el string, attrs []xml.Attr) (Layer, error) {
	id, err := optUint32(el, attrs, "id", 0)
	if err != nil {
		return Layer{}, err
	}
	name, _ := optString(attrs, "name")
	class, _ := optString(attrs, "class")
	visible, err := optBool(el, attrs, "visible", true)
	if err != nil {
		return Layer{}, err
	}
	opacity, err := optFloat(el, attrs, "opacity", 1.0)
	if err != nil {
		return Layer{}, err
	}
	offsetX, err := optFloat(el, attrs, "offsetx", 0)
	if err != nil {
		return Layer{}, err
	}
	offsetY, err := optFloat(el, attrs, "offsety", 0)
	if err != nil {
		return Layer{}, err
	}
	parallaxX, err := optFloat(el, attrs, "parallaxx", 1.0)
	if err != nil {
		return Layer{}, err
	}
	parallaxY, err := optFloat(el, attrs, "parallaxy", 1.0)
	if err != nil {
		return Layer{}, err
	}
	tint, err := optColor(el, attrs, "tintcolor")
	if err != nil {
		return Layer{}, err
	}
	return Layer{
		ID:        id,
		Name:      name,
		Class:     class,
		Visible:   visible,
		Opacity:   opacity,
		OffsetX:   offsetX,
		OffsetY:   offsetY,
		ParallaxX: parallaxX,
		ParallaxY: parallaxY,
		TintColor: tint,
	}, nil
}

// parseAnyLayer parses one of the four layer elements, whose start tag has
// already been consumed.
func parseAnyLayer(p *parser, start xml.StartElement, m *Map) (*Layer, error) {
	el := start.Name.Local
	layer, err := parseLayerCommon(el, start.Attr)
	if err != nil {
		return nil, err
	}

	switch el {
	case "layer":
		layer.Kind = LayerKindTile
		tiles, props, err := parseTileLayer(p, start, m)
		if err != nil {
			return nil, err
		}
		layer.Tiles, layer.Properties = tiles, props

	case "imagelayer":
		layer.Kind = LayerKindImage
		img := &ImageLayer{}
		img.RepeatX, err = optBool(el, start.Attr, "repeatx", false)
		if err != nil {
			return nil, err
		}
		img.RepeatY, err = optBool(el, start.Attr, "repeaty", false)
		if err != nil {
			return nil, err
		}
		err = p.children(el, func(child xml.StartElement) error {
			switch child.Name.Local {
			case "image":
				image, err := parseImage(p, child)
				if err != nil {
					return err
				}
				img.Image = image
				return nil
			case "properties":
				props, err := parseProperties(p)
				if err != nil {
					return err
				}
				layer.Properties = props
				return nil
			default:
				return p.skip()
			}
		})
		if err != nil {
			return nil, err
		}
		layer.Image = img

	case "objectgroup":
		layer.Kind = LayerKindObjects
		group, props, err := parseObjectGroup(p, start)
		if err != nil {
			return nil, err
		}
		layer.Objects, layer.Properties = group, props

	case "group":
		layer.Kind = LayerKindGroup
		group := &GroupLayer{}
		err = p.children(el, func(child xml.StartElement) error {
			switch {
			case isLayerTag(child.Name.Local):
				sub, err := parseAnyLayer(p, child, m)
				if err != nil {
					return err
				}
				group.layers = append(group.layers, sub)
				return nil
			case child.Name.Local == "properties":
				props, err := parseProperties(p)
				if err != nil {
					return err
				}
				layer.Properties = props
				return nil
			default:
				return p.skip()
			}
		})
		if err != nil {
			return nil, err
		}
		layer.Group = group
	}
	return &layer, nil
}

// flatten yields layer and, depth-first, every layer nested below it.
func flatten(layer *Layer, yield func(*Layer) bool) bool {
	if !yield(layer) {
		return false
	}
	if layer.Kind == LayerKindGroup {
		for _, child := range layer.Group.layers {
			if !flatten(child, yield) {
				return false
			}
		}
	}
	return true
}

// flattenAll is the iterator backing Map.AllLayers.
func flattenAll(layers []*Layer) iter.Seq[*Layer] {
	return func(yield func(*Layer) bool) {
		for _, layer := range layers {
			if !flatten(layer, yield) {
				return
			}
		}
	}
}
