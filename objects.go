package tiled

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// ObjectGroup is an ordered collection of placed objects. It backs both
// object layers and per-tile collision shapes.
type ObjectGroup struct {
	// Color is the editor display color for the group's objects.
	Color *Color
	// DrawOrder is "topdown" (default) or "index".
	DrawOrder string

	Objects []*Object
}

// ObjectShape discriminates the geometric shapes an object can take.
type ObjectShape int

const (
	ShapeRect ObjectShape = iota
	ShapeEllipse
	ShapePoint
	ShapePolygon
	ShapePolyline
	ShapeText
)

// Point is one vertex of a polygon or polyline, relative to the object's
// position.
type Point struct {
	X, Y float64
}

// Text holds the attributes of a text object.
type Text struct {
	Contents   string
	FontFamily string
	PixelSize  int
	Wrap       bool
	Color      Color
	Bold       bool
	Italic     bool
	Underline  bool
	Strikeout  bool
	Kerning    bool
	HAlign     string
	VAlign     string
}

// Object is a placed entity: a shape, a point, or a tile sprite, optionally
// instantiated from an external template with local overrides layered on top.
type Object struct {
	ID       uint32
	Name     string
	Class    string
	X, Y     float64
	Width    float64
	Height   float64
	Rotation float64
	Visible  bool

	// GID is non-zero for tile objects and keeps its orientation flags.
	GID GID

	Shape  ObjectShape
	Points []Point // ShapePolygon, ShapePolyline
	Text   *Text   // ShapeText

	Properties Properties

	// Template is the shared prototype this object was instantiated from,
	// nil for plain objects.
	Template *Template

	// tileset carries the template's own tileset reference for templated
	// tile objects, whose gids resolve against it rather than the map's
	// tileset table.
	tileset *MapTileset
}

func parseObjectGroup(p *parser, start xml.StartElement) (*ObjectGroup, Properties, error) {
	const el = "objectgroup"

	color, err := optColor(el, start.Attr, "color")
	if err != nil {
		return nil, nil, err
	}
	drawOrder, ok := optString(start.Attr, "draworder")
	if !ok {
		drawOrder = "topdown"
	}
	group := &ObjectGroup{Color: color, DrawOrder: drawOrder}

	var props Properties
	err = p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "object":
			obj, err := parseObject(p, child)
			if err != nil {
				return err
			}
			group.Objects = append(group.Objects, obj)
			return nil
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
	return group, props, nil
}

// parseObject builds an object from an <object> element. When the element
// names a template, the template's object is the base and every locally
// present attribute, shape, and property overrides it.
func parseObject(p *parser, start xml.StartElement) (*Object, error) {
	const el = "object"

	obj := &Object{Visible: true}
	if ref, ok := optString(start.Attr, "template"); ok {
		tpl, err := p.externalTemplate(ref)
		if err != nil {
			return nil, err
		}
		obj = tpl.Object.clone()
		obj.Template = tpl
		if tpl.Tileset != nil {
			obj.tileset = tpl.Tileset
		}
	}

	if err := applyObjectAttrs(el, start.Attr, obj); err != nil {
		return nil, err
	}

	err := p.children(el, func(child xml.StartElement) error {
		switch child.Name.Local {
		case "properties":
			local, err := parseProperties(p)
			if err != nil {
				return err
			}
			obj.Properties = obj.Properties.merged(local)
			return nil
		case "ellipse":
			obj.Shape = ShapeEllipse
			return p.skip()
		case "point":
			obj.Shape = ShapePoint
			return p.skip()
		case "polygon":
			return parsePoints(p, child, obj, ShapePolygon)
		case "polyline":
			return parsePoints(p, child, obj, ShapePolyline)
		case "text":
			return parseText(p, child, obj)
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// applyObjectAttrs overwrites only the fields whose attributes are present,
// preserving template-provided values for the rest.
func applyObjectAttrs(el string, attrs []xml.Attr, obj *Object) error {
	var err error
	if _, ok := optString(attrs, "id"); ok {
		if obj.ID, err = optUint32(el, attrs, "id", 0); err != nil {
			return err
		}
	}
	if v, ok := optString(attrs, "name"); ok {
		obj.Name = v
	}
	if v, ok := optString(attrs, "class"); ok {
		obj.Class = v
	} else if v, ok := optString(attrs, "type"); ok {
		obj.Class = v
	}
	if _, ok := optString(attrs, "x"); ok {
		if obj.X, err = optFloat(el, attrs, "x", 0); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "y"); ok {
		if obj.Y, err = optFloat(el, attrs, "y", 0); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "width"); ok {
		if obj.Width, err = optFloat(el, attrs, "width", 0); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "height"); ok {
		if obj.Height, err = optFloat(el, attrs, "height", 0); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "rotation"); ok {
		if obj.Rotation, err = optFloat(el, attrs, "rotation", 0); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "visible"); ok {
		if obj.Visible, err = optBool(el, attrs, "visible", true); err != nil {
			return err
		}
	}
	if _, ok := optString(attrs, "gid"); ok {
		gid, err := optUint32(el, attrs, "gid", 0)
		if err != nil {
			return err
		}
		obj.GID = GID(gid)
	}
	return nil
}

func parsePoints(p *parser, start xml.StartElement, obj *Object, shape ObjectShape) error {
	el := start.Name.Local
	raw, err := reqString(el, start.Attr, "points")
	if err != nil {
		return err
	}
	var points []Point
	for _, pair := range strings.Fields(raw) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return attrInvalid(el, "points", fmt.Errorf("malformed pair %q", pair))
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return attrInvalid(el, "points", err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return attrInvalid(el, "points", err)
		}
		points = append(points, Point{X: x, Y: y})
	}
	obj.Shape = shape
	obj.Points = points
	return p.skip()
}

func parseText(p *parser, start xml.StartElement, obj *Object) error {
	const el = "text"

	text := &Text{
		FontFamily: "sans-serif",
		PixelSize:  16,
		Kerning:    true,
		HAlign:     "left",
		VAlign:     "top",
	}
	if v, ok := optString(start.Attr, "fontfamily"); ok {
		text.FontFamily = v
	}
	var err error
	if text.PixelSize, err = optInt(el, start.Attr, "pixelsize", text.PixelSize); err != nil {
		return err
	}
	if text.Wrap, err = optBool(el, start.Attr, "wrap", false); err != nil {
		return err
	}
	if c, err := optColor(el, start.Attr, "color"); err != nil {
		return err
	} else if c != nil {
		text.Color = *c
	}
	if text.Bold, err = optBool(el, start.Attr, "bold", false); err != nil {
		return err
	}
	if text.Italic, err = optBool(el, start.Attr, "italic", false); err != nil {
		return err
	}
	if text.Underline, err = optBool(el, start.Attr, "underline", false); err != nil {
		return err
	}
	if text.Strikeout, err = optBool(el, start.Attr, "strikeout", false); err != nil {
		return err
	}
	if text.Kerning, err = optBool(el, start.Attr, "kerning", true); err != nil {
		return err
	}
	if v, ok := optString(start.Attr, "halign"); ok {
		text.HAlign = v
	}
	if v, ok := optString(start.Attr, "valign"); ok {
		text.VAlign = v
	}
	contents, err := p.text(el)
	if err != nil {
		return err
	}
	text.Contents = strings.TrimSpace(contents)
	obj.Shape = ShapeText
	obj.Text = text
	return nil
}

// clone deep-copies an object so template instantiation can override fields
// without mutating the shared prototype.
func (o *Object) clone() *Object {
	out := *o
	if o.Points != nil {
		out.Points = append([]Point(nil), o.Points...)
	}
	if o.Text != nil {
		t := *o.Text
		out.Text = &t
	}
	if o.Properties != nil {
		props := make(Properties, len(o.Properties))
		for k, v := range o.Properties {
			props[k] = v
		}
		out.Properties = props
	}
	return &out
}
