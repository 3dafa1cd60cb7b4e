package tiled

import "encoding/xml"

// Template is an externally stored object prototype. Templates are parsed at
// most once per load session and shared by handle among every object
// instantiated from them.
type Template struct {
	// Tileset is the template's own tileset reference, set when the template
	// object is a tile object. Its FirstGID is scoped to the template, not
	// to any map.
	Tileset *MapTileset
	// Object is the prototype all instances start from.
	Object *Object
}

// parseTemplate consumes a <template> root element.
func parseTemplate(p *parser, start xml.StartElement) (*Template, error) {
	tpl := &Template{}
	err := p.children("template", func(child xml.StartElement) error {
		switch child.Name.Local {
		case "tileset":
			ref, err := parseTilesetReference(p, child)
			if err != nil {
				return err
			}
			tpl.Tileset = ref
			return nil
		case "object":
			obj, err := parseObject(p, child)
			if err != nil {
				return err
			}
			tpl.Object = obj
			return nil
		default:
			return p.skip()
		}
	})
	if err != nil {
		return nil, err
	}
	if tpl.Object == nil {
		return nil, &AttrError{Element: "template", Attr: "object", Err: ErrAttrMissing}
	}
	if tpl.Tileset != nil && tpl.Object.GID != 0 {
		tpl.Object.tileset = tpl.Tileset
	}
	return tpl, nil
}

// parseTilesetReference handles a <tileset> element that carries a firstgid:
// the form used by map documents and templates. External sources go through
// the cache; embedded bodies are parsed inline.
func parseTilesetReference(p *parser, start xml.StartElement) (*MapTileset, error) {
	firstGID, err := reqUint32("tileset", start.Attr, "firstgid")
	if err != nil {
		return nil, err
	}
	if src, ok := optString(start.Attr, "source"); ok {
		ts, err := p.externalTileset(src)
		if err != nil {
			return nil, err
		}
		// The reference element itself stays empty; discard the remainder.
		if err := p.skip(); err != nil {
			return nil, err
		}
		return &MapTileset{FirstGID: GID(firstGID), Tileset: ts}, nil
	}
	ts, err := parseTileset(p, start, "")
	if err != nil {
		return nil, err
	}
	return &MapTileset{FirstGID: GID(firstGID), Tileset: ts}, nil
}
