package tiled

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parser walks the structural events of one document. External tileset and
// template references re-enter the same machinery with a fresh parser scoped
// to the referenced file, consulting the shared cache first.
type parser struct {
	dec    *xml.Decoder
	path   ResourcePath
	ctx    context.Context
	reader ResourceReader
	cache  ResourceCache
}

func newParser(ctx context.Context, r io.Reader, path ResourcePath, reader ResourceReader, cache ResourceCache) *parser {
	return &parser{
		dec:    xml.NewDecoder(r),
		path:   path,
		ctx:    ctx,
		reader: reader,
		cache:  cache,
	}
}

// root scans past prologue tokens to the document's root element and checks
// its name.
func (p *parser) root(want string) (xml.StartElement, error) {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("%w: %s: %v", ErrMalformedDocument, p.path, err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			if start.Name.Local != want {
				return xml.StartElement{}, fmt.Errorf("%w: %s: root element is <%s>, expected <%s>",
					ErrMalformedDocument, p.path, start.Name.Local, want)
			}
			return start, nil
		}
	}
}

// children invokes fn for every direct child element of the element named
// parent, whose start tag must already have been consumed. It returns once
// the matching end tag is read. Handlers that do not recognize a child must
// discard its subtree via skip.
func (p *parser) children(parent string, fn func(start xml.StartElement) error) error {
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %s: inside <%s>: %v", ErrMalformedDocument, p.path, parent, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := fn(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

// skip discards the subtree of the most recently consumed start element.
// Unrecognized tags are skipped, not rejected: the format allows
// forward-compatible unknown elements.
func (p *parser) skip() error {
	if err := p.dec.Skip(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, p.path, err)
	}
	return nil
}

// text consumes the remainder of the current element and returns its
// character data, with child elements discarded.
func (p *parser) text(parent string) (string, error) {
	var sb strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %s: inside <%s>: %v", ErrMalformedDocument, p.path, parent, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			if err := p.skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return sb.String(), nil
		}
	}
}

// externalTileset returns the tileset stored at ref (relative to the current
// document), parsing it at most once per session via the cache.
func (p *parser) externalTileset(ref string) (*Tileset, error) {
	target := p.path.RelativeTo(ref)
	if ts, ok := p.cache.Tileset(target); ok {
		return ts, nil
	}
	ts, err := parseExternal(p, target, func(sub *parser) (*Tileset, error) {
		start, err := sub.root("tileset")
		if err != nil {
			return nil, err
		}
		return parseTileset(sub, start, target)
	})
	if err != nil {
		return nil, err
	}
	p.cache.InsertTileset(target, ts)
	return ts, nil
}

// externalTemplate is the template counterpart of externalTileset.
func (p *parser) externalTemplate(ref string) (*Template, error) {
	target := p.path.RelativeTo(ref)
	if tpl, ok := p.cache.Template(target); ok {
		return tpl, nil
	}
	tpl, err := parseExternal(p, target, func(sub *parser) (*Template, error) {
		start, err := sub.root("template")
		if err != nil {
			return nil, err
		}
		return parseTemplate(sub, start)
	})
	if err != nil {
		return nil, err
	}
	p.cache.InsertTemplate(target, tpl)
	return tpl, nil
}

// parseExternal fetches target through the resource reader and runs parse
// over a fresh event stream for it. This is the only point a load touches
// I/O, and therefore the only point it can suspend on the context.
func parseExternal[T any](p *parser, target ResourcePath, parse func(*parser) (T, error)) (T, error) {
	var zero T
	rc, err := p.reader.OpenResource(p.ctx, string(target))
	if err != nil {
		return zero, fmt.Errorf("resolve external reference %s: %w", target, err)
	}
	defer rc.Close()
	sub := newParser(p.ctx, rc, target, p.reader, p.cache)
	return parse(sub)
}
