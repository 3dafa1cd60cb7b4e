package tiled

import "encoding/xml"

// Image is a reference to an image file plus the dimensions recorded in the
// document. Pixel data is never decoded here; see the render package.
type Image struct {
	// Source is the image path, normalized relative to the document that
	// referenced it.
	Source ResourcePath
	Width  int
	Height int
	// Transparent is the color-key color, if the document declares one.
	Transparent *Color
}

func parseImage(p *parser, start xml.StartElement) (*Image, error) {
	src, err := reqString("image", start.Attr, "source")
	if err != nil {
		return nil, err
	}
	width, err := optInt("image", start.Attr, "width", 0)
	if err != nil {
		return nil, err
	}
	height, err := optInt("image", start.Attr, "height", 0)
	if err != nil {
		return nil, err
	}
	trans, err := optColor("image", start.Attr, "trans")
	if err != nil {
		return nil, err
	}
	if err := p.skip(); err != nil {
		return nil, err
	}
	return &Image{
		Source:      p.path.RelativeTo(src),
		Width:       width,
		Height:      height,
		Transparent: trans,
	}, nil
}
