package tiled

import (
	"errors"
	"fmt"
)

var (
	// ErrAttrMissing signals that a required attribute was absent from an element.
	ErrAttrMissing = errors.New("required attribute is missing")
	// ErrInvalidGID signals that a global tile id could not be mapped back to
	// any tileset declared by the map.
	ErrInvalidGID = errors.New("invalid global tile id")
	// ErrMalformedDocument signals a structural problem: an unexpected root
	// element, a truncated stream, or a mismatched end tag.
	ErrMalformedDocument = errors.New("malformed document")
	// ErrUnsupportedEncoding signals a tile data encoding this library does not understand.
	ErrUnsupportedEncoding = errors.New("unsupported tile data encoding")
	// ErrUnsupportedCompression signals a tile data compression scheme this
	// library does not understand (for example zstd).
	ErrUnsupportedCompression = errors.New("unsupported tile data compression")
)

// AttrError reports a missing or malformed attribute, identifying both the
// element and the attribute the parser was working on.
type AttrError struct {
	Element string
	Attr    string
	Err     error
}

func (e *AttrError) Error() string {
	return fmt.Sprintf("element <%s>, attribute %q: %v", e.Element, e.Attr, e.Err)
}

func (e *AttrError) Unwrap() error {
	return e.Err
}

func attrMissing(element, attr string) error {
	return &AttrError{Element: element, Attr: attr, Err: ErrAttrMissing}
}

func attrInvalid(element, attr string, err error) error {
	return &AttrError{Element: element, Attr: attr, Err: err}
}
