package tiled

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// PropertyKind discriminates the typed values a custom property can hold.
type PropertyKind int

const (
	PropString PropertyKind = iota
	PropInt
	PropFloat
	PropBool
	PropColor
	PropFile
	PropObject
	PropClass
)

// PropertyValue is one typed custom property value. Kind selects which field
// carries the value.
type PropertyValue struct {
	Kind PropertyKind

	Str   string  // PropString, PropFile
	Int   int64   // PropInt, PropObject (object id)
	Float float64 // PropFloat
	Bool  bool    // PropBool
	Color Color   // PropColor

	// Class holds the property type name and Members the nested values when
	// Kind is PropClass.
	Class   string
	Members Properties
}

// Properties maps property names to their typed values. Attachment order is
// not significant.
type Properties map[string]PropertyValue

// GetString returns the named string property, or def when absent or of a
// different kind.
func (p Properties) GetString(name, def string) string {
	if v, ok := p[name]; ok && (v.Kind == PropString || v.Kind == PropFile) {
		return v.Str
	}
	return def
}

// GetInt returns the named integer property, or def when absent or of a
// different kind.
func (p Properties) GetInt(name string, def int64) int64 {
	if v, ok := p[name]; ok && v.Kind == PropInt {
		return v.Int
	}
	return def
}

// GetFloat returns the named float property, or def when absent or of a
// different kind.
func (p Properties) GetFloat(name string, def float64) float64 {
	if v, ok := p[name]; ok && v.Kind == PropFloat {
		return v.Float
	}
	return def
}

// GetBool returns the named boolean property, or def when absent or of a
// different kind.
func (p Properties) GetBool(name string, def bool) bool {
	if v, ok := p[name]; ok && v.Kind == PropBool {
		return v.Bool
	}
	return def
}

// merged returns a copy of p with every entry of over layered on top.
// Used for template property overrides.
func (p Properties) merged(over Properties) Properties {
	if len(p) == 0 {
		return over
	}
	out := make(Properties, len(p)+len(over))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func parsePropertyValue(typ, raw string) (PropertyValue, error) {
	switch typ {
	case "", "string":
		return PropertyValue{Kind: PropString, Str: raw}, nil
	case "int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Kind: PropInt, Int: n}, nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Kind: PropFloat, Float: f}, nil
	case "bool":
		switch raw {
		case "true", "1":
			return PropertyValue{Kind: PropBool, Bool: true}, nil
		case "false", "0", "":
			return PropertyValue{Kind: PropBool, Bool: false}, nil
		default:
			return PropertyValue{}, fmt.Errorf("invalid bool %q", raw)
		}
	case "color":
		if raw == "" {
			return PropertyValue{Kind: PropColor}, nil
		}
		c, err := ParseColor(raw)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Kind: PropColor, Color: c}, nil
	case "file":
		return PropertyValue{Kind: PropFile, Str: raw}, nil
	case "object":
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Kind: PropObject, Int: id}, nil
	default:
		return PropertyValue{}, fmt.Errorf("unknown property type %q", typ)
	}
}

// parseProperties consumes a <properties> element. It is the single routine
// shared by every property owner in the document.
func parseProperties(p *parser) (Properties, error) {
	props := make(Properties)
	err := p.children("properties", func(start xml.StartElement) error {
		if start.Name.Local != "property" {
			return p.skip()
		}
		return parseProperty(p, start, props)
	})
	if err != nil {
		return nil, err
	}
	return props, nil
}

func parseProperty(p *parser, start xml.StartElement, props Properties) error {
	name, ok := optString(start.Attr, "name")
	if !ok {
		return attrMissing("property", "name")
	}
	typ, _ := optString(start.Attr, "type")
	classType, _ := optString(start.Attr, "propertytype")

	// Class properties carry their members in a nested <properties> block.
	if typ == "class" || classType != "" {
		members := make(Properties)
		err := p.children("property", func(child xml.StartElement) error {
			if child.Name.Local != "properties" {
				return p.skip()
			}
			m, err := parseProperties(p)
			if err != nil {
				return err
			}
			members = m
			return nil
		})
		if err != nil {
			return err
		}
		props[name] = PropertyValue{Kind: PropClass, Class: classType, Members: members}
		return nil
	}

	raw, hasValue := optString(start.Attr, "value")
	if !hasValue {
		// Multiline string properties put the value in element text instead.
		text, err := p.text("property")
		if err != nil {
			return err
		}
		raw = text
	} else if err := p.skip(); err != nil {
		return err
	}

	v, err := parsePropertyValue(typ, raw)
	if err != nil {
		return attrInvalid("property", name, err)
	}
	props[name] = v
	return nil
}
