package tiled

import (
	"encoding/xml"
	"strconv"
)

// Attribute lookups scan the whole list so that a duplicated attribute name
// resolves to its last occurrence.

func optString(attrs []xml.Attr, name string) (string, bool) {
	val, found := "", false
	for _, a := range attrs {
		if a.Name.Local == name {
			val, found = a.Value, true
		}
	}
	return val, found
}

func reqString(element string, attrs []xml.Attr, name string) (string, error) {
	v, ok := optString(attrs, name)
	if !ok {
		return "", attrMissing(element, name)
	}
	return v, nil
}

func optInt(element string, attrs []xml.Attr, name string, def int) (int, error) {
	raw, ok := optString(attrs, name)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, attrInvalid(element, name, err)
	}
	return n, nil
}

func reqInt(element string, attrs []xml.Attr, name string) (int, error) {
	raw, err := reqString(element, attrs, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, attrInvalid(element, name, err)
	}
	return n, nil
}

func reqUint32(element string, attrs []xml.Attr, name string) (uint32, error) {
	raw, err := reqString(element, attrs, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, attrInvalid(element, name, err)
	}
	return uint32(n), nil
}

func optUint32(element string, attrs []xml.Attr, name string, def uint32) (uint32, error) {
	raw, ok := optString(attrs, name)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, attrInvalid(element, name, err)
	}
	return uint32(n), nil
}

func optFloat(element string, attrs []xml.Attr, name string, def float64) (float64, error) {
	raw, ok := optString(attrs, name)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, attrInvalid(element, name, err)
	}
	return f, nil
}

// optBool accepts the "1"/"0" spelling used throughout the format as well as
// "true"/"false".
func optBool(element string, attrs []xml.Attr, name string, def bool) (bool, error) {
	raw, ok := optString(attrs, name)
	if !ok {
		return def, nil
	}
	switch raw {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, attrInvalid(element, name, strconv.ErrSyntax)
}

func optColor(element string, attrs []xml.Attr, name string) (*Color, error) {
	raw, ok := optString(attrs, name)
	if !ok || raw == "" {
		return nil, nil
	}
	c, err := ParseColor(raw)
	if err != nil {
		return nil, attrInvalid(element, name, err)
	}
	return &c, nil
}
