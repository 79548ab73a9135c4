package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrNotSVG    = errors.New("not an svg document")
	ErrMalformed = errors.New("malformed svg document")
)

// Elements outside this set are dropped together with everything inside them.
var allowedElements = map[string]bool{
	"svg": true, "g": true, "defs": true, "title": true, "desc": true, "symbol": true, "use": true,
	"path": true, "circle": true, "ellipse": true, "line": true, "polyline": true, "polygon": true, "rect": true,
	"text": true, "tspan": true,
	"linearGradient": true, "radialGradient": true, "stop": true, "pattern": true,
	"clipPath": true, "mask": true,
}

var allowedAttrs = map[string]bool{
	"id": true, "class": true, "version": true, "viewBox": true, "preserveAspectRatio": true,
	"x": true, "y": true, "x1": true, "y1": true, "x2": true, "y2": true, "dx": true, "dy": true,
	"cx": true, "cy": true, "r": true, "rx": true, "ry": true, "fx": true, "fy": true,
	"width": true, "height": true, "d": true, "points": true, "transform": true, "offset": true,
	"fill": true, "fill-opacity": true, "fill-rule": true, "clip-rule": true, "opacity": true,
	"stroke": true, "stroke-width": true, "stroke-linecap": true, "stroke-linejoin": true,
	"stroke-opacity": true, "stroke-dasharray": true, "stroke-dashoffset": true, "stroke-miterlimit": true,
	"stop-color": true, "stop-opacity": true, "clip-path": true, "mask": true, "visibility": true,
	"gradientUnits": true, "gradientTransform": true, "spreadMethod": true,
	"patternUnits": true, "patternContentUnits": true, "patternTransform": true,
	"clipPathUnits": true, "maskUnits": true, "maskContentUnits": true,
	"font-family": true, "font-size": true, "font-weight": true, "font-style": true,
	"text-anchor": true, "dominant-baseline": true, "letter-spacing": true,
}

// Elements that may reference another element of the same document.
var hrefElements = map[string]bool{
	"use": true, "linearGradient": true, "radialGradient": true, "pattern": true,
}

type frame struct {
	name string
	kept bool
}

// Sanitize re-serializes an uploaded SVG avatar keeping only drawing
// elements and presentation attributes. Scripts, event handlers, animation,
// foreign content, styles and any reference leaving the document are
// removed. Input that is not well-formed XML is rejected.
func Sanitize(input []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(input))
	dec.Strict = true

	var (
		out     bytes.Buffer
		stack   []frame
		dropped int
		rooted  bool
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qualified(t.Name)
			if !rooted {
				if name != "svg" {
					return nil, ErrNotSVG
				}
				rooted = true
			} else if len(stack) == 0 {
				return nil, fmt.Errorf("%w: multiple root elements", ErrMalformed)
			}
			kept := dropped == 0 && allowedElements[name]
			stack = append(stack, frame{name: name, kept: kept})
			if !kept {
				dropped++
				continue
			}
			writeStart(&out, name, t.Attr)

		case xml.EndElement:
			name := qualified(t.Name)
			if len(stack) == 0 || stack[len(stack)-1].name != name {
				return nil, fmt.Errorf("%w: unexpected </%s>", ErrMalformed, name)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !top.kept {
				dropped--
				continue
			}
			out.WriteString("</" + name + ">")

		case xml.CharData:
			if dropped == 0 && len(stack) > 0 {
				_ = xml.EscapeText(&out, t)
			}
		}
	}

	if !rooted {
		return nil, ErrNotSVG
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%w: unclosed <%s>", ErrMalformed, stack[len(stack)-1].name)
	}
	return out.Bytes(), nil
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func writeStart(out *bytes.Buffer, name string, attrs []xml.Attr) {
	out.WriteString("<" + name)
	for _, a := range attrs {
		key := qualified(a.Name)
		if !keepAttr(name, key, a.Value) {
			continue
		}
		out.WriteString(" " + key + `="`)
		_ = xml.EscapeText(out, []byte(a.Value))
		out.WriteString(`"`)
	}
	out.WriteString(">")
}

func keepAttr(element, key, value string) bool {
	switch key {
	case "xmlns", "xmlns:xlink":
		ns := strings.TrimSpace(value)
		return ns == "http://www.w3.org/2000/svg" || ns == "http://www.w3.org/1999/xlink"
	case "href", "xlink:href":
		return hrefElements[element] && strings.HasPrefix(strings.TrimSpace(value), "#")
	}
	return allowedAttrs[key] && safeValue(value)
}

// safeValue rejects values that could execute or fetch something. Values
// arrive with entities already decoded; whitespace and control characters
// are removed before matching since browsers ignore them inside schemes.
func safeValue(v string) bool {
	compact := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToLower(v))

	for _, scheme := range []string{"javascript:", "vbscript:", "data:", "http:", "https:", "//"} {
		if strings.Contains(compact, scheme) {
			return false
		}
	}
	for rest := compact; ; {
		i := strings.Index(rest, "url(")
		if i < 0 {
			return true
		}
		rest = strings.TrimLeft(rest[i+len("url("):], `"'`)
		if !strings.HasPrefix(rest, "#") {
			return false
		}
	}
}
