package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"
	"strings"

	"github.com/boardkit/boardkit/internal/board"
)

// Vector emits an SVG document with one vector primitive per visible
// object, preserving geometry and style.
func Vector(b *board.Board) ([]byte, error) {
	if b.CanvasWidth <= 0 || b.CanvasHeight <= 0 {
		return nil, &Error{Format: FormatVector, Err: fmt.Errorf("invalid canvas dimensions %dx%d", b.CanvasWidth, b.CanvasHeight)}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		b.CanvasWidth, b.CanvasHeight, b.CanvasWidth, b.CanvasHeight)

	bg := b.BackgroundColor
	if bg == "" {
		bg = "#ffffff"
	}
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="%s"/>`+"\n",
		b.CanvasWidth, b.CanvasHeight, bg)

	for i := range b.Objects {
		o := &b.Objects[i]
		if !o.Visible {
			continue
		}
		writeSVGObject(&buf, o)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func writeSVGObject(buf *bytes.Buffer, o *board.CanvasObject) {
	t := o.Transform
	style := svgStyleAttrs(o.Style)
	rotate := ""
	if t.Rotation != 0 {
		cx, cy := rotationPivot(o)
		rotate = fmt.Sprintf(` transform="rotate(%s %s %s)"`,
			svgNum(t.Rotation), svgNum(cx), svgNum(cy))
	}

	switch o.Type {
	case board.ObjectTypeRectangle:
		fmt.Fprintf(buf, `  <rect x="%s" y="%s" width="%s" height="%s"%s%s/>`+"\n",
			svgNum(t.X), svgNum(t.Y), svgNum(t.Width), svgNum(t.Height), style, rotate)

	case board.ObjectTypeEllipse:
		fmt.Fprintf(buf, `  <ellipse cx="%s" cy="%s" rx="%s" ry="%s"%s%s/>`+"\n",
			svgNum(t.X+t.Width/2), svgNum(t.Y+t.Height/2),
			svgNum(t.Width/2), svgNum(t.Height/2), style, rotate)

	case board.ObjectTypeLine:
		fmt.Fprintf(buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s"%s%s/>`+"\n",
			svgNum(t.X), svgNum(t.Y), svgNum(t.X+t.Width), svgNum(t.Y+t.Height),
			svgStrokeAttrs(o.Style), rotate)

	case board.ObjectTypeArrow:
		x2, y2 := t.X+t.Width, t.Y+t.Height
		fmt.Fprintf(buf, `  <line x1="%s" y1="%s" x2="%s" y2="%s"%s%s/>`+"\n",
			svgNum(t.X), svgNum(t.Y), svgNum(x2), svgNum(y2),
			svgStrokeAttrs(o.Style), rotate)
		writeSVGArrowHead(buf, o, rotate)

	case board.ObjectTypeFreehand:
		if len(o.Points) == 0 {
			return
		}
		var pts strings.Builder
		for i, p := range o.Points {
			if i > 0 {
				pts.WriteByte(' ')
			}
			fmt.Fprintf(&pts, "%s,%s", svgNum(p.X), svgNum(p.Y))
		}
		fmt.Fprintf(buf, `  <polyline points="%s" fill="none"%s%s/>`+"\n",
			pts.String(), svgStrokeAttrs(o.Style), rotate)

	case board.ObjectTypeText:
		writeSVGText(buf, o, rotate)
	}
}

func writeSVGArrowHead(buf *bytes.Buffer, o *board.CanvasObject, rotate string) {
	t := o.Transform
	x1, y1 := t.X, t.Y
	x2, y2 := t.X+t.Width, t.Y+t.Height
	size := 4 * math.Max(o.Style.StrokeWidth, 1)
	angle := math.Atan2(y2-y1, x2-x1)
	const spread = math.Pi / 7

	ax := x2 - size*math.Cos(angle-spread)
	ay := y2 - size*math.Sin(angle-spread)
	bx := x2 - size*math.Cos(angle+spread)
	by := y2 - size*math.Sin(angle+spread)

	fmt.Fprintf(buf, `  <polygon points="%s,%s %s,%s %s,%s" fill="%s"%s%s/>`+"\n",
		svgNum(x2), svgNum(y2), svgNum(ax), svgNum(ay), svgNum(bx), svgNum(by),
		svgColor(o.Style.StrokeColor), svgOpacityAttr(o.Style.Opacity), rotate)
}

func writeSVGText(buf *bytes.Buffer, o *board.CanvasObject, rotate string) {
	attrs := o.Text
	if attrs == nil {
		return
	}
	t := o.Transform

	family := attrs.FontFamily
	if family == "" {
		family = "sans-serif"
	}
	color := attrs.TextColor
	if color == "" {
		color = "#000000"
	}
	size := attrs.FontSizePt
	if size <= 0 {
		size = 16
	}

	anchor := "start"
	x := t.X
	switch attrs.TextAlign {
	case "center":
		anchor = "middle"
		x = t.X + t.Width/2
	case "right":
		anchor = "end"
		x = t.X + t.Width
	}

	var extras strings.Builder
	if attrs.FontWeight != "" && attrs.FontWeight != "normal" {
		fmt.Fprintf(&extras, ` font-weight="%s"`, attrs.FontWeight)
	}
	if attrs.FontStyle != "" && attrs.FontStyle != "normal" {
		fmt.Fprintf(&extras, ` font-style="%s"`, attrs.FontStyle)
	}
	if attrs.TextDecoration != "" && attrs.TextDecoration != "none" {
		fmt.Fprintf(&extras, ` text-decoration="%s"`, attrs.TextDecoration)
	}

	fmt.Fprintf(buf, `  <text x="%s" y="%s" font-family="%s" font-size="%s" fill="%s" text-anchor="%s"%s%s%s>`,
		svgNum(x), svgNum(t.Y+size), xmlEscape(family), svgNum(size),
		svgColor(color), anchor, extras.String(), svgOpacityAttr(o.Style.Opacity), rotate)
	buf.WriteString(xmlEscape(attrs.Content))
	buf.WriteString("</text>\n")
}

func svgStyleAttrs(s board.Style) string {
	var b strings.Builder
	fmt.Fprintf(&b, ` fill="%s"`, svgColor(s.FillColor))
	if s.StrokeWidth > 0 && s.StrokeColor != "" {
		fmt.Fprintf(&b, ` stroke="%s" stroke-width="%s"`, svgColor(s.StrokeColor), svgNum(s.StrokeWidth))
	}
	b.WriteString(svgOpacityAttr(s.Opacity))
	return b.String()
}

func svgStrokeAttrs(s board.Style) string {
	w := s.StrokeWidth
	if w <= 0 {
		w = 1
	}
	return fmt.Sprintf(` stroke="%s" stroke-width="%s"%s`,
		svgColor(s.StrokeColor), svgNum(w), svgOpacityAttr(s.Opacity))
}

func svgOpacityAttr(opacity float64) string {
	if opacity <= 0 || opacity >= 1 {
		return ""
	}
	return fmt.Sprintf(` opacity="%s"`, svgNum(opacity))
}

func svgColor(c string) string {
	if c == "" {
		return "none"
	}
	return c
}

// svgNum formats a coordinate without trailing zero noise.
func svgNum(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}
