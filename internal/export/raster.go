package export

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/boardkit/boardkit/internal/board"
)

// Raster renders the full scene to PNG bytes at the board's canvas
// dimensions, respecting z-order, visibility and opacity.
func Raster(b *board.Board) ([]byte, error) {
	if b.CanvasWidth <= 0 || b.CanvasHeight <= 0 {
		return nil, &Error{Format: FormatRaster, Err: fmt.Errorf("invalid canvas dimensions %dx%d", b.CanvasWidth, b.CanvasHeight)}
	}

	dc := gg.NewContext(b.CanvasWidth, b.CanvasHeight)

	bg := b.BackgroundColor
	if bg == "" {
		bg = "#ffffff"
	}
	r, g, bl, a, err := parseHexColor(bg)
	if err != nil {
		return nil, &Error{Format: FormatRaster, Err: err}
	}
	dc.SetRGBA(r, g, bl, a)
	dc.Clear()

	for i := range b.Objects {
		o := &b.Objects[i]
		if !o.Visible {
			continue
		}
		if err := drawObject(dc, o); err != nil {
			return nil, &Error{Format: FormatRaster, Err: err}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, &Error{Format: FormatRaster, Err: err}
	}
	return buf.Bytes(), nil
}

func drawObject(dc *gg.Context, o *board.CanvasObject) error {
	t := o.Transform
	opacity := o.Style.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	rotated := t.Rotation != 0
	if rotated {
		cx, cy := rotationPivot(o)
		dc.Push()
		dc.RotateAbout(gg.Radians(t.Rotation), cx, cy)
	}

	switch o.Type {
	case board.ObjectTypeRectangle:
		dc.DrawRectangle(t.X, t.Y, t.Width, t.Height)
		fillStroke(dc, o.Style, opacity)
	case board.ObjectTypeEllipse:
		dc.DrawEllipse(t.X+t.Width/2, t.Y+t.Height/2, t.Width/2, t.Height/2)
		fillStroke(dc, o.Style, opacity)
	case board.ObjectTypeLine:
		drawStrokedLine(dc, o.Style, opacity, t.X, t.Y, t.X+t.Width, t.Y+t.Height)
	case board.ObjectTypeArrow:
		x2, y2 := t.X+t.Width, t.Y+t.Height
		drawStrokedLine(dc, o.Style, opacity, t.X, t.Y, x2, y2)
		drawArrowHead(dc, o.Style, opacity, t.X, t.Y, x2, y2)
	case board.ObjectTypeFreehand:
		drawFreehand(dc, o, opacity)
	case board.ObjectTypeText:
		if err := drawText(dc, o, opacity); err != nil {
			if rotated {
				dc.Pop()
			}
			return err
		}
	}

	if rotated {
		dc.Pop()
	}
	return nil
}

// rotationPivot is the center an object rotates about. Freehand paths carry
// a zero transform, so their pivot is the point-extent center, matching the
// bounds used for hit testing.
func rotationPivot(o *board.CanvasObject) (float64, float64) {
	if o.Type == board.ObjectTypeFreehand && len(o.Points) > 0 {
		minX, minY := o.Points[0].X, o.Points[0].Y
		maxX, maxY := minX, minY
		for _, p := range o.Points[1:] {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
		return (minX + maxX) / 2, (minY + maxY) / 2
	}
	t := o.Transform
	return t.X + t.Width/2, t.Y + t.Height/2
}

func fillStroke(dc *gg.Context, s board.Style, opacity float64) {
	if setColor(dc, s.FillColor, opacity) {
		dc.FillPreserve()
	}
	if s.StrokeWidth > 0 && setColor(dc, s.StrokeColor, opacity) {
		dc.SetLineWidth(s.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
}

func drawStrokedLine(dc *gg.Context, s board.Style, opacity, x1, y1, x2, y2 float64) {
	if !setColor(dc, s.StrokeColor, opacity) {
		return
	}
	w := s.StrokeWidth
	if w <= 0 {
		w = 1
	}
	dc.SetLineWidth(w)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
}

// drawArrowHead fills a triangle at the end point, sized from the stroke
// width.
func drawArrowHead(dc *gg.Context, s board.Style, opacity, x1, y1, x2, y2 float64) {
	if !setColor(dc, s.StrokeColor, opacity) {
		return
	}
	size := 4 * max(s.StrokeWidth, 1)
	angle := math.Atan2(y2-y1, x2-x1)
	const spread = math.Pi / 7

	dc.MoveTo(x2, y2)
	dc.LineTo(x2-size*math.Cos(angle-spread), y2-size*math.Sin(angle-spread))
	dc.LineTo(x2-size*math.Cos(angle+spread), y2-size*math.Sin(angle+spread))
	dc.ClosePath()
	dc.Fill()
}

func drawFreehand(dc *gg.Context, o *board.CanvasObject, opacity float64) {
	if len(o.Points) == 0 || !setColor(dc, o.Style.StrokeColor, opacity) {
		return
	}
	w := o.Style.StrokeWidth
	if w <= 0 {
		w = 1
	}
	if len(o.Points) == 1 {
		// A click leaves a dot.
		dc.DrawCircle(o.Points[0].X, o.Points[0].Y, w/2)
		dc.Fill()
		return
	}
	dc.SetLineWidth(w)
	dc.MoveTo(o.Points[0].X, o.Points[0].Y)
	for _, p := range o.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func drawText(dc *gg.Context, o *board.CanvasObject, opacity float64) error {
	attrs := o.Text
	if attrs == nil || attrs.Content == "" {
		return nil
	}

	face, err := fontFace(attrs)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	color := attrs.TextColor
	if color == "" {
		color = "#000000"
	}
	if !setColor(dc, color, opacity) {
		return nil
	}

	align := gg.AlignLeft
	switch attrs.TextAlign {
	case "center":
		align = gg.AlignCenter
	case "right":
		align = gg.AlignRight
	}

	t := o.Transform
	width := t.Width
	if width <= 0 {
		width, _ = dc.MeasureString(attrs.Content)
	}
	dc.DrawStringWrapped(attrs.Content, t.X, t.Y, 0, 0, width, 1.3, align)

	if attrs.TextDecoration == "underline" && !strings.Contains(attrs.Content, "\n") {
		w, h := dc.MeasureString(attrs.Content)
		if w <= width {
			dc.SetLineWidth(max(attrs.FontSizePt/14, 1))
			dc.DrawLine(t.X, t.Y+h+2, t.X+w, t.Y+h+2)
			dc.Stroke()
		}
	}
	return nil
}

var (
	fontOnce sync.Once
	fontErr  error
	fonts    map[string]*truetype.Font
)

func loadFonts() {
	fonts = make(map[string]*truetype.Font, 4)
	for key, data := range map[string][]byte{
		"regular":    goregular.TTF,
		"bold":       gobold.TTF,
		"italic":     goitalic.TTF,
		"bolditalic": gobolditalic.TTF,
	} {
		f, err := truetype.Parse(data)
		if err != nil {
			fontErr = fmt.Errorf("parse %s font: %w", key, err)
			return
		}
		fonts[key] = f
	}
}

// fontFace resolves the embedded Go font variant closest to the requested
// weight/style. FontFamily is advisory: raster export always uses the
// bundled faces so output is reproducible without system fonts.
func fontFace(attrs *board.TextAttrs) (font.Face, error) {
	fontOnce.Do(loadFonts)
	if fontErr != nil {
		return nil, fontErr
	}

	bold := attrs.FontWeight == "bold" || attrs.FontWeight == "700"
	italic := attrs.FontStyle == "italic" || attrs.FontStyle == "oblique"

	key := "regular"
	switch {
	case bold && italic:
		key = "bolditalic"
	case bold:
		key = "bold"
	case italic:
		key = "italic"
	}

	size := attrs.FontSizePt
	if size <= 0 {
		size = 16
	}
	return truetype.NewFace(fonts[key], &truetype.Options{Size: size}), nil
}

// setColor parses a hex color, multiplies in the object opacity and sets it
// on the context. Empty or "none" colors report false so the caller skips
// the paint step.
func setColor(dc *gg.Context, hex string, opacity float64) bool {
	if hex == "" || hex == "none" || hex == "transparent" {
		return false
	}
	r, g, b, a, err := parseHexColor(hex)
	if err != nil {
		return false
	}
	dc.SetRGBA(r, g, b, a*opacity)
	return true
}

// parseHexColor parses #RGB, #RRGGBB and #RRGGBBAA into 0..1 components.
func parseHexColor(s string) (r, g, b, a float64, err error) {
	s = strings.TrimPrefix(s, "#")
	hexByte := func(sub string) (float64, error) {
		var v int
		_, err := fmt.Sscanf(sub, "%02x", &v)
		return float64(v) / 255, err
	}

	a = 1
	switch len(s) {
	case 3:
		if r, err = hexByte(string([]byte{s[0], s[0]})); err != nil {
			return
		}
		if g, err = hexByte(string([]byte{s[1], s[1]})); err != nil {
			return
		}
		b, err = hexByte(string([]byte{s[2], s[2]}))
	case 8:
		if a, err = hexByte(s[6:8]); err != nil {
			return
		}
		fallthrough
	case 6:
		if r, err = hexByte(s[0:2]); err != nil {
			return
		}
		if g, err = hexByte(s[2:4]); err != nil {
			return
		}
		b, err = hexByte(s[4:6])
	default:
		err = fmt.Errorf("invalid color %q", s)
	}
	return
}
