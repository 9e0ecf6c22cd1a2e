package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/wcharczuk/go-chart/v2/roboto"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var (
	fontTitle    font.Face
	fontSubtitle font.Face
	fontFooter   font.Face
	fontOnce     sync.Once
	fontErr      error
)

func loadFonts() {
	fontOnce.Do(func() {
		f, err := opentype.Parse(roboto.Roboto)
		if err != nil {
			fontErr = fmt.Errorf("parse roboto: %w", err)
			return
		}

		faces := []struct {
			dst  *font.Face
			size float64
		}{
			{&fontTitle, 40},
			{&fontSubtitle, 26},
			{&fontFooter, 20},
		}
		for _, fc := range faces {
			*fc.dst, err = opentype.NewFace(f, &opentype.FaceOptions{
				Size:    fc.size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				fontErr = fmt.Errorf("create %.0fpt face: %w", fc.size, err)
				return
			}
		}
	})
}

// PreviewData is the text printed on a scene preview card.
type PreviewData struct {
	Title    string // chart title
	Subtitle string // narrative title, e.g. "Scene 1 Observations"
	Footer   string
}

// CardWidth and CardHeight are the standard Open Graph image dimensions.
const (
	CardWidth  = 1200
	CardHeight = 630

	headerHeight = 130
	cardPadding  = 40
	footerHeight = 50
)

var (
	cardBackground = color.RGBA{247, 247, 245, 255}
	headerColor    = color.RGBA{24, 32, 56, 255}
	white          = color.RGBA{255, 255, 255, 255}
	lightGray      = color.RGBA{200, 200, 200, 255}
	darkGray       = color.RGBA{90, 90, 90, 255}
)

// GeneratePreview composes a preview card: a header with the chart and
// narrative titles, the chart image scaled to fit below it, and a footer.
// If the fonts cannot be loaded the card falls back to a fixed bitmap face.
func GeneratePreview(chartPNG []byte, data PreviewData) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(chartPNG))
	if err != nil {
		return nil, fmt.Errorf("decode chart image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(cardBackground), image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(0, 0, CardWidth, headerHeight), image.NewUniform(headerColor), image.Point{}, draw.Src)

	area := image.Rect(cardPadding, headerHeight+cardPadding/2, CardWidth-cardPadding, CardHeight-footerHeight)
	draw.CatmullRom.Scale(dst, fit(src.Bounds(), area), src, src.Bounds(), draw.Over, nil)

	title, subtitle, footer := faces()
	maxWidth := CardWidth - 2*cardPadding
	drawText(dst, truncate(data.Title, title, maxWidth), cardPadding, 62, white, title)
	drawText(dst, truncate(data.Subtitle, subtitle, maxWidth), cardPadding, 104, lightGray, subtitle)
	if data.Footer != "" {
		drawText(dst, data.Footer, cardPadding, CardHeight-18, darkGray, footer)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode preview image: %w", err)
	}
	return buf.Bytes(), nil
}

func faces() (title, subtitle, footer font.Face) {
	loadFonts()
	if fontErr != nil {
		return basicfont.Face7x13, basicfont.Face7x13, basicfont.Face7x13
	}
	return fontTitle, fontSubtitle, fontFooter
}

// fit returns the largest rectangle with src's aspect ratio centred in area.
func fit(src, area image.Rectangle) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw == 0 || sh == 0 {
		return image.Rectangle{}
	}
	scale := float64(area.Dx()) / float64(sw)
	if s := float64(area.Dy()) / float64(sh); s < scale {
		scale = s
	}
	w, h := int(float64(sw)*scale), int(float64(sh)*scale)
	x := area.Min.X + (area.Dx()-w)/2
	y := area.Min.Y + (area.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// truncate shortens text with an ellipsis until it fits in maxWidth pixels.
func truncate(text string, face font.Face, maxWidth int) string {
	limit := fixed.I(maxWidth)
	if font.MeasureString(face, text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + "..."
		if font.MeasureString(face, s) <= limit {
			return s
		}
	}
	return ""
}

// drawText draws text with its baseline at y.
func drawText(img *image.RGBA, text string, x, y int, col color.Color, face font.Face) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}
