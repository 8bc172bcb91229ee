package main

import (
	"bytes"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// Global font source for error image generation
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// DrawFilledCircle draws a filled circle with float64 coordinates
func DrawFilledCircle(screen *ebiten.Image, cx, cy, r float64, clr color.Color) {
	vector.DrawFilledCircle(screen, float32(cx), float32(cy), float32(r), clr, true)
}

// DrawCircleOutline draws a circle outline with the given stroke width
func DrawCircleOutline(screen *ebiten.Image, cx, cy, r, width float64, clr color.Color) {
	vector.StrokeCircle(screen, float32(cx), float32(cy), float32(r), float32(width), clr, true)
}

// DrawRectOutline draws a rectangle outline with the given stroke width
func DrawRectOutline(screen *ebiten.Image, x, y, w, h, width float64, clr color.Color) {
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), float32(width), clr, false)
}

// DrawPolyline draws connected line segments with round joints. A single
// point renders as a dot, so a tap with the pen still leaves a mark.
func DrawPolyline(screen *ebiten.Image, pts []StrokePoint, width float64, clr color.Color) {
	if len(pts) == 0 {
		return
	}
	r := width / 2
	if len(pts) == 1 {
		DrawFilledCircle(screen, pts[0].X, pts[0].Y, r, clr)
		return
	}
	for i := 1; i < len(pts); i++ {
		vector.StrokeLine(screen,
			float32(pts[i-1].X), float32(pts[i-1].Y),
			float32(pts[i].X), float32(pts[i].Y),
			float32(width), clr, true)
		DrawFilledCircle(screen, pts[i-1].X, pts[i-1].Y, r, clr)
	}
	DrawFilledCircle(screen, pts[len(pts)-1].X, pts[len(pts)-1].Y, r, clr)
}

// parseHexColor parses "#rgb" or "#rrggbb" into an opaque color
func parseHexColor(s string) (color.RGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("color %q must start with '#'", s)
	}
	hex := s[1:]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	switch len(hex) {
	case 3:
		r := uint8(v>>8&0xf) * 17
		g := uint8(v>>4&0xf) * 17
		b := uint8(v&0xf) * 17
		return color.RGBA{r, g, b, 255}, nil
	case 6:
		return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}, nil
	default:
		return color.RGBA{}, fmt.Errorf("color %q must be #rgb or #rrggbb", s)
	}
}

// withAlpha returns the color premultiplied to the given alpha
func withAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 {
		return uint8(uint16(v) * uint16(a) / 255)
	}
	return color.RGBA{scale(c.R), scale(c.G), scale(c.B), a}
}

// CreateErrorImage creates an error placeholder image with filename and error message
func CreateErrorImage(width, height int, filename, errorMsg string) *ebiten.Image {
	// Default size if not specified
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	// Ensure we have a font source
	if globalFontSource == nil {
		// Fallback: create a simple colored rectangle without text
		errorImg := ebiten.NewImage(width, height)
		errorImg.Fill(color.RGBA{120, 30, 30, 255}) // Dark red background

		// Draw white border
		DrawFilledRect(errorImg, 0, 0, float64(width), 3, color.RGBA{255, 255, 255, 255})
		DrawFilledRect(errorImg, 0, float64(height-3), float64(width), 3, color.RGBA{255, 255, 255, 255})
		DrawFilledRect(errorImg, 0, 0, 3, float64(height), color.RGBA{255, 255, 255, 255})
		DrawFilledRect(errorImg, float64(width-3), 0, 3, float64(height), color.RGBA{255, 255, 255, 255})

		return errorImg
	}

	errorImg := ebiten.NewImage(width, height)
	errorImg.Fill(color.RGBA{120, 30, 30, 255}) // Dark red background

	// Create font for error text
	errorFont := &text.GoTextFace{
		Source: globalFontSource,
		Size:   20.0,
	}

	// Draw white border
	DrawFilledRect(errorImg, 0, 0, float64(width), 3, color.RGBA{255, 255, 255, 255})
	DrawFilledRect(errorImg, 0, float64(height-3), float64(width), 3, color.RGBA{255, 255, 255, 255})
	DrawFilledRect(errorImg, 0, 0, 3, float64(height), color.RGBA{255, 255, 255, 255})
	DrawFilledRect(errorImg, float64(width-3), 0, 3, float64(height), color.RGBA{255, 255, 255, 255})

	// Prepare text content
	errorTitle := "ERROR"
	fileText := "File: " + filepath.Base(filename)
	reasonText := "Reason: " + errorMsg

	// Truncate long text to fit within image bounds
	maxChars := (width - 20) / 10 // Rough estimate: 10px per character
	if len(fileText) > maxChars {
		fileText = fileText[:maxChars-3] + "..."
	}
	if len(reasonText) > maxChars {
		reasonText = reasonText[:maxChars-3] + "..."
	}

	// Draw error text
	white := color.RGBA{255, 255, 255, 255}
	DrawText(errorImg, errorTitle, errorFont, 10, 30, white)
	DrawText(errorImg, fileText, errorFont, 10, 60, white)
	DrawText(errorImg, reasonText, errorFont, 10, 90, white)

	return errorImg
}
