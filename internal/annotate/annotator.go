// Package annotate draws detection boxes and labels onto frames.
package annotate

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/eleven-am/helmet-detector/internal/detection"
)

var labelFont *truetype.Font

func init() {
	var err error
	labelFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
}

var (
	WarningColor = color.RGBA{R: 255, A: 255}
	SafeColor    = color.RGBA{G: 255, A: 255}
	NeutralColor = color.RGBA{B: 255, A: 255}
)

// ColorFor picks the box colour for a class. Plates are drawn in the warning
// colour because they are only of interest next to a violation.
func ColorFor(l detection.Label) color.Color {
	switch l {
	case detection.LabelWithoutHelmet, detection.LabelNumberPlate:
		return WarningColor
	case detection.LabelWithHelmet:
		return SafeColor
	default:
		return NeutralColor
	}
}

type Options struct {
	LineWidth float64
	FontSize  float64
	BoxesOnly bool
}

func DefaultOptions() Options {
	return Options{LineWidth: 2, FontSize: 14}
}

type Annotator struct {
	opts Options
	face *truetype.Options
}

func New(opts Options) *Annotator {
	if opts.LineWidth <= 0 {
		opts.LineWidth = 2
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 14
	}
	return &Annotator{opts: opts, face: &truetype.Options{Size: opts.FontSize}}
}

// Annotate draws onto frame in place. The frame must have its origin at (0,0),
// which is what media.DecodeImage and the video reader produce.
func (a *Annotator) Annotate(frame *image.RGBA, dets []detection.Detection) {
	if frame == nil || len(dets) == 0 {
		return
	}

	dc := gg.NewContextForRGBA(frame)
	if !a.opts.BoxesOnly {
		dc.SetFontFace(truetype.NewFace(labelFont, a.face))
	}

	for _, d := range dets {
		c := ColorFor(d.Class)
		drawRectangle(dc, d.Box.Rect(), c, a.opts.LineWidth)
		if a.opts.BoxesOnly {
			continue
		}
		drawLabel(dc, d.Class.String(), d.Box, c)
	}
}

func drawRectangle(dc *gg.Context, r image.Rectangle, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	dc.Stroke()
}

// Labels sit just above the box, or just inside it when the box touches the
// top edge of the frame.
func drawLabel(dc *gg.Context, text string, box detection.Box, c color.Color) {
	_, h := dc.MeasureString(text)
	x := float64(box.X1)
	y := float64(box.Y1) - 4
	if y-h < 0 {
		y = float64(box.Y1) + h + 2
	}
	dc.SetColor(c)
	dc.DrawString(text, x, y)
}
