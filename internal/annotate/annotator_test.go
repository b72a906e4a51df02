package annotate

import (
	"image"
	"image/color"
	"testing"

	"github.com/eleven-am/helmet-detector/internal/detection"
)

func blankFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		label    detection.Label
		expected color.Color
	}{
		{detection.LabelWithoutHelmet, WarningColor},
		{detection.LabelNumberPlate, WarningColor},
		{detection.LabelWithHelmet, SafeColor},
		{detection.LabelRider, NeutralColor},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.label); got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.label, tt.expected, got)
		}
	}
}

func TestAnnotate_DrawsBoxEdges(t *testing.T) {
	frame := blankFrame()
	dets := []detection.Detection{
		{Box: detection.Box{X1: 20, Y1: 40, X2: 80, Y2: 100}, Confidence: 0.9, Class: detection.LabelWithoutHelmet},
	}

	New(Options{BoxesOnly: true}).Annotate(frame, dets)

	edge := frame.RGBAAt(50, 40)
	if edge.R < 128 || edge.G > 64 {
		t.Errorf("expected red top edge, got %v", edge)
	}
	inside := frame.RGBAAt(50, 70)
	if inside.R != 0 || inside.G != 0 || inside.B != 0 {
		t.Errorf("box interior should be untouched, got %v", inside)
	}
}

func TestAnnotate_DoesNotModifyDetections(t *testing.T) {
	dets := []detection.Detection{
		{Box: detection.Box{X1: 0, Y1: 0, X2: 30, Y2: 20}, Confidence: 0.5, Class: detection.LabelNumberPlate},
		{Box: detection.Box{X1: 10, Y1: 30, X2: 60, Y2: 90}, Confidence: 0.7, Class: detection.LabelWithHelmet},
	}
	before := append([]detection.Detection(nil), dets...)

	New(DefaultOptions()).Annotate(blankFrame(), dets)

	for i := range dets {
		if dets[i] != before[i] {
			t.Errorf("detection %d changed: %+v -> %+v", i, before[i], dets[i])
		}
	}
}

func TestAnnotate_LabelsAddInk(t *testing.T) {
	dets := []detection.Detection{
		{Box: detection.Box{X1: 10, Y1: 40, X2: 110, Y2: 110}, Class: detection.LabelWithHelmet},
	}

	boxes := blankFrame()
	New(Options{BoxesOnly: true}).Annotate(boxes, dets)
	labelled := blankFrame()
	New(DefaultOptions()).Annotate(labelled, dets)

	if countInk(labelled) <= countInk(boxes) {
		t.Error("expected label text to draw additional pixels")
	}
}

func TestAnnotate_NoDetectionsLeavesFrame(t *testing.T) {
	frame := blankFrame()
	New(DefaultOptions()).Annotate(frame, nil)
	if countInk(frame) != 0 {
		t.Error("frame should be unchanged")
	}
}

func countInk(img *image.RGBA) int {
	n := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 || img.Pix[i+1] != 0 || img.Pix[i+2] != 0 {
			n++
		}
	}
	return n
}
