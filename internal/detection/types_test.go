package detection

import (
	"image"
	"testing"
)

func TestLabelFromID(t *testing.T) {
	tests := []struct {
		id       int
		expected Label
		wantErr  bool
	}{
		{0, LabelWithHelmet, false},
		{1, LabelWithoutHelmet, false},
		{2, LabelRider, false},
		{3, LabelNumberPlate, false},
		{4, 0, true},
		{-1, 0, true},
	}

	for _, tt := range tests {
		label, err := LabelFromID(tt.id)
		if tt.wantErr {
			if err == nil {
				t.Errorf("id %d: expected error", tt.id)
			}
			continue
		}
		if err != nil {
			t.Errorf("id %d: unexpected error %v", tt.id, err)
		}
		if label != tt.expected {
			t.Errorf("id %d: expected %v, got %v", tt.id, tt.expected, label)
		}
	}
}

func TestLabel_String(t *testing.T) {
	if LabelWithoutHelmet.String() != "without helmet" {
		t.Errorf("unexpected name %q", LabelWithoutHelmet.String())
	}
	if LabelNumberPlate.String() != "number plate" {
		t.Errorf("unexpected name %q", LabelNumberPlate.String())
	}
	if Label(9).String() != "label(9)" {
		t.Errorf("unexpected name for unknown label %q", Label(9).String())
	}
}

func TestBox(t *testing.T) {
	b := Box{X1: 2, Y1: 3, X2: 10, Y2: 8}
	if !b.Valid() {
		t.Error("expected box to be valid")
	}
	if b.Rect() != image.Rect(2, 3, 10, 8) {
		t.Errorf("unexpected rect %v", b.Rect())
	}
	if (Box{X1: 5, Y1: 0, X2: 5, Y2: 4}).Valid() {
		t.Error("zero-width box should be invalid")
	}
}

func TestScoreFilter(t *testing.T) {
	in := []Detection{
		{Confidence: 0.2, Class: LabelRider},
		{Confidence: 0.5, Class: LabelWithoutHelmet},
		{Confidence: 0.9, Class: LabelNumberPlate},
	}
	out := NewScoreFilter(0.5)(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(out))
	}
	if out[0].Class != LabelWithoutHelmet || out[1].Class != LabelNumberPlate {
		t.Errorf("filter changed order: %+v", out)
	}
	if len(in) != 3 {
		t.Error("filter must not modify its input")
	}
}
