package detection

import (
	"fmt"
	"image"
	"time"
)

type Label int

const (
	LabelWithHelmet Label = iota
	LabelWithoutHelmet
	LabelRider
	LabelNumberPlate
)

// Labels is the class order the detector was trained with; class ids index into it.
var Labels = []string{"with helmet", "without helmet", "rider", "number plate"}

func LabelFromID(id int) (Label, error) {
	if id < 0 || id >= len(Labels) {
		return 0, fmt.Errorf("unknown class id %d", id)
	}
	return Label(id), nil
}

func (l Label) String() string {
	if l < 0 || int(l) >= len(Labels) {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return Labels[l]
}

type Box struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

func (b Box) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	Class      Label   `json:"class_id"`
}

type Config struct {
	URL           string
	ModelPath     string
	Timeout       time.Duration
	MinConfidence float64
	JPEGQuality   int
}
