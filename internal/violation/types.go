package violation

// NoPlateDetected is reported when no plate text was read after a violation,
// and for every frame without one.
const NoPlateDetected = "No number plate detected"

// Record is the per-frame outcome. It is never carried across frames.
type Record struct {
	HelmetViolation bool   `json:"helmet_violation"`
	PlateText       string `json:"number_plate_text"`
}

// HasPlate reports whether a plate was actually read.
func (r Record) HasPlate() bool {
	return r.PlateText != "" && r.PlateText != NoPlateDetected
}
