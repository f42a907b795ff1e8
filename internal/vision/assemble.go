package vision

import "fmt"

// PlaceholderDistance is reported for every record. No depth is estimated.
const PlaceholderDistance = "approx 2 meters"

// Box is an axis-aligned box in pixel coordinates with X1<=X2 and Y1<=Y2.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// RawDetection is one object as emitted by a Model.
type RawDetection struct {
	Box        Box
	Confidence float32
	ClassID    int
	// Tag is an opaque identity used by synthetic models; never serialized.
	Tag string
}

// DetectionRecord is the client-facing form of one detection.
type DetectionRecord struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	BBox       [4]int  `json:"bbox"`
	Direction  Zone    `json:"direction"`
	Distance   string  `json:"distance"`
}

// LabelTable maps class indices to names.
type LabelTable []string

// Lookup resolves a class index, failing on anything outside the table.
func (t LabelTable) Lookup(classID int) (string, error) {
	if classID < 0 || classID >= len(t) {
		return "", InferenceFailure(fmt.Sprintf("class index %d outside label table of %d entries", classID, len(t)), nil)
	}
	return t[classID], nil
}

// Assemble turns a raw detection into a record. The zone is computed from the
// float box; the reported bbox is truncated toward zero.
func Assemble(raw RawDetection, frameWidth int, labels LabelTable) (DetectionRecord, error) {
	if frameWidth <= 0 {
		return DetectionRecord{}, DecodeFailure(fmt.Sprintf("frame width %d is not positive", frameWidth), nil)
	}

	label, err := labels.Lookup(raw.ClassID)
	if err != nil {
		return DetectionRecord{}, err
	}

	xCenter := (raw.Box.X1 + raw.Box.X2) / 2

	return DetectionRecord{
		Label:      label,
		Confidence: float64(raw.Confidence),
		BBox:       [4]int{int(raw.Box.X1), int(raw.Box.Y1), int(raw.Box.X2), int(raw.Box.Y2)},
		Direction:  Classify(xCenter, float64(frameWidth)),
		Distance:   PlaceholderDistance,
	}, nil
}

// AssembleAll assembles every raw detection in order. The first failure
// aborts the whole list.
func AssembleAll(raws []RawDetection, frameWidth int, labels LabelTable) ([]DetectionRecord, error) {
	records := make([]DetectionRecord, 0, len(raws))
	for i, raw := range raws {
		record, err := Assemble(raw, frameWidth, labels)
		if err != nil {
			return nil, fmt.Errorf("detection %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}
