package vision

// Zone is the horizontal third of the frame an object's center falls into.
type Zone string

const (
	ZoneLeft   Zone = "left"
	ZoneCenter Zone = "center"
	ZoneRight  Zone = "right"
)

const (
	leftBoundary  = 0.33
	rightBoundary = 0.66
)

// Classify maps a box center to a zone. Both boundaries are strict, so a
// center sitting exactly on one of them is center. frameWidth must be > 0.
func Classify(xCenter, frameWidth float64) Zone {
	switch {
	case xCenter < frameWidth*leftBoundary:
		return ZoneLeft
	case xCenter > frameWidth*rightBoundary:
		return ZoneRight
	default:
		return ZoneCenter
	}
}
