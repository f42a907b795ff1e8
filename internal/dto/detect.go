package dto

import "navaid/internal/vision"

// DetectRequest is the body of POST /detect and of every stream message.
type DetectRequest struct {
	Image *string `json:"image"`
}

// DetectResponse is the success body. Detections is never nil so it always
// encodes as an array.
type DetectResponse struct {
	Detections []vision.DetectionRecord `json:"detections"`
}

// ErrorResponse is the failure body. Kind is empty for transport-level
// errors such as a missing image field.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// NewDetectResponse wraps records, normalizing nil to an empty list.
func NewDetectResponse(records []vision.DetectionRecord) DetectResponse {
	if records == nil {
		records = []vision.DetectionRecord{}
	}
	return DetectResponse{Detections: records}
}
