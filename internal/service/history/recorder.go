package history

import (
	"time"

	"navaid/internal/logger"
	"navaid/internal/model"
	"navaid/internal/repository"
	"navaid/internal/vision"
)

// Recorder stores successful detect results. A nil *Recorder is valid and
// records nothing, which is how history is switched off.
type Recorder struct {
	repo   repository.HistoryRepository
	logger *logger.Logger
	now    func() time.Time
}

func NewRecorder(repo repository.HistoryRepository, logger *logger.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger, now: time.Now}
}

// Record writes the result. Storage errors are logged and swallowed so the
// caller's response is never affected.
func (r *Recorder) Record(requestID string, result *vision.Result) {
	if r == nil || result == nil {
		return
	}

	if _, err := r.repo.Insert(ToRequest(requestID, r.now(), result)); err != nil {
		r.logger.Warning("Failed to record detection history for %s: %v", requestID, err)
	}
}

// ToRequest converts a pipeline result into its stored form.
func ToRequest(requestID string, ts time.Time, result *vision.Result) *model.Request {
	req := &model.Request{
		RequestID:  requestID,
		Timestamp:  ts,
		Width:      result.Width,
		Height:     result.Height,
		Detections: make([]model.Detection, 0, len(result.Detections)),
	}

	for i, rec := range result.Detections {
		req.Detections = append(req.Detections, model.Detection{
			Seq:        i,
			Label:      rec.Label,
			Confidence: rec.Confidence,
			X1:         rec.BBox[0],
			Y1:         rec.BBox[1],
			X2:         rec.BBox[2],
			Y2:         rec.BBox[3],
			Direction:  string(rec.Direction),
		})
	}
	return req
}
