package ai

import (
	"image"
	"math"

	"navaid/internal/vision"

	"gocv.io/x/gocv"
)

const (
	// boxChannels precede the class scores in every anchor column.
	boxChannels = 4
	// maxDetections caps the number of boxes kept after NMS.
	maxDetections = 300
	// classOffset separates classes so one NMS pass never merges boxes of
	// different classes.
	classOffset = 7680
)

type candidate struct {
	box     vision.Box
	score   float32
	classID int
}

// parseOutput reads a YOLOv8 head laid out as channels x anchors
// ([cx, cy, w, h, score_0 .. score_n-1] per anchor) and keeps the best class
// of every anchor whose score reaches threshold. Boxes are mapped back to the
// source frame by scale and clipped to it.
func parseOutput(data []float32, channels, anchors int, scale float64, threshold float32, frameWidth, frameHeight int) []candidate {
	var candidates []candidate

	for a := 0; a < anchors; a++ {
		bestScore := float32(-1)
		bestClass := 0
		for c := boxChannels; c < channels; c++ {
			if score := data[c*anchors+a]; score > bestScore {
				bestScore = score
				bestClass = c - boxChannels
			}
		}
		if bestScore < threshold {
			continue
		}

		cx := float64(data[0*anchors+a]) * scale
		cy := float64(data[1*anchors+a]) * scale
		w := float64(data[2*anchors+a]) * scale
		h := float64(data[3*anchors+a]) * scale

		candidates = append(candidates, candidate{
			box: vision.Box{
				X1: clip(cx-w/2, float64(frameWidth)),
				Y1: clip(cy-h/2, float64(frameHeight)),
				X2: clip(cx+w/2, float64(frameWidth)),
				Y2: clip(cy+h/2, float64(frameHeight)),
			},
			score:   bestScore,
			classID: bestClass,
		})
	}

	return candidates
}

// suppress runs class-aware non-maximum suppression and returns the kept
// candidates in descending score order.
func suppress(candidates []candidate, threshold, iou float32) []vision.RawDetection {
	detections := make([]vision.RawDetection, 0)
	if len(candidates) == 0 {
		return detections
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		off := c.classID * classOffset
		rects[i] = image.Rect(
			int(math.Round(c.box.X1))+off,
			int(math.Round(c.box.Y1))+off,
			int(math.Round(c.box.X2))+off,
			int(math.Round(c.box.Y2))+off,
		)
		scores[i] = c.score
	}

	for _, idx := range gocv.NMSBoxes(rects, scores, threshold, iou) {
		if len(detections) == maxDetections {
			break
		}
		c := candidates[idx]
		detections = append(detections, vision.RawDetection{
			Box:        c.box,
			Confidence: c.score,
			ClassID:    c.classID,
		})
	}

	return detections
}

func clip(v, upper float64) float64 {
	return math.Max(0, math.Min(v, upper))
}
