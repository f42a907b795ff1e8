package ai

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"navaid/internal/config"
	"navaid/internal/logger"
	"navaid/internal/vision"

	"github.com/sirupsen/logrus"
)

// headBuilder lays out a synthetic YOLOv8 output of shape [channels, anchors].
type headBuilder struct {
	channels int
	anchors  int
	data     []float32
}

func newHead(classes, anchors int) *headBuilder {
	channels := boxChannels + classes
	return &headBuilder{channels: channels, anchors: anchors, data: make([]float32, channels*anchors)}
}

func (h *headBuilder) set(anchor int, cx, cy, w, hgt float32, class int, score float32) {
	h.data[0*h.anchors+anchor] = cx
	h.data[1*h.anchors+anchor] = cy
	h.data[2*h.anchors+anchor] = w
	h.data[3*h.anchors+anchor] = hgt
	h.data[(boxChannels+class)*h.anchors+anchor] = score
}

func TestParseOutput_ThresholdAndScale(t *testing.T) {
	head := newHead(3, 4)
	head.set(0, 100, 100, 40, 20, 1, 0.9)
	head.set(1, 300, 300, 10, 10, 2, 0.1)
	head.set(2, 600, 320, 100, 100, 0, 0.5)

	candidates := parseOutput(head.data, head.channels, head.anchors, 2.0, 0.25, 1000, 1000)

	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates above threshold, got %d", len(candidates))
	}

	first := candidates[0]
	if first.classID != 1 || first.score != 0.9 {
		t.Errorf("Expected class 1 score 0.9, got class %d score %v", first.classID, first.score)
	}
	if first.box.X1 != 160 || first.box.Y1 != 180 || first.box.X2 != 240 || first.box.Y2 != 220 {
		t.Errorf("Unexpected scaled box %+v", first.box)
	}

	// cx=1200 after scaling, so the right edge is clipped to the frame.
	second := candidates[1]
	if second.box.X2 != 1000 {
		t.Errorf("Expected box clipped to frame width, got %+v", second.box)
	}
}

func TestSuppress_ClassAware(t *testing.T) {
	candidates := []candidate{
		{classID: 0, score: 0.6, box: boxOf(0, 0, 100, 100)},
		{classID: 0, score: 0.9, box: boxOf(2, 2, 102, 102)},
		{classID: 1, score: 0.8, box: boxOf(1, 1, 101, 101)},
		{classID: 0, score: 0.7, box: boxOf(400, 400, 450, 450)},
	}

	detections := suppress(candidates, 0.25, 0.7)

	if len(detections) != 3 {
		t.Fatalf("Expected 3 detections after NMS, got %d", len(detections))
	}

	wantScores := []float32{0.9, 0.8, 0.7}
	wantClasses := []int{0, 1, 0}
	for i, det := range detections {
		if det.Confidence != wantScores[i] || det.ClassID != wantClasses[i] {
			t.Errorf("Detection %d: expected class %d score %v, got class %d score %v",
				i, wantClasses[i], wantScores[i], det.ClassID, det.Confidence)
		}
	}
	if detections[0].Box.X1 != 2 {
		t.Errorf("Kept box should keep float coordinates, got %+v", detections[0].Box)
	}
}

func TestSuppress_Empty(t *testing.T) {
	detections := suppress(nil, 0.25, 0.7)
	if detections == nil || len(detections) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", detections)
	}
}

func TestDefaultLabels(t *testing.T) {
	labels := DefaultLabels()
	if len(labels) != 80 {
		t.Fatalf("Expected 80 COCO labels, got %d", len(labels))
	}
	if labels[0] != "person" || labels[79] != "toothbrush" {
		t.Errorf("Unexpected label order: %s .. %s", labels[0], labels[79])
	}

	labels[0] = "changed"
	if DefaultLabels()[0] != "person" {
		t.Error("DefaultLabels should return a copy")
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("curb\n  stairs \n\ndoor\n"), 0644); err != nil {
		t.Fatalf("Failed to write labels: %v", err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	if strings.Join(labels, ",") != "curb,stairs,door" {
		t.Errorf("Unexpected labels %v", labels)
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	os.WriteFile(empty, []byte("\n\n"), 0644)
	if _, err := LoadLabels(empty); err == nil {
		t.Error("Expected error for empty labels file")
	}
}

func TestNewDetector_Errors(t *testing.T) {
	log := logger.New(&bytes.Buffer{}, logrus.ErrorLevel)

	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"missing model", &config.Config{ModelPath: filepath.Join(t.TempDir(), "none.onnx"), ModelInputSize: 640}},
		{"bad input size", &config.Config{ModelPath: "x.onnx", ModelInputSize: 100}},
		{"missing labels", &config.Config{ModelPath: "x.onnx", ModelInputSize: 640, LabelsPath: filepath.Join(t.TempDir(), "none.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDetector(tt.cfg, log)
			if err == nil {
				d.Close()
				t.Fatal("Expected error")
			}
		})
	}
}

func boxOf(x1, y1, x2, y2 float64) vision.Box {
	return vision.Box{X1: x1, Y1: y1, X2: x2, Y2: y2}
}
