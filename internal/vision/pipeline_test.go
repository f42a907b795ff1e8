package vision

import (
	"errors"
	"testing"
)

type fakeModel struct {
	raws   []RawDetection
	err    error
	panics bool
	width  int
}

func (m *fakeModel) Infer(grid *PixelGrid) ([]RawDetection, error) {
	m.width = grid.Width()
	if m.panics {
		panic("runtime exploded")
	}
	return m.raws, m.err
}

func (m *fakeModel) Labels() LabelTable {
	return testLabels
}

func TestPipeline_Detect(t *testing.T) {
	model := &fakeModel{raws: []RawDetection{
		{Box: Box{10.4, 20.9, 50.1, 60.6}, Confidence: 0.9, ClassID: 0, Tag: "a"},
		{Box: Box{40, 10, 60, 20}, Confidence: 0.8, ClassID: 1, Tag: "b"},
		{Box: Box{80, 10, 95, 20}, Confidence: 0.7, ClassID: 2, Tag: "c"},
	}}
	pipeline := NewPipeline(model)

	result, err := pipeline.Detect(dataURI("image/png", encodePNG(t, 100, 50)))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if model.width != 100 {
		t.Errorf("Model should see the native width 100, got %d", model.width)
	}
	if result.Width != 100 || result.Height != 50 {
		t.Errorf("Expected 100x50 result, got %dx%d", result.Width, result.Height)
	}

	expected := []struct {
		label     string
		direction Zone
	}{
		{"person", ZoneLeft},
		{"bicycle", ZoneCenter},
		{"car", ZoneRight},
	}
	if len(result.Detections) != len(expected) {
		t.Fatalf("Expected %d detections, got %d", len(expected), len(result.Detections))
	}
	for i, want := range expected {
		got := result.Detections[i]
		if got.Label != want.label || got.Direction != want.direction {
			t.Errorf("Detection %d: expected %s/%s, got %s/%s", i, want.label, want.direction, got.Label, got.Direction)
		}
	}
}

func TestPipeline_NoDetections(t *testing.T) {
	pipeline := NewPipeline(&fakeModel{})

	result, err := pipeline.Detect(dataURI("image/png", encodePNG(t, 10, 10)))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if result.Detections == nil || len(result.Detections) != 0 {
		t.Errorf("Expected empty non-nil detections, got %#v", result.Detections)
	}
}

func TestPipeline_ErrorKinds(t *testing.T) {
	png := dataURI("image/png", encodePNG(t, 10, 10))

	tests := []struct {
		name    string
		payload string
		model   *fakeModel
		kind    Kind
	}{
		{"malformed", "abcdef", &fakeModel{}, KindMalformedPayload},
		{"not an image", dataURI("image/png", []byte("hello")), &fakeModel{}, KindDecodeFailure},
		{"model error", png, &fakeModel{err: errors.New("cuda out of memory")}, KindInferenceFailure},
		{"model panic", png, &fakeModel{panics: true}, KindInferenceFailure},
		{"bad class", png, &fakeModel{raws: []RawDetection{{ClassID: 42}}}, KindInferenceFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := NewPipeline(tt.model).Detect(tt.payload)
			if result != nil {
				t.Errorf("Expected no result, got %+v", result)
			}
			if KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestPipeline_KeepsModelErrorCause(t *testing.T) {
	cause := errors.New("forward failed")
	_, err := NewPipeline(&fakeModel{err: cause}).Detect(dataURI("image/png", encodePNG(t, 4, 4)))
	if !errors.Is(err, cause) {
		t.Errorf("Expected wrapped cause, got %v", err)
	}
}
