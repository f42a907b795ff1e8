package vision

import (
	"errors"
	"fmt"
)

// Model is the detection capability. Implementations must be safe to call
// from concurrent requests.
type Model interface {
	Infer(grid *PixelGrid) ([]RawDetection, error)
	Labels() LabelTable
}

// Result is the outcome of one pipeline run.
type Result struct {
	Detections []DetectionRecord
	Width      int
	Height     int
}

// Pipeline drives decode, inference and assembly for one payload at a time.
// It holds no per-request state.
type Pipeline struct {
	model  Model
	labels LabelTable
}

func NewPipeline(model Model) *Pipeline {
	return &Pipeline{model: model, labels: model.Labels()}
}

// Labels returns the table used to resolve class indices.
func (p *Pipeline) Labels() LabelTable {
	return p.labels
}

// Detect runs the full pipeline over an encoded payload. Either every
// detection is returned or an *Error is.
func (p *Pipeline) Detect(payload string) (*Result, error) {
	grid, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	defer grid.Close()

	return p.DetectGrid(grid)
}

// DetectGrid runs inference and assembly over an already decoded grid.
func (p *Pipeline) DetectGrid(grid *PixelGrid) (*Result, error) {
	if grid.Width() <= 0 || grid.Height() <= 0 {
		return nil, DecodeFailure("decoded image has zero dimensions", nil)
	}

	raws, err := p.infer(grid)
	if err != nil {
		return nil, err
	}

	records, err := AssembleAll(raws, grid.Width(), p.labels)
	if err != nil {
		return nil, err
	}

	return &Result{Detections: records, Width: grid.Width(), Height: grid.Height()}, nil
}

func (p *Pipeline) infer(grid *PixelGrid) (raws []RawDetection, err error) {
	defer func() {
		if r := recover(); r != nil {
			raws = nil
			err = InferenceFailure("model runtime panicked", fmt.Errorf("%v", r))
		}
	}()

	raws, err = p.model.Infer(grid)
	if err != nil {
		var verr *Error
		if errors.As(err, &verr) && verr.Kind == KindInferenceFailure {
			return nil, err
		}
		return nil, InferenceFailure("model inference failed", err)
	}
	return raws, nil
}
