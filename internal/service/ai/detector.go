package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"navaid/internal/config"
	"navaid/internal/logger"
	"navaid/internal/vision"

	"gocv.io/x/gocv"
)

var letterboxColor = color.RGBA{R: 114, G: 114, B: 114, A: 0}

// Detector runs a YOLOv8 ONNX network through the OpenCV DNN module. The
// network is loaded once; its SetInput/Forward pair is not re-entrant and is
// serialized, everything else runs concurrently.
type Detector struct {
	net       gocv.Net
	mu        sync.Mutex
	labels    vision.LabelTable
	inputSize int
	threshold float32
	iou       float32
	logger    *logger.Logger
}

// NewDetector loads the network and checks that its class head matches the
// label table.
func NewDetector(cfg *config.Config, logger *logger.Logger) (*Detector, error) {
	labels := DefaultLabels()
	if cfg.LabelsPath != "" {
		loaded, err := LoadLabels(cfg.LabelsPath)
		if err != nil {
			return nil, err
		}
		labels = loaded
	}

	if cfg.ModelInputSize <= 0 || cfg.ModelInputSize%32 != 0 {
		return nil, fmt.Errorf("model input size %d must be a positive multiple of 32", cfg.ModelInputSize)
	}

	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network from %s", cfg.ModelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	d := &Detector{
		net:       net,
		labels:    labels,
		inputSize: cfg.ModelInputSize,
		threshold: float32(cfg.ConfidenceThreshold),
		iou:       float32(cfg.IOUThreshold),
		logger:    logger,
	}

	if err := d.validateHead(); err != nil {
		net.Close()
		return nil, err
	}

	d.logger.Info("Detection network initialized: %s (%d classes, input %d)", cfg.ModelPath, len(labels), d.inputSize)
	return d, nil
}

// validateHead pushes a blank frame through the network and compares the
// number of class channels with the label table.
func (d *Detector) validateHead() error {
	blank := gocv.NewMatWithSize(d.inputSize, d.inputSize, gocv.MatTypeCV8UC3)
	defer blank.Close()

	blob := gocv.BlobFromImage(blank, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	_, channels, _, err := d.forward(blob)
	if err != nil {
		return fmt.Errorf("warm-up inference failed: %w", err)
	}

	if classes := channels - boxChannels; classes != len(d.labels) {
		return fmt.Errorf("model emits %d classes but label table has %d entries", classes, len(d.labels))
	}
	return nil
}

// Labels returns the table validated against the network at load time.
func (d *Detector) Labels() vision.LabelTable {
	return d.labels
}

// Infer letterboxes the grid into the square network input, runs the network
// and returns the boxes that survive the score threshold and NMS, in
// descending confidence order and in source-frame pixel coordinates.
func (d *Detector) Infer(grid *vision.PixelGrid) ([]vision.RawDetection, error) {
	src := grid.Mat()
	if src.Empty() {
		return nil, vision.InferenceFailure("grid is empty", nil)
	}

	side := max(src.Cols(), src.Rows())
	padded := gocv.NewMat()
	defer padded.Close()

	gocv.CopyMakeBorder(src, &padded, 0, side-src.Rows(), 0, side-src.Cols(), gocv.BorderConstant, letterboxColor)
	if padded.Empty() {
		return nil, vision.InferenceFailure("failed to letterbox frame", nil)
	}

	blob := gocv.BlobFromImage(padded, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	data, channels, anchors, err := d.forward(blob)
	if err != nil {
		return nil, vision.InferenceFailure("forward pass failed", err)
	}
	if channels-boxChannels != len(d.labels) {
		return nil, vision.InferenceFailure(fmt.Sprintf("unexpected output with %d channels", channels), nil)
	}

	scale := float64(side) / float64(d.inputSize)
	candidates := parseOutput(data, channels, anchors, scale, d.threshold, src.Cols(), src.Rows())
	detections := suppress(candidates, d.threshold, d.iou)

	d.logger.Debug("Inference kept %d of %d candidates", len(detections), len(candidates))
	return detections, nil
}

// forward runs the network and copies its [1, channels, anchors] output out
// before releasing the lock.
func (d *Detector) forward(blob gocv.Mat) ([]float32, int, int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	if output.Empty() {
		return nil, 0, 0, fmt.Errorf("network returned an empty output")
	}

	sizes := output.Size()
	if len(sizes) != 3 || sizes[0] != 1 || sizes[1] <= boxChannels {
		return nil, 0, 0, fmt.Errorf("unexpected output shape %v", sizes)
	}

	ptr, err := output.DataPtrFloat32()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read output: %w", err)
	}

	channels, anchors := sizes[1], sizes[2]
	if len(ptr) < channels*anchors {
		return nil, 0, 0, fmt.Errorf("output holds %d values, expected %d", len(ptr), channels*anchors)
	}

	data := make([]float32, channels*anchors)
	copy(data, ptr)
	return data, channels, anchors, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
