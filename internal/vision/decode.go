package vision

import (
	"encoding/base64"
	"strings"

	"gocv.io/x/gocv"
)

// PixelGrid is a decoded raster at native resolution. Channels are always
// three, in BGR order. The grid belongs to a single request and must be
// closed once the response is built.
type PixelGrid struct {
	mat gocv.Mat
}

// NewPixelGrid takes ownership of mat.
func NewPixelGrid(mat gocv.Mat) *PixelGrid {
	return &PixelGrid{mat: mat}
}

func (g *PixelGrid) Width() int    { return g.mat.Cols() }
func (g *PixelGrid) Height() int   { return g.mat.Rows() }
func (g *PixelGrid) Channels() int { return g.mat.Channels() }

// Mat exposes the underlying matrix to the model. Callers must not close it.
func (g *PixelGrid) Mat() gocv.Mat {
	return g.mat
}

func (g *PixelGrid) Close() error {
	return g.mat.Close()
}

// DecodePayload turns "<prefix>,<base64>" into a PixelGrid. Everything up to
// the first comma is discarded; the rest must be standard padded base64 of a
// compressed image whose format is detected from its signature.
func DecodePayload(payload string) (*PixelGrid, error) {
	_, encoded, found := strings.Cut(payload, ",")
	if !found {
		return nil, MalformedPayload("payload has no comma separator", nil)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, MalformedPayload("payload is not valid base64", err)
	}

	return DecodeImage(raw)
}

// DecodeImage decodes compressed image bytes into a PixelGrid.
func DecodeImage(raw []byte) (*PixelGrid, error) {
	if len(raw) == 0 {
		return nil, DecodeFailure("image data is empty", nil)
	}

	mat, err := gocv.IMDecode(raw, gocv.IMReadColor)
	if err != nil {
		return nil, DecodeFailure("failed to decode image", err)
	}

	if mat.Empty() || mat.Cols() <= 0 || mat.Rows() <= 0 {
		mat.Close()
		return nil, DecodeFailure("decoded image is empty", nil)
	}

	return NewPixelGrid(mat), nil
}
