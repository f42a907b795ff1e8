package vision

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func dataURI(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestDecodePayload_PNG(t *testing.T) {
	grid, err := DecodePayload(dataURI("image/png", encodePNG(t, 64, 48)))
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	defer grid.Close()

	if grid.Width() != 64 || grid.Height() != 48 {
		t.Errorf("Expected 64x48 grid, got %dx%d", grid.Width(), grid.Height())
	}
	if grid.Channels() != 3 {
		t.Errorf("Expected 3 channels, got %d", grid.Channels())
	}

	// BGR order: the red pixel lands in channel 2.
	mat := grid.Mat()
	if b, r := mat.GetVecbAt(0, 0)[0], mat.GetVecbAt(0, 0)[2]; b != 30 || r != 200 {
		t.Errorf("Expected BGR pixel (30,_,200), got b=%d r=%d", b, r)
	}
}

func TestDecodePayload_JPEGWithAnyPrefix(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 10))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode JPEG: %v", err)
	}

	// The prefix is ignored, so a wrong MIME type still decodes.
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	grid, err := DecodePayload(payload)
	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}
	defer grid.Close()

	if grid.Width() != 20 || grid.Height() != 10 || grid.Channels() != 3 {
		t.Errorf("Unexpected grid %dx%dx%d", grid.Width(), grid.Height(), grid.Channels())
	}
}

func TestDecodePayload_MalformedPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"no comma", "abcdef"},
		{"empty", ""},
		{"bad base64", "data:image/png;base64,***not base64***"},
		{"second comma kept in data", "data:a,b," + base64.StdEncoding.EncodeToString([]byte("xyz"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := DecodePayload(tt.payload)
			if grid != nil {
				grid.Close()
				t.Fatal("Expected no grid")
			}
			if KindOf(err) != KindMalformedPayload {
				t.Errorf("Expected malformed payload, got %v", err)
			}
		})
	}
}

func TestDecodePayload_DecodeFailure(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"text bytes", dataURI("image/png", []byte("this is not an image at all"))},
		{"empty data", "data:image/png;base64,"},
		{"truncated png", dataURI("image/png", encodePNG(t, 8, 8)[:16])},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grid, err := DecodePayload(tt.payload)
			if grid != nil {
				grid.Close()
				t.Fatal("Expected no grid")
			}
			if KindOf(err) != KindDecodeFailure {
				t.Errorf("Expected decode failure, got %v", err)
			}
		})
	}
}
