package vision

import "testing"

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		xCenter  float64
		width    float64
		expected Zone
	}{
		{0, 100, ZoneLeft},
		{32.99, 100, ZoneLeft},
		{33, 100, ZoneCenter},
		{50, 100, ZoneCenter},
		{66, 100, ZoneCenter},
		{66.01, 100, ZoneRight},
		{99.9, 100, ZoneRight},
		{30.25, 100, ZoneLeft},
		{87.5, 100, ZoneRight},
	}

	for _, tt := range tests {
		result := Classify(tt.xCenter, tt.width)
		if result != tt.expected {
			t.Errorf("Classify(%v, %v) = %s, expected %s", tt.xCenter, tt.width, result, tt.expected)
		}
	}
}

func TestClassify_BoundaryTiesResolveToCenter(t *testing.T) {
	for _, width := range []float64{1, 7, 100, 480, 640, 1080, 1920} {
		for _, x := range []float64{width * leftBoundary, width * rightBoundary} {
			if zone := Classify(x, width); zone != ZoneCenter {
				t.Errorf("Classify(%v, %v) = %s, expected center on boundary", x, width, zone)
			}
		}
	}
}

func TestClassify_MonotonicPartition(t *testing.T) {
	rank := map[Zone]int{ZoneLeft: 0, ZoneCenter: 1, ZoneRight: 2}

	for _, width := range []float64{1, 3, 100, 333, 640, 1920} {
		prev := ZoneLeft
		steps := 2000
		for i := 0; i < steps; i++ {
			x := width * float64(i) / float64(steps)
			zone := Classify(x, width)

			r, ok := rank[zone]
			if !ok {
				t.Fatalf("Classify(%v, %v) returned unknown zone %q", x, width, zone)
			}
			if r < rank[prev] {
				t.Fatalf("Zone went backwards at x=%v width=%v: %s after %s", x, width, zone, prev)
			}
			prev = zone
		}
		if prev != ZoneRight {
			t.Errorf("Expected right zone near the frame edge for width %v, got %s", width, prev)
		}
	}
}
