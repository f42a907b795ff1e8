package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"navaid/internal/vision"

	"github.com/gorilla/websocket"
)

func TestStreamHandler_RepliesInOrder(t *testing.T) {
	model := &fakeModel{raws: []vision.RawDetection{
		{Box: vision.Box{X1: 40, Y1: 0, X2: 60, Y2: 10}, Confidence: 0.8, ClassID: 1},
	}}
	processor := NewProcessor(vision.NewPipeline(model), nil, testLogger())

	server := httptest.NewServer(StreamHandler(processor, 1<<20, testLogger()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial stream: %v", err)
	}
	defer conn.Close()

	frames := []string{
		detectBody(pngPayload(t, 100, 40)),
		detectBody("abcdef"),
		"not json",
	}
	for _, frame := range frames {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			t.Fatalf("Failed to send frame: %v", err)
		}
	}

	var ok struct {
		Status     int                      `json:"status"`
		Detections []vision.DetectionRecord `json:"detections"`
	}
	if err := conn.ReadJSON(&ok); err != nil {
		t.Fatalf("Failed to read first reply: %v", err)
	}
	if ok.Status != 200 || len(ok.Detections) != 1 {
		t.Fatalf("Unexpected first reply %+v", ok)
	}
	if ok.Detections[0].Label != "bicycle" || ok.Detections[0].Direction != vision.ZoneCenter {
		t.Errorf("Unexpected detection %+v", ok.Detections[0])
	}

	var malformed streamReply
	if err := conn.ReadJSON(&malformed); err != nil {
		t.Fatalf("Failed to read second reply: %v", err)
	}
	if malformed.Status != 400 || malformed.Kind != "malformed_payload" {
		t.Errorf("Unexpected second reply %+v", malformed)
	}

	var unreadable streamReply
	if err := conn.ReadJSON(&unreadable); err != nil {
		t.Fatalf("Failed to read third reply: %v", err)
	}
	if unreadable.Status != 400 || unreadable.Error != noImageMessage {
		t.Errorf("Unexpected third reply %+v", unreadable)
	}
}
