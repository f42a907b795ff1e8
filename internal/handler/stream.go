package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"navaid/internal/dto"
	"navaid/internal/logger"
	"navaid/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamReply is what a stream client receives per frame: the same JSON as
// POST /detect plus the status that request would have had.
type streamReply struct {
	Status     int         `json:"status"`
	Detections interface{} `json:"detections,omitempty"`
	Error      string      `json:"error,omitempty"`
	Kind       string      `json:"kind,omitempty"`
}

// StreamHandler runs a detection session over WebSocket. Every text message
// is an independent detect request; replies are sent in message order.
func StreamHandler(processor *Processor, maxMessageBytes int64, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}
		defer connection.Close()

		// Server timeouts survive the hijack; a session lives until the client leaves.
		connection.SetReadDeadline(time.Time{})
		connection.SetWriteDeadline(time.Time{})
		connection.SetReadLimit(maxMessageBytes)
		metrics.StreamOpened()
		defer metrics.StreamClosed()

		logger.Info("Stream client connected from %s", r.RemoteAddr)

		for {
			messageType, message, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Info("Stream client disconnected normally")
				} else {
					logger.Error("Stream client disconnected with error: %v", err)
				}
				return
			}

			if messageType != websocket.TextMessage {
				continue
			}

			reply := handleFrame(processor, message)
			if err := connection.WriteJSON(reply); err != nil {
				logger.Error("Error sending stream reply: %v", err)
				return
			}
		}
	}
}

func handleFrame(processor *Processor, message []byte) streamReply {
	var req dto.DetectRequest
	if err := json.Unmarshal(message, &req); err != nil {
		return streamReply{Status: http.StatusBadRequest, Error: noImageMessage}
	}

	status, body := processor.Process(uuid.New().String(), req)
	switch b := body.(type) {
	case dto.DetectResponse:
		return streamReply{Status: status, Detections: b.Detections}
	case dto.ErrorResponse:
		return streamReply{Status: status, Error: b.Error, Kind: b.Kind}
	default:
		return streamReply{Status: http.StatusInternalServerError, Error: "Internal server error"}
	}
}
