package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"navaid/internal/dto"
	"navaid/internal/logger"
	"navaid/internal/metrics"
	"navaid/internal/middleware"
	"navaid/internal/service/history"
	"navaid/internal/vision"
)

// LivenessMessage is the plain-text body of GET /.
const LivenessMessage = "Intelligent Navigation Aid API is running"

const noImageMessage = "No image received"

// Processor runs one detect request end to end and shapes the reply. It is
// shared by the HTTP and WebSocket handlers.
type Processor struct {
	pipeline *vision.Pipeline
	recorder *history.Recorder
	logger   *logger.Logger
}

// NewProcessor builds a Processor. recorder may be nil.
func NewProcessor(pipeline *vision.Pipeline, recorder *history.Recorder, logger *logger.Logger) *Processor {
	return &Processor{pipeline: pipeline, recorder: recorder, logger: logger}
}

// Process returns the HTTP status and the body to encode for req.
func (p *Processor) Process(requestID string, req dto.DetectRequest) (int, interface{}) {
	if req.Image == nil {
		return http.StatusBadRequest, dto.ErrorResponse{Error: noImageMessage}
	}

	start := time.Now()
	result, err := p.pipeline.Detect(*req.Image)
	if err != nil {
		return p.failure(requestID, err)
	}

	metrics.RecordFrame(len(result.Detections), time.Since(start))
	p.recorder.Record(requestID, result)

	p.logger.Debug("Request %s: %d detections on %dx%d frame", requestID, len(result.Detections), result.Width, result.Height)
	return http.StatusOK, dto.NewDetectResponse(result.Detections)
}

func (p *Processor) failure(requestID string, err error) (int, interface{}) {
	var verr *vision.Error
	if !errors.As(err, &verr) {
		verr = vision.InferenceFailure("unexpected pipeline error", err)
	}

	status := StatusForKind(verr.Kind)
	metrics.RecordFailure(string(verr.Kind))

	if status >= http.StatusInternalServerError {
		p.logger.Error("Request %s failed: %v", requestID, err)
	} else {
		p.logger.Warning("Request %s rejected: %v", requestID, err)
	}

	return status, dto.ErrorResponse{Error: describe(verr), Kind: string(verr.Kind)}
}

// StatusForKind maps a pipeline error kind to its HTTP status.
func StatusForKind(kind vision.Kind) int {
	switch kind {
	case vision.KindMalformedPayload, vision.KindDecodeFailure:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func describe(verr *vision.Error) string {
	if verr.Err != nil {
		return fmt.Sprintf("%s: %v", verr.Message, verr.Err)
	}
	return verr.Message
}

// HomeHandler answers the liveness probe.
func HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(LivenessMessage))
	}
}

// DetectHandler handles POST /detect.
func DetectHandler(processor *Processor, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetRequestID(r.Context())

		var req dto.DetectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, dto.ErrorResponse{
					Error: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit),
				}, logger)
				return
			}
			logger.Warning("Request %s: unreadable body: %v", requestID, err)
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: noImageMessage}, logger)
			return
		}

		status, body := processor.Process(requestID, req)
		writeJSON(w, status, body, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
