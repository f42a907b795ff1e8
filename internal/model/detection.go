package model

import "time"

// Request is one successful detect call kept in the history store.
type Request struct {
	ID         int64       `json:"id"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Detections []Detection `json:"detections"`
}

// Detection is one stored record of a Request, in emission order.
type Detection struct {
	ID         int64   `json:"id"`
	RequestID  int64   `json:"-"`
	Seq        int     `json:"seq"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
	Direction  string  `json:"direction"`
}
