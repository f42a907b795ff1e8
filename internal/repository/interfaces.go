package repository

import (
	"time"

	"navaid/internal/model"
)

// HistoryRepository defines the interface for detection history operations.
type HistoryRepository interface {
	// Create operations
	Insert(req *model.Request) (int64, error)

	// Read operations
	GetByID(id int64) (*model.Request, error)
	GetRecent(limit int) ([]model.Request, error)
	GetTotalCount() (int, error)
	GetLabelCounts() (map[string]int, error)

	// Delete operations
	DeleteOlderThan(cutoff time.Time) (int64, error)
}
