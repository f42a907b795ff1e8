package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"navaid/internal/model"
)

// HistoryRepository implements repository.HistoryRepository for SQLite.
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new SQLite history repository.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Insert stores a request and all of its detections in a single transaction.
func (r *HistoryRepository) Insert(req *model.Request) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO requests (request_id, timestamp, width, height)
		VALUES (?, ?, ?, ?)
	`, req.RequestID, req.Timestamp.UTC(), req.Width, req.Height)
	if err != nil {
		return 0, fmt.Errorf("failed to insert request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read request id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO detections (request_id, seq, label, confidence, x1, y1, x2, y2, direction)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, det := range req.Detections {
		if _, err := stmt.Exec(id, i, det.Label, det.Confidence, det.X1, det.Y1, det.X2, det.Y2, det.Direction); err != nil {
			return 0, fmt.Errorf("failed to insert detection: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit request: %w", err)
	}
	return id, nil
}

// GetByID retrieves a request with its detections, or nil when absent.
func (r *HistoryRepository) GetByID(id int64) (*model.Request, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var req model.Request
	err := r.db.Conn().QueryRow(`
		SELECT id, request_id, timestamp, width, height
		FROM requests WHERE id = ?
	`, id).Scan(&req.ID, &req.RequestID, &req.Timestamp, &req.Width, &req.Height)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	req.Detections, err = r.detectionsFor(req.ID)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetRecent returns the newest requests first, each with its detections.
func (r *HistoryRepository) GetRecent(limit int) ([]model.Request, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Conn().Query(`
		SELECT id, request_id, timestamp, width, height
		FROM requests ORDER BY timestamp DESC, id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}

	var requests []model.Request
	for rows.Next() {
		var req model.Request
		if err := rows.Scan(&req.ID, &req.RequestID, &req.Timestamp, &req.Width, &req.Height); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	rows.Close()

	// Single connection: detections are loaded once the request cursor is closed.
	for i := range requests {
		requests[i].Detections, err = r.detectionsFor(requests[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return requests, nil
}

// GetTotalCount returns the number of stored requests.
func (r *HistoryRepository) GetTotalCount() (int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	var count int
	if err := r.db.Conn().QueryRow(`SELECT COUNT(*) FROM requests`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count requests: %w", err)
	}
	return count, nil
}

// GetLabelCounts returns how many times each label has been detected.
func (r *HistoryRepository) GetLabelCounts() (map[string]int, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	rows, err := r.db.Conn().Query(`SELECT label, COUNT(*) FROM detections GROUP BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to query label counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("failed to scan label count: %w", err)
		}
		counts[label] = count
	}
	return counts, nil
}

// DeleteOlderThan removes requests recorded before cutoff together with
// their detections.
func (r *HistoryRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	r.db.Lock()
	defer r.db.Unlock()

	result, err := r.db.Conn().Exec(`DELETE FROM requests WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete requests: %w", err)
	}
	return result.RowsAffected()
}

func (r *HistoryRepository) detectionsFor(requestID int64) ([]model.Detection, error) {
	rows, err := r.db.Conn().Query(`
		SELECT id, request_id, seq, label, confidence, x1, y1, x2, y2, direction
		FROM detections WHERE request_id = ? ORDER BY seq
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query detections: %w", err)
	}
	defer rows.Close()

	detections := make([]model.Detection, 0)
	for rows.Next() {
		var det model.Detection
		if err := rows.Scan(&det.ID, &det.RequestID, &det.Seq, &det.Label, &det.Confidence, &det.X1, &det.Y1, &det.X2, &det.Y2, &det.Direction); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, det)
	}
	return detections, nil
}
