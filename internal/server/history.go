package server

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guiyumin/vthumb/internal/config"
	_ "modernc.org/sqlite"
)

const historyDBFile = "history.db"

// ErrRecordNotFound is returned when deleting an unknown record
var ErrRecordNotFound = errors.New("record not found")

// HistoryRecord is one extraction served by the API
type HistoryRecord struct {
	ID         string   `json:"id"`
	Input      string   `json:"input"`
	VideoID    string   `json:"video_id,omitempty"`
	Status     string   `json:"status"` // "found" or "not_found"
	ValidCount int      `json:"valid_count"`
	Invalid    []string `json:"invalid"`
	CreatedAt  int64    `json:"created_at"` // Unix timestamp
}

// HistoryDB manages the SQLite database of extractions
type HistoryDB struct {
	db *sql.DB
	mu sync.RWMutex
}

// DefaultHistoryPath returns ~/.config/vthumb/history.db
func DefaultHistoryPath() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config dir: %w", err)
	}
	return filepath.Join(configDir, historyDBFile), nil
}

// NewHistoryDB opens (creating if needed) the history database at dbPath
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS extraction_history (
			id TEXT PRIMARY KEY,
			input TEXT NOT NULL,
			video_id TEXT,
			status TEXT NOT NULL,
			valid_count INTEGER DEFAULT 0,
			invalid TEXT,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_created_at ON extraction_history(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_video_id ON extraction_history(video_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history table: %w", err)
	}

	return &HistoryDB{db: db}, nil
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Record saves one extraction and returns the stored record
func (h *HistoryDB) Record(input, videoID, status string, validCount int, invalid []string) (HistoryRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if invalid == nil {
		invalid = []string{}
	}
	r := HistoryRecord{
		ID:         uuid.New().String(),
		Input:      input,
		VideoID:    videoID,
		Status:     status,
		ValidCount: validCount,
		Invalid:    invalid,
		CreatedAt:  time.Now().Unix(),
	}

	_, err := h.db.Exec(`
		INSERT INTO extraction_history
		(id, input, video_id, status, valid_count, invalid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Input,
		r.VideoID,
		r.Status,
		r.ValidCount,
		strings.Join(r.Invalid, ","),
		r.CreatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to record history: %w", err)
	}
	return r, nil
}

// GetHistory returns history with pagination, newest first
func (h *HistoryDB) GetHistory(limit, offset int) ([]HistoryRecord, int, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var total int
	err := h.db.QueryRow("SELECT COUNT(*) FROM extraction_history").Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count history: %w", err)
	}

	rows, err := h.db.Query(`
		SELECT id, input, video_id, status, valid_count, invalid, created_at
		FROM extraction_history
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]HistoryRecord, 0)
	for rows.Next() {
		var r HistoryRecord
		var videoID, invalid sql.NullString

		err := rows.Scan(
			&r.ID,
			&r.Input,
			&videoID,
			&r.Status,
			&r.ValidCount,
			&invalid,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan history row: %w", err)
		}

		r.VideoID = videoID.String
		r.Invalid = []string{}
		if invalid.Valid && invalid.String != "" {
			r.Invalid = strings.Split(invalid.String, ",")
		}
		records = append(records, r)
	}

	return records, total, rows.Err()
}

// GetStats returns extraction statistics
func (h *HistoryDB) GetStats() (found int, notFound int, err error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	err = h.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN status = 'found' THEN 1 END),
			COUNT(CASE WHEN status = 'not_found' THEN 1 END)
		FROM extraction_history
	`).Scan(&found, &notFound)

	return
}

// DeleteRecord deletes a single history record
func (h *HistoryDB) DeleteRecord(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.db.Exec("DELETE FROM extraction_history WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// ClearHistory deletes all history records
func (h *HistoryDB) ClearHistory() (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.db.Exec("DELETE FROM extraction_history")
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
