package sauna

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-nevoton/internal/infrastructure/database"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Snapshot is the flat point-name to value mapping returned by one
// successful state read. Values are raw JSON numbers (float64) as
// decoded from the device.
type Snapshot map[string]any

// SnapshotEntry is one persisted snapshot with its change set.
type SnapshotEntry struct {
	ID            int64     `json:"id"`
	DeviceID      string    `json:"device_id"`
	CapturedAt    time.Time `json:"captured_at"`
	Snapshot      Snapshot  `json:"snapshot"`
	ChangedPoints []string  `json:"changed_points"`
}

// CommandRecord is one persisted parameter write attempt.
type CommandRecord struct {
	ID        int64     `json:"id"`
	CommandID string    `json:"command_id"`
	DeviceID  string    `json:"device_id"`
	Point     string    `json:"point"`
	Value     int       `json:"value"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Command log status values.
const (
	CommandStatusApplied  = "applied"
	CommandStatusRejected = "rejected"
	CommandStatusFailed   = "failed"
)

// HistoryRepository persists snapshots and command attempts in SQLite.
//
// Snapshots are stored whole as JSON so that new firmware points appear
// in history without schema changes.
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a repository over an open database.
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordSnapshot inserts a snapshot row for a device.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Bridge-assigned device identifier
//   - snapshot: Full point mapping from the poll
//   - changed: Names of points that differ from the previous snapshot
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *HistoryRepository) RecordSnapshot(ctx context.Context, deviceID string, snapshot Snapshot, changed []string) error {
	if deviceID == "" {
		return fmt.Errorf("device id is required")
	}
	if snapshot == nil {
		snapshot = Snapshot{}
	}
	if changed == nil {
		changed = []string{}
	}

	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshalling snapshot: %w", err)
	}
	changedJSON, err := json.Marshal(changed)
	if err != nil {
		return fmt.Errorf("marshalling changed points: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO snapshot_history (device_id, captured_at, snapshot, changed_points) VALUES (?, ?, ?, ?)",
		deviceID,
		time.Now().UTC().Format(time.RFC3339),
		string(snapshotJSON),
		string(changedJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot history: %w", err)
	}

	return nil
}

// GetHistory returns recent snapshots for a device, newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - deviceID: Bridge-assigned device identifier
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []SnapshotEntry: Entries ordered by captured_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *HistoryRepository) GetHistory(ctx context.Context, deviceID string, limit int) ([]SnapshotEntry, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT id, device_id, captured_at, snapshot, changed_points
		 FROM snapshot_history
		 WHERE device_id = ?
		 ORDER BY captured_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot history: %w", err)
	}
	defer rows.Close()

	entries := make([]SnapshotEntry, 0, limit)
	for rows.Next() {
		var entry SnapshotEntry
		var capturedAt, snapshotJSON, changedJSON string

		if err := rows.Scan(&entry.ID, &entry.DeviceID, &capturedAt, &snapshotJSON, &changedJSON); err != nil {
			return nil, fmt.Errorf("scanning snapshot history: %w", err)
		}

		if err := json.Unmarshal([]byte(snapshotJSON), &entry.Snapshot); err != nil {
			return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(changedJSON), &entry.ChangedPoints); err != nil {
			return nil, fmt.Errorf("unmarshalling changed points: %w", err)
		}

		entry.CapturedAt, err = time.Parse(time.RFC3339, capturedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing captured_at: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot history: %w", err)
	}

	return entries, nil
}

// RecordCommand inserts a command log row.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - rec: Command record (ID and CreatedAt are assigned here)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *HistoryRepository) RecordCommand(ctx context.Context, rec CommandRecord) error {
	if rec.CommandID == "" {
		return fmt.Errorf("command id is required")
	}
	if rec.DeviceID == "" {
		return fmt.Errorf("device id is required")
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_log (command_id, device_id, point, value, status, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.CommandID,
		rec.DeviceID,
		rec.Point,
		rec.Value,
		rec.Status,
		rec.Detail,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command log: %w", err)
	}

	return nil
}

// GetCommandLog returns recent command attempts for a device, newest first.
func (r *HistoryRepository) GetCommandLog(ctx context.Context, deviceID string, limit int) ([]CommandRecord, error) {
	if deviceID == "" {
		return nil, fmt.Errorf("device id is required")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	rows, err := r.db.DB.QueryContext(ctx,
		`SELECT id, command_id, device_id, point, value, status, detail, created_at
		 FROM command_log
		 WHERE device_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		deviceID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying command log: %w", err)
	}
	defer rows.Close()

	records := make([]CommandRecord, 0, limit)
	for rows.Next() {
		var rec CommandRecord
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.CommandID, &rec.DeviceID, &rec.Point, &rec.Value, &rec.Status, &rec.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command log: %w", err)
		}

		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command log: %w", err)
	}

	return records, nil
}

// PruneHistory deletes snapshot rows older than the given duration.
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *HistoryRepository) PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM snapshot_history WHERE captured_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting snapshot history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}
