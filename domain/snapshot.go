package domain

import (
	"encoding/json"
	"time"
)

// SnapshotVersion is the current export format version.
const SnapshotVersion = 1

// Snapshot is the full export/import document.
type Snapshot struct {
	Version     int             `json:"version"`
	ExportDate  time.Time       `json:"exportDate"`
	Tasks       []Task          `json:"tasks"`
	Teams       []Team          `json:"teams"`
	ActivityLog []ActivityEntry `json:"activityLog"`
}

// UnmarshalJSON also accepts the snake_case keys written by earlier exports.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var in struct {
		plain
		ExportDateSnake  *time.Time      `json:"export_date"`
		ActivityLogSnake []ActivityEntry `json:"activity_log"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Snapshot(in.plain)
	if s.ExportDate.IsZero() && in.ExportDateSnake != nil {
		s.ExportDate = *in.ExportDateSnake
	}
	if s.ActivityLog == nil {
		s.ActivityLog = in.ActivityLogSnake
	}
	return nil
}

// looseTime reads an RFC3339 timestamp or a calendar date. Anything else is
// treated as unknown and yields the zero time.
func looseTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t
	}
	return time.Time{}
}
