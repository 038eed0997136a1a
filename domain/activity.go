package domain

import (
	"encoding/json"
	"time"
)

// ActivityLogLimit caps the number of retained activity entries.
const ActivityLogLimit = 200

// ActivityEntry is a human-readable record of one mutation. The log is kept newest first.
type ActivityEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// UnmarshalJSON also reads the user key of browser exports.
func (e *ActivityEntry) UnmarshalJSON(data []byte) error {
	type plain ActivityEntry
	var in struct {
		plain
		User string `json:"user"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = ActivityEntry(in.plain)
	if e.UserID == "" {
		e.UserID = in.User
	}
	return nil
}
