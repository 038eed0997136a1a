package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Team is a named roster of users that tasks can be created for.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []string  `json:"members"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UnmarshalJSON also reads the camelCase keys of browser exports.
func (t *Team) UnmarshalJSON(data []byte) error {
	type plain Team
	var in struct {
		plain
		CreatedByCamel string `json:"createdBy"`
		CreatedAtCamel string `json:"createdAt"`
		UpdatedAtCamel string `json:"updatedAt"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*t = Team(in.plain)
	if t.CreatedBy == "" {
		t.CreatedBy = in.CreatedByCamel
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = looseTime(in.CreatedAtCamel)
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = looseTime(in.UpdatedAtCamel)
	}
	return nil
}

func (t *Team) HasMember(userID string) bool {
	if t == nil {
		return false
	}
	for _, id := range t.Members {
		if id == userID {
			return true
		}
	}
	return false
}

// RemoveMember drops userID from the roster and reports whether it was present.
func (t *Team) RemoveMember(userID string) bool {
	if !t.HasMember(userID) {
		return false
	}
	rest := make([]string, 0, len(t.Members)-1)
	for _, id := range t.Members {
		if id != userID {
			rest = append(rest, id)
		}
	}
	t.Members = rest
	return true
}

func (t Team) Clone() Team {
	out := t
	out.Members = append([]string(nil), t.Members...)
	return out
}

func (t *Team) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Name) == "" {
		return Invalidf("team name is required")
	}
	if len(uniqueIDs(t.Members)) == 0 {
		return Invalidf("team %q needs at least one member", t.Name)
	}
	return nil
}

// NormalizeMembers trims and de-duplicates the roster, keeping order.
func (t *Team) NormalizeMembers() {
	t.Members = uniqueIDs(t.Members)
}
