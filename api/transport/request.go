package transport

import (
	"encoding/json"
	"strings"
)

// StringList decodes either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
}

// LoginIdentifier returns whichever of identifier, username or email was sent.
func (r LoginRequest) LoginIdentifier() string {
	for _, v := range []string{r.Identifier, r.Username, r.Email} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

type UserCreateRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserUpdateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type TaskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     string     `json:"due_date"`
	TaskType    string     `json:"task_type"`
	AssignedTo  StringList `json:"assigned_to"`
	TeamID      string     `json:"team_id"`
}

type TaskUpdateRequest struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Status      *string     `json:"status"`
	Priority    *string     `json:"priority"`
	DueDate     *string     `json:"due_date"`
	TaskType    *string     `json:"task_type"`
	AssignedTo  *StringList `json:"assigned_to"`
	TeamID      *string     `json:"team_id"`
}

// BulkRequest carries the selection plus the listing parameters of the page it was made on.
type BulkRequest struct {
	Action   string   `json:"action"`
	Value    string   `json:"value"`
	TaskIDs  []string `json:"task_ids"`
	Page     int      `json:"page"`
	Search   string   `json:"search"`
	Status   string   `json:"status"`
	Priority string   `json:"priority"`
	Assignee string   `json:"assignee"`
	Type     string   `json:"type"`
}

type CommentRequest struct {
	Text string `json:"text"`
}

type TeamRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Members     StringList `json:"members"`
}

type TeamUpdateRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Members     *StringList `json:"members"`
}
