package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Status is the workflow state of a task. Transitions are unconstrained.
type Status string

const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// ParseStatus accepts the canonical values case-insensitively. The legacy
// "Pending" default is normalized to To Do.
func ParseStatus(value string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "to do", "todo", "pending":
		return StatusTodo, nil
	case "in progress", "in_progress":
		return StatusInProgress, nil
	case "done", "completed":
		return StatusDone, nil
	}
	return "", Invalidf("unknown status %q", value)
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*s = StatusTodo
		return nil
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Priority ranks tasks for triage.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

func ParsePriority(value string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return "", Invalidf("unknown priority %q", value)
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*p = PriorityMedium
		return nil
	}
	parsed, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParseDate reads a YYYY-MM-DD calendar date (a full RFC3339 timestamp is truncated to its date).
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, Invalidf("invalid date %q, expected YYYY-MM-DD", value)
}

// StartOfDay truncates t to midnight UTC of its calendar date.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Comment is a note attached to a single task.
type Comment struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	AuthorID  string     `json:"author_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UnmarshalJSON also reads the author and time keys of browser exports.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	var in struct {
		plain
		Author string `json:"author"`
		Time   string `json:"time"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*c = Comment(in.plain)
	if c.AuthorID == "" {
		c.AuthorID = in.Author
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = looseTime(in.Time)
	}
	return nil
}

// Task is a unit of work assigned to one user, a team roster or an ad hoc group.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	Assignment  Assignment
	Comments    []Comment
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Task) Type() TaskType {
	if t == nil || t.Assignment == nil {
		return ""
	}
	return t.Assignment.Type()
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

func (t *Task) IsAssignedTo(userID string) bool {
	return t != nil && HasAssignee(t.Assignment, userID)
}

// IsOverdue reports an incomplete task whose due date is before today's date.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.DueDate == nil || t.IsCompleted() {
		return false
	}
	return t.DueDate.Before(StartOfDay(now))
}

// CommentIndex returns the position of the comment or -1.
func (t *Task) CommentIndex(commentID string) int {
	for i := range t.Comments {
		if t.Comments[i].ID == commentID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy safe to mutate independently.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		for i, c := range t.Comments {
			if c.UpdatedAt != nil {
				at := *c.UpdatedAt
				c.UpdatedAt = &at
			}
			out.Comments[i] = c
		}
	}
	return out
}

// Validate checks the fields every stored task must satisfy.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return Invalidf("task title is required")
	}
	if t.Assignment == nil {
		return Invalidf("task %q has no assignees", t.Title)
	}
	switch t.Status {
	case StatusTodo, StatusInProgress, StatusDone:
	default:
		return Invalidf("unknown status %q", t.Status)
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return Invalidf("unknown priority %q", t.Priority)
	}
	return nil
}

type taskJSON struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      Status       `json:"status"`
	Priority    Priority     `json:"priority"`
	DueDate     string       `json:"due_date,omitempty"`
	TaskType    TaskType     `json:"task_type,omitempty"`
	AssignedTo  assigneeList `json:"assigned_to"`
	TeamID      string       `json:"team_id,omitempty"`
	Comments    []Comment    `json:"comments"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	out := taskJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Comments:    t.Comments,
		CreatedBy:   t.CreatedBy,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if out.Comments == nil {
		out.Comments = []Comment{}
	}
	if t.DueDate != nil {
		out.DueDate = t.DueDate.Format(DateLayout)
	}
	if t.Assignment != nil {
		out.TaskType = t.Assignment.Type()
		out.AssignedTo = t.Assignment.Assignees()
		out.TeamID = t.Assignment.TeamID()
	}
	if out.AssignedTo == nil {
		out.AssignedTo = assigneeList{}
	}
	return json.Marshal(out)
}

// legacyTaskJSON holds the camelCase keys of snapshots exported by the
// browser app. User is that format's creator field.
type legacyTaskJSON struct {
	DueDate    string       `json:"dueDate"`
	TaskType   TaskType     `json:"taskType"`
	AssignedTo assigneeList `json:"assignedTo"`
	TeamID     string       `json:"teamId"`
	CreatedBy  string       `json:"createdBy"`
	User       string       `json:"user"`
	CreatedAt  string       `json:"createdAt"`
	UpdatedAt  string       `json:"updatedAt"`
}

func (l legacyTaskJSON) fill(in *taskJSON) {
	if in.DueDate == "" {
		in.DueDate = l.DueDate
	}
	if in.TaskType == "" {
		in.TaskType = l.TaskType
	}
	if in.AssignedTo == nil {
		in.AssignedTo = l.AssignedTo
	}
	if in.TeamID == "" {
		in.TeamID = l.TeamID
	}
	if in.CreatedBy == "" {
		in.CreatedBy = l.CreatedBy
	}
	if in.CreatedBy == "" {
		in.CreatedBy = l.User
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = looseTime(l.CreatedAt)
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = looseTime(l.UpdatedAt)
	}
}

// UnmarshalJSON decodes a stored task, accepting legacy shapes: a single
// string assigned_to, a missing task_type, the "Pending" status and the
// camelCase keys of browser exports.
func (t *Task) UnmarshalJSON(data []byte) error {
	var in taskJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var legacy legacyTaskJSON
	if err := json.Unmarshal(data, &legacy); err != nil {
		return err
	}
	legacy.fill(&in)
	if in.Status == "" {
		in.Status = StatusTodo
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}

	assignment, err := BuildAssignment(in.TaskType, in.AssignedTo, in.TeamID)
	if err != nil {
		return err
	}

	*t = Task{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Assignment:  assignment,
		Comments:    in.Comments,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   in.CreatedAt,
		UpdatedAt:   in.UpdatedAt,
	}
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	if in.DueDate != "" {
		due, err := ParseDate(in.DueDate)
		if err != nil {
			return err
		}
		t.DueDate = &due
	}
	return nil
}

// assigneeList decodes either a JSON array of ids or a single legacy id string.
type assigneeList []string

func (l *assigneeList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = nil
			return nil
		}
		*l = assigneeList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}
