package view

import (
	"context"
	"time"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// Names resolves user and team ids to display names at read time.
type Names struct {
	users map[string]string
	byKey map[string]string
	teams map[string]string
}

func NewNames(users []domain.User, teams []domain.Team) Names {
	n := Names{
		users: make(map[string]string, len(users)),
		byKey: make(map[string]string, len(users)),
		teams: make(map[string]string, len(teams)),
	}
	for _, u := range users {
		n.users[u.ID] = u.Username
		n.byKey[domain.FoldName(u.Username)] = u.ID
	}
	for _, t := range teams {
		n.teams[t.ID] = t.Name
	}
	return n
}

// Username resolves a user id. Deleted or unknown users read as "Deleted User".
func (n Names) Username(id string) string {
	if id == domain.SystemUserID {
		return domain.SystemUserName
	}
	if name, ok := n.users[id]; ok {
		return name
	}
	return domain.DeletedUserName
}

func (n Names) Usernames(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = n.Username(id)
	}
	return out
}

// UserID finds a user id by username, case-insensitively.
func (n Names) UserID(username string) (string, bool) {
	id, ok := n.byKey[domain.FoldName(username)]
	return id, ok
}

// TeamName returns "" for a missing team.
func (n Names) TeamName(id string) string {
	return n.teams[id]
}

type CommentView struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	AuthorID   string     `json:"author_id"`
	AuthorName string     `json:"author_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type TaskView struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Status        domain.Status   `json:"status"`
	Priority      domain.Priority `json:"priority"`
	DueDate       string          `json:"due_date,omitempty"`
	Overdue       bool            `json:"overdue"`
	TaskType      domain.TaskType `json:"task_type"`
	AssignedTo    []string        `json:"assigned_to"`
	AssigneeNames []string        `json:"assignee_names"`
	TeamID        string          `json:"team_id,omitempty"`
	TeamName      string          `json:"team_name,omitempty"`
	Comments      []CommentView   `json:"comments"`
	CreatedBy     string          `json:"created_by"`
	CreatedByName string          `json:"created_by_name"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (n Names) Comment(c domain.Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		Text:       c.Text,
		AuthorID:   c.AuthorID,
		AuthorName: n.Username(c.AuthorID),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func (n Names) Task(t domain.Task, today time.Time) TaskView {
	v := TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        t.Status,
		Priority:      t.Priority,
		Overdue:       t.IsOverdue(today),
		TaskType:      t.Type(),
		AssignedTo:    []string{},
		AssigneeNames: []string{},
		Comments:      make([]CommentView, len(t.Comments)),
		CreatedBy:     t.CreatedBy,
		CreatedByName: n.Username(t.CreatedBy),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.DueDate != nil {
		v.DueDate = t.DueDate.Format(domain.DateLayout)
	}
	if t.Assignment != nil {
		v.AssignedTo = t.Assignment.Assignees()
		v.AssigneeNames = n.Usernames(v.AssignedTo)
		if teamID := t.Assignment.TeamID(); teamID != "" {
			v.TeamID = teamID
			v.TeamName = n.TeamName(teamID)
		}
	}
	for i, c := range t.Comments {
		v.Comments[i] = n.Comment(c)
	}
	return v
}

type TeamView struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Members       []string  `json:"members"`
	MemberNames   []string  `json:"member_names"`
	CreatedBy     string    `json:"created_by"`
	CreatedByName string    `json:"created_by_name"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (n Names) Team(t domain.Team) TeamView {
	members := append([]string{}, t.Members...)
	return TeamView{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		Members:       members,
		MemberNames:   n.Usernames(members),
		CreatedBy:     t.CreatedBy,
		CreatedByName: n.Username(t.CreatedBy),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

type ActivityView struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	UserName  string      `json:"user_name"`
	Role      domain.Role `json:"role"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

func (n Names) Activity(e domain.ActivityEntry) ActivityView {
	return ActivityView{
		ID:        e.ID,
		UserID:    e.UserID,
		UserName:  n.Username(e.UserID),
		Role:      e.Role,
		Message:   e.Message,
		Timestamp: e.Timestamp,
	}
}

// UserView is a user without credentials.
type UserView struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func User(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// LoadNames reads the user and team collections inside tx.
func LoadNames(ctx context.Context, tx repository.Tx) (Names, error) {
	users, err := tx.Users().List(ctx)
	if err != nil {
		return Names{}, err
	}
	teams, err := tx.Teams().List(ctx)
	if err != nil {
		return Names{}, err
	}
	return NewNames(users, teams), nil
}
