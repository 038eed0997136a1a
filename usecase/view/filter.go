// Package view holds the read-side computations over a task snapshot:
// visibility, filtering, pagination, summaries and name resolution.
// Everything here is pure and never touches storage.
package view

import (
	"strings"
	"time"

	"github.com/fastygo/teamboard/domain"
)

// StatusFilter selects a status bucket. Overdue is a bucket of its own.
type StatusFilter string

const (
	StatusAll        StatusFilter = "All"
	StatusTodo       StatusFilter = StatusFilter(domain.StatusTodo)
	StatusInProgress StatusFilter = StatusFilter(domain.StatusInProgress)
	StatusDone       StatusFilter = StatusFilter(domain.StatusDone)
	StatusOverdue    StatusFilter = "Overdue"
)

func ParseStatusFilter(value string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "all":
		return StatusAll, nil
	case "overdue":
		return StatusOverdue, nil
	}
	status, err := domain.ParseStatus(value)
	if err != nil {
		return "", err
	}
	return StatusFilter(status), nil
}

// TypeFilter selects tasks by assignment shape.
type TypeFilter string

const (
	TypeAll        TypeFilter = "all"
	TypeIndividual TypeFilter = TypeFilter(domain.TaskTypeIndividual)
	TypeTeam       TypeFilter = TypeFilter(domain.TaskTypeTeam)
	TypeCustom     TypeFilter = TypeFilter(domain.TaskTypeCustom)
)

func ParseTypeFilter(value string) (TypeFilter, error) {
	if v := strings.ToLower(strings.TrimSpace(value)); v == "" || v == "all" {
		return TypeAll, nil
	}
	taskType, err := domain.ParseTaskType(value)
	if err != nil {
		return "", err
	}
	return TypeFilter(taskType), nil
}

// Criteria parameterizes a task listing. Zero values match everything.
type Criteria struct {
	Viewer     domain.Actor
	Search     string
	Status     StatusFilter
	Priority   domain.Priority
	AssigneeID string
	Type       TypeFilter
	Today      time.Time
}

// CanSee reports whether viewer may read task: admins see all, others only tasks assigned to them.
func CanSee(viewer domain.Actor, task *domain.Task) bool {
	return viewer.IsAdmin() || task.IsAssignedTo(viewer.UserID)
}

func Visible(tasks []domain.Task, viewer domain.Actor) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if CanSee(viewer, &tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Bucket returns the single status bucket a task is counted in.
func Bucket(task *domain.Task, today time.Time) StatusFilter {
	if task.IsOverdue(today) {
		return StatusOverdue
	}
	return StatusFilter(task.Status)
}

// Matches applies every criterion except visibility.
func Matches(task *domain.Task, c Criteria) bool {
	if q := strings.ToLower(strings.TrimSpace(c.Search)); q != "" {
		if !strings.Contains(strings.ToLower(task.Title), q) &&
			!strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	if c.Status != "" && c.Status != StatusAll && Bucket(task, c.Today) != c.Status {
		return false
	}
	if c.Priority != "" && task.Priority != c.Priority {
		return false
	}
	if c.AssigneeID != "" && !task.IsAssignedTo(c.AssigneeID) {
		return false
	}
	if c.Type != "" && c.Type != TypeAll && TypeFilter(task.Type()) != c.Type {
		return false
	}
	return true
}

// Filter returns the tasks the viewer can see that match c, keeping store order.
func Filter(tasks []domain.Task, c Criteria) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for i := range tasks {
		if CanSee(c.Viewer, &tasks[i]) && Matches(&tasks[i], c) {
			out = append(out, tasks[i])
		}
	}
	return out
}

// Summary counts visible tasks per bucket. The buckets are disjoint.
type Summary struct {
	Total      int `json:"total"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
	Overdue    int `json:"overdue"`
}

func Summarize(tasks []domain.Task, today time.Time) Summary {
	var s Summary
	for i := range tasks {
		s.Total++
		switch Bucket(&tasks[i], today) {
		case StatusOverdue:
			s.Overdue++
		case StatusTodo:
			s.Todo++
		case StatusInProgress:
			s.InProgress++
		case StatusDone:
			s.Done++
		}
	}
	return s
}
