package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/teamboard/domain"
)

var today = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func individual(t *testing.T, userID string) domain.Assignment {
	a, err := domain.NewIndividual(userID)
	require.NoError(t, err)
	return a
}

func sampleTasks(t *testing.T) []domain.Task {
	team, err := domain.NewTeamLinked("eng", []string{"alice", "bob"})
	require.NoError(t, err)
	custom, err := domain.NewCustom([]string{"bob", "carol"})
	require.NoError(t, err)

	return []domain.Task{
		{ID: "1", Title: "Write docs", Status: domain.StatusTodo, Priority: domain.PriorityLow, Assignment: individual(t, "alice")},
		{ID: "2", Title: "Fix login", Description: "OAuth bug", Status: domain.StatusInProgress, Priority: domain.PriorityHigh, DueDate: date(2024, 6, 1), Assignment: team},
		{ID: "3", Title: "Release", Status: domain.StatusDone, Priority: domain.PriorityHigh, DueDate: date(2024, 6, 1), Assignment: custom},
		{ID: "4", Title: "Plan sprint", Status: domain.StatusTodo, Priority: domain.PriorityMedium, DueDate: date(2024, 6, 10), Assignment: individual(t, "carol")},
	}
}

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestFilter(t *testing.T) {
	tasks := sampleTasks(t)
	admin := domain.Actor{UserID: "root", Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"admin sees all", Criteria{Viewer: admin}, []string{"1", "2", "3", "4"}},
		{"user sees assigned", Criteria{Viewer: domain.Actor{UserID: "bob", Role: domain.RoleUser}}, []string{"2", "3"}},
		{"search description", Criteria{Viewer: admin, Search: "oauth"}, []string{"2"}},
		{"status overdue", Criteria{Viewer: admin, Status: StatusOverdue}, []string{"2"}},
		{"status in progress excludes overdue", Criteria{Viewer: admin, Status: StatusInProgress}, []string{}},
		{"status done", Criteria{Viewer: admin, Status: StatusDone}, []string{"3"}},
		{"priority", Criteria{Viewer: admin, Priority: domain.PriorityHigh}, []string{"2", "3"}},
		{"assignee", Criteria{Viewer: admin, AssigneeID: "carol"}, []string{"3", "4"}},
		{"type team", Criteria{Viewer: admin, Type: TypeTeam}, []string{"2"}},
		{"combined", Criteria{Viewer: admin, Type: TypeIndividual, Status: StatusTodo}, []string{"1", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.criteria.Today = today
			assert.Equal(t, tt.want, ids(Filter(tasks, tt.criteria)))
		})
	}
}

func TestSummarize_BucketsAreDisjoint(t *testing.T) {
	tasks := sampleTasks(t)

	s := Summarize(tasks, today)
	assert.Equal(t, Summary{Total: 4, Todo: 2, InProgress: 0, Done: 1, Overdue: 1}, s)
	assert.Equal(t, s.Total, s.Todo+s.InProgress+s.Done+s.Overdue)

	for _, status := range []StatusFilter{StatusTodo, StatusInProgress, StatusDone} {
		for _, task := range Filter(tasks, Criteria{Viewer: domain.SystemActor, Status: status, Today: today}) {
			assert.False(t, task.IsOverdue(today), "task %s counted as %s and overdue", task.ID, status)
		}
	}
}

func TestParseStatusFilter(t *testing.T) {
	tests := map[string]StatusFilter{
		"":            StatusAll,
		"ALL":         StatusAll,
		"overdue":     StatusOverdue,
		"in progress": StatusInProgress,
		"Pending":     StatusTodo,
	}
	for in, want := range tests {
		got, err := ParseStatusFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatusFilter("archived")
	assert.Error(t, err)
}

func TestParseTypeFilter(t *testing.T) {
	got, err := ParseTypeFilter("group")
	require.NoError(t, err)
	assert.Equal(t, TypeTeam, got)

	got, err = ParseTypeFilter("")
	require.NoError(t, err)
	assert.Equal(t, TypeAll, got)
}
