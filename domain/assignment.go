package domain

import "strings"

// TaskType classifies how a task is assigned.
type TaskType string

const (
	TaskTypeIndividual TaskType = "individual"
	TaskTypeTeam       TaskType = "team"
	TaskTypeCustom     TaskType = "custom"
)

// ParseTaskType accepts the canonical names plus the legacy "group" alias for team tasks.
func ParseTaskType(value string) (TaskType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "individual":
		return TaskTypeIndividual, nil
	case "team", "group":
		return TaskTypeTeam, nil
	case "custom":
		return TaskTypeCustom, nil
	}
	return "", Invalidf("unknown task type %q", value)
}

// Assignment is the closed set of assignee shapes a task can have.
// Values are only obtainable through the constructors below, which enforce
// the assignee-count rules of each shape.
type Assignment interface {
	Type() TaskType
	Assignees() []string
	TeamID() string
	sealed()
}

// Individual is a task owned by exactly one user.
type Individual struct {
	assignee string
}

// TeamLinked is a task created from a team; members is the team roster at creation time.
type TeamLinked struct {
	teamID  string
	members []string
}

// Custom is a task shared by an ad hoc group of at least two users.
type Custom struct {
	members []string
}

func NewIndividual(userID string) (Individual, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Individual{}, Invalidf("individual task requires exactly one assignee")
	}
	return Individual{assignee: userID}, nil
}

func NewTeamLinked(teamID string, members []string) (TeamLinked, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamLinked{}, Invalidf("team task requires a team")
	}
	members = uniqueIDs(members)
	if len(members) == 0 {
		return TeamLinked{}, Invalidf("team task requires at least one assignee")
	}
	return TeamLinked{teamID: teamID, members: members}, nil
}

func NewCustom(members []string) (Custom, error) {
	members = uniqueIDs(members)
	if len(members) < 2 {
		return Custom{}, Invalidf("custom task requires at least two assignees")
	}
	return Custom{members: members}, nil
}

func (a Individual) Type() TaskType      { return TaskTypeIndividual }
func (a Individual) Assignees() []string { return []string{a.assignee} }
func (a Individual) TeamID() string      { return "" }
func (Individual) sealed()               {}

func (a TeamLinked) Type() TaskType      { return TaskTypeTeam }
func (a TeamLinked) Assignees() []string { return append([]string(nil), a.members...) }
func (a TeamLinked) TeamID() string      { return a.teamID }
func (TeamLinked) sealed()               {}

func (a Custom) Type() TaskType      { return TaskTypeCustom }
func (a Custom) Assignees() []string { return append([]string(nil), a.members...) }
func (a Custom) TeamID() string      { return "" }
func (Custom) sealed()               {}

// BuildAssignment reconstructs an assignment from its stored parts.
// An empty taskType is derived: a team id means team, one assignee means
// individual, anything else custom.
func BuildAssignment(taskType TaskType, assignees []string, teamID string) (Assignment, error) {
	if taskType == "" {
		switch {
		case strings.TrimSpace(teamID) != "":
			taskType = TaskTypeTeam
		case len(uniqueIDs(assignees)) == 1:
			taskType = TaskTypeIndividual
		default:
			taskType = TaskTypeCustom
		}
	}

	switch taskType {
	case TaskTypeIndividual:
		ids := uniqueIDs(assignees)
		if len(ids) != 1 {
			return nil, Invalidf("individual task requires exactly one assignee, got %d", len(ids))
		}
		if strings.TrimSpace(teamID) != "" {
			return nil, Invalidf("individual task cannot reference a team")
		}
		return NewIndividual(ids[0])
	case TaskTypeTeam:
		return NewTeamLinked(teamID, assignees)
	case TaskTypeCustom:
		if strings.TrimSpace(teamID) != "" {
			return nil, Invalidf("custom task cannot reference a team")
		}
		return NewCustom(assignees)
	}
	return nil, Invalidf("unknown task type %q", taskType)
}

// DetachTeam drops the team link, keeping the assignees. A single remaining
// member becomes an individual task.
func DetachTeam(a Assignment) Assignment {
	linked, ok := a.(TeamLinked)
	if !ok {
		return a
	}
	return fromMembers(linked.members)
}

// RemoveAssignee drops userID from the assignment. The result is nil when
// nobody is left. A custom task reduced to one member becomes individual.
func RemoveAssignee(a Assignment, userID string) (Assignment, bool) {
	if !HasAssignee(a, userID) {
		return a, false
	}
	rest := make([]string, 0, len(a.Assignees()))
	for _, id := range a.Assignees() {
		if id != userID {
			rest = append(rest, id)
		}
	}
	if len(rest) == 0 {
		return nil, true
	}
	if linked, ok := a.(TeamLinked); ok {
		return TeamLinked{teamID: linked.teamID, members: rest}, true
	}
	return fromMembers(rest), true
}

// HasAssignee reports whether userID is among the assignees.
func HasAssignee(a Assignment, userID string) bool {
	if a == nil || userID == "" {
		return false
	}
	for _, id := range a.Assignees() {
		if id == userID {
			return true
		}
	}
	return false
}

func fromMembers(members []string) Assignment {
	if len(members) == 1 {
		return Individual{assignee: members[0]}
	}
	return Custom{members: append([]string(nil), members...)}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
