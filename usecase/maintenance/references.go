package maintenance

import (
	"context"
	"strings"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// references maps the user references found in an imported snapshot onto
// stored user ids. A reference may be an id or a username.
type references struct {
	ids   map[string]struct{}
	names map[string]string
}

func loadReferences(ctx context.Context, tx repository.Tx) (references, error) {
	users, err := tx.Users().List(ctx)
	if err != nil {
		return references{}, err
	}
	r := references{
		ids:   make(map[string]struct{}, len(users)),
		names: make(map[string]string, len(users)),
	}
	for _, u := range users {
		r.ids[u.ID] = struct{}{}
		r.names[domain.FoldName(u.Username)] = u.ID
	}
	return r, nil
}

func (r references) user(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if _, ok := r.ids[ref]; ok {
		return ref, true
	}
	id, ok := r.names[domain.FoldName(ref)]
	return id, ok
}

// members resolves assignees and team rosters. Unknown users are rejected.
func (r references) members(refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, ok := r.user(ref)
		if !ok {
			return nil, domain.Invalidf("unknown user %q", ref)
		}
		out = append(out, id)
	}
	return out, nil
}

// author resolves creator, comment and activity fields. These outlive their
// users, so an unknown reference reads as the deleted user.
func (r references) author(ref string) string {
	switch key := domain.FoldName(ref); key {
	case domain.SystemUserID, domain.FoldName(domain.SystemUserName):
		return domain.SystemUserID
	case domain.DeletedUserID, domain.FoldName(domain.DeletedUserName):
		return domain.DeletedUserID
	}
	if id, ok := r.user(ref); ok {
		return id
	}
	return domain.DeletedUserID
}

// resolved is a snapshot rewritten to reference user ids only.
type resolved struct {
	tasks    []domain.Task
	teams    []domain.Team
	activity []domain.ActivityEntry
}

func (r references) resolve(s *domain.Snapshot, activity []domain.ActivityEntry) (*resolved, error) {
	out := &resolved{
		tasks:    make([]domain.Task, len(s.Tasks)),
		teams:    make([]domain.Team, len(s.Teams)),
		activity: make([]domain.ActivityEntry, len(activity)),
	}

	for i, team := range s.Teams {
		team = team.Clone()
		members, err := r.members(team.Members)
		if err != nil {
			return nil, domain.Invalidf("team %q: %v", team.Name, err)
		}
		team.Members = members
		team.NormalizeMembers()
		team.CreatedBy = r.author(team.CreatedBy)
		out.teams[i] = team
	}

	for i, task := range s.Tasks {
		task = task.Clone()
		ids, err := r.members(task.Assignment.Assignees())
		if err != nil {
			return nil, domain.Invalidf("task %q: %v", task.Title, err)
		}
		if task.Assignment, err = domain.BuildAssignment(task.Type(), ids, task.Assignment.TeamID()); err != nil {
			return nil, domain.Invalidf("task %q: %v", task.Title, err)
		}
		task.CreatedBy = r.author(task.CreatedBy)
		for j := range task.Comments {
			task.Comments[j].AuthorID = r.author(task.Comments[j].AuthorID)
		}
		out.tasks[i] = task
	}

	for i, entry := range activity {
		entry.UserID = r.author(entry.UserID)
		out.activity[i] = entry
	}
	return out, nil
}
