package task

import (
	"context"
	"strings"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

type assignmentRequest struct {
	taskType domain.TaskType
	refs     []string
	teamID   string
	// explicit is false when a team task should take the team's current roster.
	explicit bool
}

// buildAssignment resolves user references and the team into a validated assignment.
func buildAssignment(ctx context.Context, tx repository.Tx, req assignmentRequest) (domain.Assignment, error) {
	if req.taskType == "" && req.teamID != "" {
		req.taskType = domain.TaskTypeTeam
	}

	if req.taskType == domain.TaskTypeTeam {
		if req.teamID == "" {
			return nil, domain.Invalidf("team task requires a team")
		}
		team, err := tx.Teams().GetByID(ctx, req.teamID)
		if err != nil {
			return nil, err
		}
		refs := team.Members
		if req.explicit {
			refs = req.refs
		}
		ids, err := resolveUsers(ctx, tx, refs)
		if err != nil {
			return nil, err
		}
		linked, err := domain.NewTeamLinked(team.ID, ids)
		if err != nil {
			return nil, err
		}
		return linked, nil
	}

	ids, err := resolveUsers(ctx, tx, req.refs)
	if err != nil {
		return nil, err
	}
	return domain.BuildAssignment(req.taskType, ids, req.teamID)
}

// resolveUsers maps each reference, a user id or a username, to an existing user id.
func resolveUsers(ctx context.Context, tx repository.Tx, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		user, err := tx.Users().GetByID(ctx, ref)
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			user, err = tx.Users().GetByUsername(ctx, ref)
		}
		if err != nil {
			if domain.IsDomainError(err, domain.ErrCodeNotFound) {
				return nil, domain.Invalidf("unknown user %q", ref)
			}
			return nil, err
		}
		ids = append(ids, user.ID)
	}
	return ids, nil
}
