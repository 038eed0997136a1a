package maintenance

import (
	"context"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// DetachOrphans strips the team link from every task whose team no longer
// exists, keeping its assignees. It returns the number of repaired tasks and
// is idempotent.
func DetachOrphans(ctx context.Context, tx repository.Tx) (int, error) {
	teams, err := tx.Teams().List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(teams))
	for _, t := range teams {
		known[t.ID] = struct{}{}
	}

	tasks, err := tx.Tasks().List(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range tasks {
		task := &tasks[i]
		if task.Assignment == nil {
			continue
		}
		teamID := task.Assignment.TeamID()
		if teamID == "" {
			continue
		}
		if _, ok := known[teamID]; ok {
			continue
		}
		task.Assignment = domain.DetachTeam(task.Assignment)
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}
