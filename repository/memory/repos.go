package memory

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type userRepository struct{ tx *Tx }

func (r userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range r.tx.state.Users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	key := domain.FoldName(username)
	for _, u := range r.tx.state.Users {
		if domain.FoldName(u.Username) == key {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	key := domain.FoldName(email)
	for _, u := range r.tx.state.Users {
		if domain.FoldName(u.Email) == key {
			user := u
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r userRepository) List(ctx context.Context) ([]domain.User, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return append([]domain.User(nil), r.tx.state.Users...), nil
}

func (r userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.tx.state.Users = append(r.tx.state.Users, *user)
	r.tx.touch(CollectionUsers)
	return nil
}

func (r userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	for i := range r.tx.state.Users {
		if r.tx.state.Users[i].ID == user.ID {
			r.tx.state.Users[i] = *user
			r.tx.touch(CollectionUsers)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r userRepository) Delete(ctx context.Context, id string) error {
	users := r.tx.state.Users
	for i := range users {
		if users[i].ID == id {
			r.tx.state.Users = append(users[:i:i], users[i+1:]...)
			r.tx.touch(CollectionUsers)
			return nil
		}
	}
	return domain.ErrUserNotFound
}

type taskRepository struct{ tx *Tx }

func (r taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	for _, t := range r.tx.state.Tasks {
		if t.ID == id {
			task := t.Clone()
			return &task, nil
		}
	}
	return nil, domain.ErrTaskNotFound
}

func (r taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	tasks := make([]domain.Task, len(r.tx.state.Tasks))
	for i, t := range r.tx.state.Tasks {
		tasks[i] = t.Clone()
	}
	return tasks, nil
}

func (r taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.tx.state.Tasks = append(r.tx.state.Tasks, task.Clone())
	r.tx.touch(CollectionTasks)
	return nil
}

func (r taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	for i := range r.tx.state.Tasks {
		if r.tx.state.Tasks[i].ID == task.ID {
			r.tx.state.Tasks[i] = task.Clone()
			r.tx.touch(CollectionTasks)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r taskRepository) Delete(ctx context.Context, id string) error {
	tasks := r.tx.state.Tasks
	for i := range tasks {
		if tasks[i].ID == id {
			r.tx.state.Tasks = append(tasks[:i:i], tasks[i+1:]...)
			r.tx.touch(CollectionTasks)
			return nil
		}
	}
	return domain.ErrTaskNotFound
}

func (r taskRepository) ReplaceAll(ctx context.Context, tasks []domain.Task) error {
	replaced := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		replaced[i] = t.Clone()
	}
	r.tx.state.Tasks = replaced
	r.tx.touch(CollectionTasks)
	return nil
}

type teamRepository struct{ tx *Tx }

func (r teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	for _, t := range r.tx.state.Teams {
		if t.ID == id {
			team := t.Clone()
			return &team, nil
		}
	}
	return nil, domain.ErrTeamNotFound
}

func (r teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	teams := make([]domain.Team, len(r.tx.state.Teams))
	for i, t := range r.tx.state.Teams {
		teams[i] = t.Clone()
	}
	return teams, nil
}

func (r teamRepository) Create(ctx context.Context, team *domain.Team) error {
	if team == nil || team.ID == "" {
		return domain.ErrInvalidPayload
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	r.tx.state.Teams = append(r.tx.state.Teams, team.Clone())
	r.tx.touch(CollectionTeams)
	return nil
}

func (r teamRepository) Update(ctx context.Context, team *domain.Team) error {
	if team == nil {
		return domain.ErrInvalidPayload
	}
	for i := range r.tx.state.Teams {
		if r.tx.state.Teams[i].ID == team.ID {
			r.tx.state.Teams[i] = team.Clone()
			r.tx.touch(CollectionTeams)
			return nil
		}
	}
	return domain.ErrTeamNotFound
}

func (r teamRepository) Delete(ctx context.Context, id string) error {
	teams := r.tx.state.Teams
	for i := range teams {
		if teams[i].ID == id {
			r.tx.state.Teams = append(teams[:i:i], teams[i+1:]...)
			r.tx.touch(CollectionTeams)
			return nil
		}
	}
	return domain.ErrTeamNotFound
}

func (r teamRepository) ReplaceAll(ctx context.Context, teams []domain.Team) error {
	replaced := make([]domain.Team, len(teams))
	for i, t := range teams {
		replaced[i] = t.Clone()
	}
	r.tx.state.Teams = replaced
	r.tx.touch(CollectionTeams)
	return nil
}

type activityRepository struct{ tx *Tx }

func (r activityRepository) List(ctx context.Context) ([]domain.ActivityEntry, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	return append([]domain.ActivityEntry(nil), r.tx.state.Activity...), nil
}

func (r activityRepository) Append(ctx context.Context, entry domain.ActivityEntry, limit int) error {
	if limit <= 0 {
		limit = domain.ActivityLogLimit
	}
	log := make([]domain.ActivityEntry, 0, len(r.tx.state.Activity)+1)
	log = append(log, entry)
	log = append(log, r.tx.state.Activity...)
	if len(log) > limit {
		log = log[:limit]
	}
	r.tx.state.Activity = log
	r.tx.touch(CollectionActivity)
	return nil
}

func (r activityRepository) Clear(ctx context.Context) error {
	r.tx.state.Activity = nil
	r.tx.touch(CollectionActivity)
	return nil
}

func (r activityRepository) ReplaceAll(ctx context.Context, entries []domain.ActivityEntry) error {
	r.tx.state.Activity = append([]domain.ActivityEntry(nil), entries...)
	r.tx.touch(CollectionActivity)
	return nil
}
