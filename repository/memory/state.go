package memory

import (
	"context"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
)

// Collection names double as the persisted document keys.
const (
	CollectionUsers    = "users"
	CollectionTasks    = "tasks"
	CollectionTeams    = "teams"
	CollectionActivity = "activityLog"
)

// Collections lists every document key in a stable order.
var Collections = []string{CollectionUsers, CollectionTasks, CollectionTeams, CollectionActivity}

// State holds every collection as an ordered slice.
type State struct {
	Users    []domain.User
	Tasks    []domain.Task
	Teams    []domain.Team
	Activity []domain.ActivityEntry
}

// Clone deep-copies the state so a transaction can be discarded on error.
func (s *State) Clone() *State {
	out := &State{
		Users:    append([]domain.User(nil), s.Users...),
		Teams:    make([]domain.Team, len(s.Teams)),
		Tasks:    make([]domain.Task, len(s.Tasks)),
		Activity: append([]domain.ActivityEntry(nil), s.Activity...),
	}
	for i, team := range s.Teams {
		out.Teams[i] = team.Clone()
	}
	for i, task := range s.Tasks {
		out.Tasks[i] = task.Clone()
	}
	return out
}

// Tx exposes repositories over a State and tracks which collections were written.
type Tx struct {
	state *State
	dirty map[string]bool
}

// NewTx wraps state; writes mutate it in place.
func NewTx(state *State) *Tx {
	if state == nil {
		state = &State{}
	}
	return &Tx{state: state, dirty: make(map[string]bool)}
}

func (tx *Tx) Users() repository.UserRepository        { return userRepository{tx: tx} }
func (tx *Tx) Tasks() repository.TaskRepository        { return taskRepository{tx: tx} }
func (tx *Tx) Teams() repository.TeamRepository        { return teamRepository{tx: tx} }
func (tx *Tx) Activity() repository.ActivityRepository { return activityRepository{tx: tx} }

// Dirty reports whether the named collection was modified.
func (tx *Tx) Dirty(collection string) bool {
	return tx.dirty[collection]
}

// State returns the underlying state.
func (tx *Tx) State() *State {
	return tx.state
}

func (tx *Tx) touch(collection string) {
	tx.dirty[collection] = true
}

var _ repository.Tx = (*Tx)(nil)

func checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
