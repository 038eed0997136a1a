package task

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/view"
)

type UseCase struct {
	journal  *usecase.Journal
	pageSize int
	logger   *zap.Logger
}

func New(journal *usecase.Journal, pageSize int, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &UseCase{
		journal:  journal,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Query carries raw listing parameters as received from a client.
type Query struct {
	Search   string
	Status   string
	Priority string
	Assignee string
	Type     string
	Page     int
}

type CreateInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	TaskType    string
	AssignedTo  []string
	TeamID      string
}

// Patch holds the fields to merge into a task; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
	TaskType    *string
	AssignedTo  *[]string
	TeamID      *string
}

func (p Patch) statusOnly() bool {
	return p.Status != nil && p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.TaskType == nil && p.AssignedTo == nil && p.TeamID == nil
}

func (p Patch) empty() bool {
	return p.Status == nil && p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.DueDate == nil && p.TaskType == nil && p.AssignedTo == nil && p.TeamID == nil
}

func (uc *UseCase) List(ctx context.Context, actor domain.Actor, q Query) (view.Page[view.TaskView], error) {
	var page view.Page[view.TaskView]
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		tasks, err := uc.pageOf(ctx, tx, actor, names, q)
		if err != nil {
			return err
		}
		today := uc.journal.Now()
		page = view.Map(tasks, func(t domain.Task) view.TaskView {
			return names.Task(t, today)
		})
		return nil
	})
	return page, err
}

func (uc *UseCase) Summary(ctx context.Context, actor domain.Actor) (view.Summary, error) {
	var summary view.Summary
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		tasks, err := tx.Tasks().List(ctx)
		if err != nil {
			return err
		}
		summary = view.Summarize(view.Visible(tasks, actor), uc.journal.Now())
		return nil
	})
	return summary, err
}

func (uc *UseCase) Get(ctx context.Context, actor domain.Actor, id string) (*view.TaskView, error) {
	var out *view.TaskView
	err := uc.journal.View(ctx, func(tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !view.CanSee(actor, task) {
			return domain.ErrForbidden
		}
		out, err = uc.present(ctx, tx, *task)
		return err
	})
	return out, err
}

func (uc *UseCase) Create(ctx context.Context, actor domain.Actor, in CreateInput) (*view.TaskView, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	now := uc.journal.Now()
	task := domain.Task{
		ID:          domain.NewID(),
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      domain.StatusTodo,
		Priority:    domain.PriorityMedium,
		Comments:    []domain.Comment{},
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if strings.TrimSpace(in.Status) != "" {
		status, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		task.Status = status
	}
	if strings.TrimSpace(in.Priority) != "" {
		priority, err := domain.ParsePriority(in.Priority)
		if err != nil {
			return nil, err
		}
		task.Priority = priority
	}
	if strings.TrimSpace(in.DueDate) != "" {
		due, err := domain.ParseDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = &due
	}

	var out *view.TaskView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		req := assignmentRequest{refs: in.AssignedTo, teamID: strings.TrimSpace(in.TeamID), explicit: true}
		if strings.TrimSpace(in.TaskType) != "" {
			taskType, err := domain.ParseTaskType(in.TaskType)
			if err != nil {
				return err
			}
			req.taskType = taskType
		}
		if req.taskType == domain.TaskTypeTeam || (req.taskType == "" && req.teamID != "") {
			req.explicit = false
		}
		assignment, err := buildAssignment(ctx, tx, req)
		if err != nil {
			return err
		}
		task.Assignment = assignment

		if err := task.Validate(); err != nil {
			return err
		}
		if err := tx.Tasks().Create(ctx, &task); err != nil {
			return err
		}
		record("📝 Created task \"%s\"", task.Title)

		out, err = uc.present(ctx, tx, task)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("task created", zap.String("task_id", task.ID), zap.String("type", string(task.Type())))
	return out, nil
}

// Update merges patch into the task. Admins may change anything; an assignee
// may change only the status.
func (uc *UseCase) Update(ctx context.Context, actor domain.Actor, id string, patch Patch) (*view.TaskView, error) {
	if patch.empty() {
		return nil, domain.Invalidf("nothing to update")
	}

	var out *view.TaskView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if !task.IsAssignedTo(actor.UserID) || !patch.statusOnly() {
				return domain.ErrForbidden
			}
		}

		if err := uc.apply(ctx, tx, task, patch); err != nil {
			return err
		}
		task.UpdatedAt = uc.journal.Now()
		if err := task.Validate(); err != nil {
			return err
		}
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}

		if patch.statusOnly() {
			record("🔄 Changed status of \"%s\" to %s", task.Title, task.Status)
		} else {
			record("✏️ Updated task \"%s\"", task.Title)
		}

		out, err = uc.present(ctx, tx, *task)
		return err
	})
	return out, err
}

func (uc *UseCase) apply(ctx context.Context, tx repository.Tx, task *domain.Task, patch Patch) error {
	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		status, err := domain.ParseStatus(*patch.Status)
		if err != nil {
			return err
		}
		task.Status = status
	}
	if patch.Priority != nil {
		priority, err := domain.ParsePriority(*patch.Priority)
		if err != nil {
			return err
		}
		task.Priority = priority
	}
	if patch.DueDate != nil {
		if strings.TrimSpace(*patch.DueDate) == "" {
			task.DueDate = nil
		} else {
			due, err := domain.ParseDate(*patch.DueDate)
			if err != nil {
				return err
			}
			task.DueDate = &due
		}
	}

	if patch.TaskType == nil && patch.AssignedTo == nil && patch.TeamID == nil {
		return nil
	}

	current := task.Assignment
	req := assignmentRequest{
		taskType: current.Type(),
		refs:     current.Assignees(),
		teamID:   current.TeamID(),
	}
	if patch.TaskType != nil {
		taskType, err := domain.ParseTaskType(*patch.TaskType)
		if err != nil {
			return err
		}
		req.taskType = taskType
	}
	if patch.TeamID != nil {
		req.teamID = strings.TrimSpace(*patch.TeamID)
		if patch.TaskType == nil {
			if req.teamID != "" {
				req.taskType = domain.TaskTypeTeam
			} else if req.taskType == domain.TaskTypeTeam {
				req.taskType = ""
			}
		}
	}
	if req.taskType != domain.TaskTypeTeam {
		req.teamID = ""
	}
	if patch.AssignedTo != nil {
		req.refs = *patch.AssignedTo
		req.explicit = true
	} else if req.taskType == domain.TaskTypeTeam && (req.teamID != current.TeamID() || current.Type() != domain.TaskTypeTeam) {
		req.refs = nil
	} else {
		req.explicit = true
	}

	assignment, err := buildAssignment(ctx, tx, req)
	if err != nil {
		return err
	}
	task.Assignment = assignment
	return nil
}

func (uc *UseCase) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		task, err := tx.Tasks().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		record("🗑️ Deleted task \"%s\"", task.Title)
		return nil
	})
}

// pageOf filters the viewer's tasks with q and returns the requested page.
func (uc *UseCase) pageOf(ctx context.Context, tx repository.Tx, actor domain.Actor, names view.Names, q Query) (view.Page[domain.Task], error) {
	criteria, ok, err := uc.criteria(actor, names, q)
	if err != nil {
		return view.Page[domain.Task]{}, err
	}
	if !ok {
		return view.Paginate([]domain.Task{}, q.Page, uc.pageSize), nil
	}
	tasks, err := tx.Tasks().List(ctx)
	if err != nil {
		return view.Page[domain.Task]{}, err
	}
	return view.Paginate(view.Filter(tasks, criteria), q.Page, uc.pageSize), nil
}

// criteria parses q. ok is false when the assignee filter names an unknown user,
// in which case nothing can match.
func (uc *UseCase) criteria(actor domain.Actor, names view.Names, q Query) (view.Criteria, bool, error) {
	c := view.Criteria{
		Viewer: actor,
		Search: q.Search,
		Today:  uc.journal.Now(),
	}
	var err error
	if c.Status, err = view.ParseStatusFilter(q.Status); err != nil {
		return c, false, err
	}
	if c.Type, err = view.ParseTypeFilter(q.Type); err != nil {
		return c, false, err
	}
	if p := strings.TrimSpace(q.Priority); p != "" && !strings.EqualFold(p, "all") {
		if c.Priority, err = domain.ParsePriority(p); err != nil {
			return c, false, err
		}
	}
	if a := strings.TrimSpace(q.Assignee); a != "" && !strings.EqualFold(a, "all") {
		id, found := names.UserID(a)
		if !found {
			return c, false, nil
		}
		c.AssigneeID = id
	}
	return c, true, nil
}

func (uc *UseCase) present(ctx context.Context, tx repository.Tx, task domain.Task) (*view.TaskView, error) {
	names, err := view.LoadNames(ctx, tx)
	if err != nil {
		return nil, err
	}
	v := names.Task(task, uc.journal.Now())
	return &v, nil
}
