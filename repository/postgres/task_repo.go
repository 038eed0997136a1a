package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/teamboard/domain"
)

const taskColumns = `id, title, description, status, priority, due_date, task_type, assignee_ids, team_id, comments, created_by, created_at, updated_at`

type taskRepository struct {
	q querier
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := r.q.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" || task.Assignment == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (id, title, description, status, priority, due_date, task_type, assignee_ids, team_id, comments, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), COALESCE($13, NOW()))
	RETURNING created_at, updated_at
	`
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	args = append(args, nullTime(task.CreatedAt), nullTime(task.UpdatedAt))
	return r.q.QueryRow(ctx, query, args...).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil || task.Assignment == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		due_date = $6,
		task_type = $7,
		assignee_ids = $8,
		team_id = $9,
		comments = $10,
		created_by = $11,
		updated_at = COALESCE($12, NOW())
	WHERE id = $1
	RETURNING updated_at
	`
	args, err := taskArgs(task)
	if err != nil {
		return err
	}
	args = append(args, nullTime(task.UpdatedAt))
	if err := r.q.QueryRow(ctx, query, args...).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) ReplaceAll(ctx context.Context, tasks []domain.Task) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return err
	}
	for i := range tasks {
		task := tasks[i].Clone()
		if err := r.Create(ctx, &task); err != nil {
			return err
		}
	}
	return nil
}

func taskArgs(task *domain.Task) ([]interface{}, error) {
	comments := task.Comments
	if comments == nil {
		comments = []domain.Comment{}
	}
	commentsJSON, err := json.Marshal(comments)
	if err != nil {
		return nil, err
	}

	var due interface{}
	if task.DueDate != nil {
		due = *task.DueDate
	}

	return []interface{}{
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		due,
		string(task.Assignment.Type()),
		marshalList(task.Assignment.Assignees()),
		nullString(task.Assignment.TeamID()),
		commentsJSON,
		task.CreatedBy,
	}, nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		status      string
		priority    string
		due         *time.Time
		taskType    string
		assigneeRaw []byte
		teamID      *string
		commentsRaw []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&due,
		&taskType,
		&assigneeRaw,
		&teamID,
		&commentsRaw,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.Status(status)
	task.Priority = domain.Priority(priority)
	if due != nil {
		d := domain.StartOfDay(*due)
		task.DueDate = &d
	}

	assignees, err := unmarshalList(assigneeRaw)
	if err != nil {
		return nil, domain.Corrupted("tasks", err)
	}
	var team string
	if teamID != nil {
		team = *teamID
	}
	task.Assignment, err = domain.BuildAssignment(domain.TaskType(taskType), assignees, team)
	if err != nil {
		return nil, domain.Corrupted("tasks", err)
	}

	task.Comments = []domain.Comment{}
	if len(commentsRaw) > 0 {
		if err := json.Unmarshal(commentsRaw, &task.Comments); err != nil {
			return nil, domain.Corrupted("tasks", err)
		}
	}

	return &task, nil
}
