package task

import (
	"context"
	"strings"

	"github.com/fastygo/teamboard/domain"
	"github.com/fastygo/teamboard/repository"
	"github.com/fastygo/teamboard/usecase"
	"github.com/fastygo/teamboard/usecase/view"
)

// AddComment appends a comment authored by actor. Admins and assignees may comment.
func (uc *UseCase) AddComment(ctx context.Context, actor domain.Actor, taskID, text string) (*view.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalidf("comment text is required")
	}

	var out *view.CommentView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if !view.CanSee(actor, task) {
			return domain.ErrForbidden
		}

		now := uc.journal.Now()
		comment := domain.Comment{
			ID:        domain.NewID(),
			Text:      text,
			AuthorID:  actor.UserID,
			CreatedAt: now,
		}
		task.Comments = append(task.Comments, comment)
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		record("💬 Commented on \"%s\"", task.Title)

		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		v := names.Comment(comment)
		out = &v
		return nil
	})
	return out, err
}

// UpdateComment rewrites a comment's text. Only its author or an admin may edit it.
func (uc *UseCase) UpdateComment(ctx context.Context, actor domain.Actor, taskID, commentID, text string) (*view.CommentView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.Invalidf("comment text is required")
	}

	var out *view.CommentView
	err := uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		idx := task.CommentIndex(commentID)
		if idx < 0 {
			return domain.ErrCommentNotFound
		}
		comment := &task.Comments[idx]
		if !actor.IsAdmin() && comment.AuthorID != actor.UserID {
			return domain.ErrForbidden
		}

		now := uc.journal.Now()
		comment.Text = text
		comment.UpdatedAt = &now
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		record("✏️ Edited a comment on \"%s\"", task.Title)

		names, err := view.LoadNames(ctx, tx)
		if err != nil {
			return err
		}
		v := names.Comment(*comment)
		out = &v
		return nil
	})
	return out, err
}

// DeleteComment removes a comment. Admin only.
func (uc *UseCase) DeleteComment(ctx context.Context, actor domain.Actor, taskID, commentID string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return uc.journal.Update(ctx, actor, func(tx repository.Tx, record usecase.Record) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		idx := task.CommentIndex(commentID)
		if idx < 0 {
			return domain.ErrCommentNotFound
		}
		task.Comments = append(task.Comments[:idx:idx], task.Comments[idx+1:]...)
		task.UpdatedAt = uc.journal.Now()
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}
		record("🗑️ Deleted a comment on \"%s\"", task.Title)
		return nil
	})
}
