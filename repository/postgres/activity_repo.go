package postgres

import (
	"context"

	"github.com/fastygo/teamboard/domain"
)

type activityRepository struct {
	q querier
}

func (r *activityRepository) List(ctx context.Context) ([]domain.ActivityEntry, error) {
	const query = `
	SELECT id, user_id, role, message, created_at
	FROM activity_log
	ORDER BY seq DESC
	`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var (
			entry domain.ActivityEntry
			role  string
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &role, &entry.Message, &entry.Timestamp); err != nil {
			return nil, err
		}
		entry.Role = domain.Role(role)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *activityRepository) Append(ctx context.Context, entry domain.ActivityEntry, limit int) error {
	if limit <= 0 {
		limit = domain.ActivityLogLimit
	}
	if err := r.insert(ctx, entry); err != nil {
		return err
	}

	const trim = `
	DELETE FROM activity_log
	WHERE seq NOT IN (SELECT seq FROM activity_log ORDER BY seq DESC LIMIT $1)
	`
	_, err := r.q.Exec(ctx, trim, limit)
	return err
}

func (r *activityRepository) Clear(ctx context.Context) error {
	_, err := r.q.Exec(ctx, `DELETE FROM activity_log`)
	return err
}

// ReplaceAll stores entries given newest first, inserting oldest first so seq keeps the order.
func (r *activityRepository) ReplaceAll(ctx context.Context, entries []domain.ActivityEntry) error {
	if err := r.Clear(ctx); err != nil {
		return err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if err := r.insert(ctx, entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *activityRepository) insert(ctx context.Context, entry domain.ActivityEntry) error {
	const query = `
	INSERT INTO activity_log (id, user_id, role, message, created_at)
	VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
	`
	_, err := r.q.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Role),
		entry.Message,
		nullTime(entry.Timestamp),
	)
	return err
}
