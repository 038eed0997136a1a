package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/teamboard/domain"
)

const teamColumns = `id, name, description, members, created_by, created_at, updated_at`

type teamRepository struct {
	q querier
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	row := r.q.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
	return scanTeam(row)
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.q.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	if team == nil || team.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO teams (id, name, description, members, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), COALESCE($7, NOW()))
	RETURNING created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		marshalList(team.Members),
		team.CreatedBy,
		nullTime(team.CreatedAt),
		nullTime(team.UpdatedAt),
	).Scan(&team.CreatedAt, &team.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	if team == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE teams
	SET name = $2,
		description = $3,
		members = $4,
		created_by = $5,
		updated_at = COALESCE($6, NOW())
	WHERE id = $1
	RETURNING updated_at
	`
	err := r.q.QueryRow(ctx, query,
		team.ID,
		team.Name,
		team.Description,
		marshalList(team.Members),
		team.CreatedBy,
		nullTime(team.UpdatedAt),
	).Scan(&team.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrTeamNotFound
	}
	return mapUniqueViolation(err)
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTeamNotFound
	}
	return nil
}

func (r *teamRepository) ReplaceAll(ctx context.Context, teams []domain.Team) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM teams`); err != nil {
		return err
	}
	for i := range teams {
		team := teams[i].Clone()
		if err := r.Create(ctx, &team); err != nil {
			return err
		}
	}
	return nil
}

func scanTeam(row scanner) (*domain.Team, error) {
	var (
		team       domain.Team
		membersRaw []byte
	)
	if err := row.Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&membersRaw,
		&team.CreatedBy,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeamNotFound
		}
		return nil, err
	}

	members, err := unmarshalList(membersRaw)
	if err != nil {
		return nil, domain.Corrupted("teams", err)
	}
	team.Members = members
	return &team, nil
}
