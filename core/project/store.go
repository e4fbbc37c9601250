package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("project not found")

func Create(ctx context.Context, db sqlx.ExtContext, prj Project) error {
	const q = `
	INSERT INTO projects (project_id, user_id, name, description, status, created_at, updated_at)
	VALUES (:project_id, :user_id, :name, :description, :status, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prj); err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Project, error) {
	const q = `SELECT * FROM projects WHERE project_id = $1`

	var prj Project
	if err := sqlx.GetContext(ctx, db, &prj, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Project{}, ErrNotFound
		}
		return Project{}, fmt.Errorf("selecting project[%s]: %w", id, err)
	}

	return prj, nil
}

func FetchByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Project, error) {
	const q = `SELECT * FROM projects WHERE user_id = $1 ORDER BY created_at DESC`

	prjs := []Project{}
	if err := sqlx.SelectContext(ctx, db, &prjs, q, userID); err != nil {
		return nil, fmt.Errorf("selecting projects of user[%s]: %w", userID, err)
	}

	return prjs, nil
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) ([]Project, error) {
	const q = `SELECT * FROM projects ORDER BY created_at DESC`

	prjs := []Project{}
	if err := sqlx.SelectContext(ctx, db, &prjs, q); err != nil {
		return nil, fmt.Errorf("selecting projects: %w", err)
	}

	return prjs, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, prj Project) error {
	const q = `
	UPDATE projects SET
		name = :name,
		description = :description,
		status = :status,
		updated_at = :updated_at,
		version = version + 1
	WHERE project_id = :project_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, prj); err != nil {
		return fmt.Errorf("updating project[%s]: %w", prj.ID, err)
	}

	return nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM projects WHERE project_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting project[%s]: %w", id, err)
	}

	return nil
}

// FetchStats aggregates the user's projects for the dashboard in one query.
func FetchStats(ctx context.Context, db sqlx.ExtContext, userID string) (Stats, error) {
	const q = `
	SELECT
		COUNT(*) AS total,
		COUNT(*) FILTER (WHERE status = 'active') AS active,
		COUNT(*) FILTER (WHERE status = 'paused') AS paused,
		COUNT(*) FILTER (WHERE status = 'done') AS done
	FROM projects WHERE user_id = $1`

	var st Stats
	if err := sqlx.GetContext(ctx, db, &st, q, userID); err != nil {
		return Stats{}, fmt.Errorf("aggregating projects of user[%s]: %w", userID, err)
	}

	return st, nil
}
