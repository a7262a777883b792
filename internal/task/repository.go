package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

var (
	ErrNotFound      = errors.New("task not found")
	ErrDuplicateName = errors.New("task name already registered")
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT id, name, description, created_at, dead_line, status, is_alive, created_by
		FROM tasks
		ORDER BY name ASC
	`)
}

func (r *Repository) ListByCreator(ctx context.Context, createdBy string) ([]Task, error) {
	return r.queryTasks(ctx, `
		SELECT id, name, description, created_at, dead_line, status, is_alive, created_by
		FROM tasks
		WHERE created_by = $1
		ORDER BY name ASC
	`, createdBy)
}

func (r *Repository) queryTasks(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.DeadLine, &t.Status, &t.IsAlive, &t.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return tasks, nil
}

func (r *Repository) Get(ctx context.Context, id string) (Task, error) {
	var t Task
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, dead_line, status, is_alive, created_by
		FROM tasks
		WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.DeadLine, &t.Status, &t.IsAlive, &t.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("query task by id: %w", err)
	}

	return t, nil
}

func (r *Repository) Create(ctx context.Context, t Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, created_at, dead_line, status, is_alive, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Name, t.Description, t.CreatedAt, t.DeadLine, t.Status, t.IsAlive, t.CreatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateName
		}
		return fmt.Errorf("insert task: %w", err)
	}

	return nil
}

func (r *Repository) Update(ctx context.Context, id string, t Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $2, description = $3, created_at = $4, dead_line = $5, status = $6, is_alive = $7, created_by = $8
		WHERE id = $1
	`, id, t.Name, t.Description, t.CreatedAt, t.DeadLine, t.Status, t.IsAlive, t.CreatedBy)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateName
		}
		return fmt.Errorf("update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *Repository) SetAlive(ctx context.Context, id string, alive bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET is_alive = $2
		WHERE id = $1
	`, id, alive)
	if err != nil {
		return fmt.Errorf("update task is_alive: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
