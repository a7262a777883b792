package audit

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Append(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO request_logs (route, service, method, status, response_time_ms, logged_at, username)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.Route, rec.Service, rec.Method, rec.Status, rec.Duration.Milliseconds(), rec.LoggedAt.UTC(), rec.User)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}

	return nil
}

func (r *Repository) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `
		SELECT id, route, service, method, status, response_time_ms, logged_at, username
		FROM request_logs
		WHERE 1=1`
	args := make([]any, 0, 5)

	if filter.User != "" {
		args = append(args, filter.User)
		query += fmt.Sprintf(" AND username = $%d", len(args))
	}
	if filter.Route != "" {
		args = append(args, filter.Route)
		query += fmt.Sprintf(" AND route = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Start != nil && filter.End != nil {
		args = append(args, filter.Start.UTC())
		query += fmt.Sprintf(" AND logged_at >= $%d", len(args))
		args = append(args, filter.End.UTC())
		query += fmt.Sprintf(" AND logged_at <= $%d", len(args))
	}

	query += " ORDER BY logged_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query request logs: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			id         int64
			durationMS int64
			loggedAt   time.Time
			e          Entry
		)
		if err := rows.Scan(&id, &e.Route, &e.Service, &e.Method, &e.Status, &durationMS, &loggedAt, &e.User); err != nil {
			return nil, fmt.Errorf("scan request log: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		e.ResponseTime = math.Round(float64(durationMS)/10) / 100
		e.Timestamp = loggedAt.UTC().Format(timestampLayout)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate request logs: %w", err)
	}

	return entries, nil
}

// CleanupOldEntries prunes logs older than the retention window in bounded
// batches, so scheduled invocations stay cheap.
func (r *Repository) CleanupOldEntries(ctx context.Context, retention time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}

	cutoff := time.Now().UTC().Add(-retention)

	res, err := r.db.ExecContext(ctx, `
		WITH stale AS (
			SELECT id
			FROM request_logs
			WHERE logged_at < $1
			ORDER BY logged_at ASC
			LIMIT $2
		)
		DELETE FROM request_logs t
		USING stale
		WHERE t.id = stale.id
	`, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete stale request logs: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("stale request logs rows affected: %w", err)
	}

	return affected, nil
}
