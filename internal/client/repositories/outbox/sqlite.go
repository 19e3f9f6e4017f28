package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roamsync/roamsync/internal/client/models"
	"github.com/roamsync/roamsync/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Append(ctx context.Context, action *models.QueuedAction) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox (id, kind, endpoint, method, payload, enqueued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, action.ID, string(action.Kind), action.Endpoint, action.Method,
		string(action.Payload), action.EnqueuedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to enqueue action: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read enqueued seq: %w", err)
	}
	action.Seq = seq
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]models.QueuedAction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, id, kind, endpoint, method, payload, enqueued_at
		FROM outbox ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list outbox: %w", err)
	}
	defer rows.Close()

	var actions []models.QueuedAction
	for rows.Next() {
		var (
			a          models.QueuedAction
			kind       string
			payload    string
			enqueuedAt int64
		)
		if err := rows.Scan(&a.Seq, &a.ID, &kind, &a.Endpoint, &a.Method, &payload, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		a.Kind = models.ActionKind(kind)
		a.Payload = []byte(payload)
		a.EnqueuedAt = time.UnixMilli(enqueuedAt)
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

func (r *SQLiteRepository) Remove(ctx context.Context, seq int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM outbox WHERE seq = ?`, seq); err != nil {
		return fmt.Errorf("failed to remove action: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeadLetter(ctx context.Context, action *models.QueuedAction, reason string) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO dead_letters (action_id, kind, endpoint, method, payload, reason, enqueued_at, failed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, action.ID, string(action.Kind), action.Endpoint, action.Method,
			string(action.Payload), reason, action.EnqueuedAt.UnixMilli(), time.Now().UnixMilli())
		if err != nil {
			return fmt.Errorf("failed to record dead letter: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM outbox WHERE seq = ?`, action.Seq); err != nil {
			return fmt.Errorf("failed to remove dead-lettered action: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) DeadLetters(ctx context.Context) ([]models.DeadLetter, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, action_id, kind, endpoint, method, payload, reason, enqueued_at, failed_at
		FROM dead_letters ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dead letters: %w", err)
	}
	defer rows.Close()

	var letters []models.DeadLetter
	for rows.Next() {
		var (
			d          models.DeadLetter
			kind       string
			payload    string
			enqueuedAt int64
			failedAt   int64
		)
		if err := rows.Scan(&d.Seq, &d.ActionID, &kind, &d.Endpoint, &d.Method, &payload, &d.Reason, &enqueuedAt, &failedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dead letter: %w", err)
		}
		d.Kind = models.ActionKind(kind)
		d.Payload = []byte(payload)
		d.EnqueuedAt = time.UnixMilli(enqueuedAt)
		d.FailedAt = time.UnixMilli(failedAt)
		letters = append(letters, d)
	}
	return letters, rows.Err()
}

func (r *SQLiteRepository) Len(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outbox`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count outbox: %w", err)
	}
	return n, nil
}
