package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/oselz/ai-gateway/internal/store"
	"github.com/oselz/ai-gateway/internal/store/model"
)

// DB defines the interface for database operations (satisfied by *sqlx.DB and *sqlx.Tx)
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository
type SqliteRepository struct {
	db       *sqlx.DB
	executor DB
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{executor: r.executor}
}

type requestRepo struct {
	executor DB
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	query := `
		INSERT INTO request_logs (
			id, endpoint, provider_id, model, stream,
			input_chars, input_tokens, output_tokens,
			status_code, latency_ms, created_at
		) VALUES (
			:id, :endpoint, :provider_id, :model, :stream,
			:input_chars, :input_tokens, :output_tokens,
			:status_code, :latency_ms, :created_at
		)`

	if _, err := r.executor.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("failed to insert request log: %w", err)
	}
	return nil
}

func (r *requestRepo) GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var logs []model.RequestLog
	query := `SELECT * FROM request_logs ORDER BY created_at DESC LIMIT ?`
	if err := r.executor.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to query recent logs: %w", err)
	}
	return logs, nil
}

func (r *requestRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at)            AS day,
			COUNT(*)                    AS requests,
			COALESCE(SUM(input_tokens), 0)  AS input_tokens,
			COALESCE(SUM(output_tokens), 0) AS output_tokens,
			COALESCE(AVG(latency_ms), 0)    AS avg_latency_ms
		FROM request_logs
		WHERE created_at >= DATETIME('now', ?)
		GROUP BY DATE(created_at)
		ORDER BY day DESC`

	offset := fmt.Sprintf("-%d days", days)
	if err := r.executor.SelectContext(ctx, &stats, query, offset); err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	return stats, nil
}
