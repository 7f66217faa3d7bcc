package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/radieske/sports-odds-gateway/internal/odds-service/service"
)

// errorLimit corta mensagens de erro longas antes de gravar
const errorLimit = 1000

// RefreshLog grava cada tentativa de atualização junto ao fornecedor.
// É uma auditoria operacional, não um histórico de odds.
type RefreshLog struct {
	DB *sql.DB
}

// RefreshRow é uma linha de odds_refresh_log
type RefreshRow struct {
	ID         string    `json:"id"`
	SportKey   string    `json:"sportKey"`
	Outcome    string    `json:"outcome"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
	GameCount  int       `json:"gameCount"`
	DurationMS int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

const schema = `
	CREATE TABLE IF NOT EXISTS odds_refresh_log (
		id          UUID PRIMARY KEY,
		sport_key   TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		http_status INT,
		game_count  INT NOT NULL DEFAULT 0,
		duration_ms BIGINT NOT NULL,
		error       TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_odds_refresh_log_sport_created
		ON odds_refresh_log (sport_key, created_at DESC);
`

// EnsureSchema cria a tabela se ainda não existir
func (r *RefreshLog) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

// Insert grava uma tentativa
func (r *RefreshLog) Insert(ctx context.Context, a service.Attempt) error {
	const q = `
		INSERT INTO odds_refresh_log (id, sport_key, outcome, http_status, game_count, duration_ms, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.DB.ExecContext(ctx, q,
		a.ID,
		a.Sport,
		a.Outcome,
		nullInt(a.HTTPStatus),
		a.GameCount,
		a.Duration.Milliseconds(),
		nullString(errorText(a.Err)),
		a.At.UTC(),
	)
	return err
}

// Recent lista as últimas tentativas de um esporte, mais recentes primeiro
func (r *RefreshLog) Recent(ctx context.Context, sport string, limit int) ([]RefreshRow, error) {
	const q = `
		SELECT id, sport_key, outcome, http_status, game_count, duration_ms, error, created_at
		FROM odds_refresh_log
		WHERE sport_key = $1
		ORDER BY created_at DESC
		LIMIT $2;
	`
	rows, err := r.DB.QueryContext(ctx, q, sport, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RefreshRow{}
	for rows.Next() {
		var (
			row    RefreshRow
			status sql.NullInt64
			msg    sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.SportKey, &row.Outcome, &status, &row.GameCount, &row.DurationMS, &msg, &row.CreatedAt); err != nil {
			return nil, err
		}
		row.HTTPStatus = int(status.Int64)
		row.Error = msg.String
		out = append(out, row)
	}
	return out, rows.Err()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	s := err.Error()
	if len(s) > errorLimit {
		s = s[:errorLimit]
	}
	return s
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
