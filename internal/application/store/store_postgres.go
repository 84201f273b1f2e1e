package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agentportal/internal/application/models"
)

// uniqueViolation is the PostgreSQL error code raised by the unique index on
// the email column.
const uniqueViolation = "23505"

// PostgresStore persists application records in PostgreSQL. The draft payload
// is stored as JSONB alongside the indexed review columns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed record store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const recordColumns = `id, email, status, payload, idempotency_key, client_ip, user_agent, created_at, decided_at, reviewer, decision_reason`

func (s *PostgresStore) Insert(ctx context.Context, rec models.Record) (models.Record, error) {
	if rec.Email == "" {
		return models.Record{}, fmt.Errorf("record email is required")
	}

	payload, err := json.Marshal(rec.Draft)
	if err != nil {
		return models.Record{}, fmt.Errorf("marshal application payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO agent_applications (
			id, email, status, payload, idempotency_key,
			client_ip, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.Email, rec.Status, payload, rec.IdempotencyKey,
		rec.ClientIP, rec.UserAgent, rec.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			existing, findErr := s.FindByEmail(ctx, rec.Email)
			if findErr != nil {
				return models.Record{}, fmt.Errorf("resolve conflicting application: %w", findErr)
			}
			if existing.IdempotencyKey != "" && existing.IdempotencyKey == rec.IdempotencyKey {
				return existing, nil
			}
			return models.Record{}, ErrConflict
		}
		return models.Record{}, fmt.Errorf("insert application: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM agent_applications
		WHERE email = $1`, email)
	return scanRecord(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM agent_applications
		WHERE id = $1`, id)
	return scanRecord(row)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]models.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM agent_applications`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, d Decision) (models.Record, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agent_applications
		SET status = $2, decided_at = $3, reviewer = $4, decision_reason = $5
		WHERE id = $1`,
		id, d.Status, d.DecidedAt, d.Reviewer, d.Reason,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Record{}, fmt.Errorf("update application status: %w", err)
	}
	if affected == 0 {
		return models.Record{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var (
		rec       models.Record
		payload   []byte
		decidedAt sql.NullTime
		clientIP  sql.NullString
		userAgent sql.NullString
		reviewer  sql.NullString
		reason    sql.NullString
	)
	err := row.Scan(
		&rec.ID, &rec.Email, &rec.Status, &payload, &rec.IdempotencyKey,
		&clientIP, &userAgent, &rec.CreatedAt, &decidedAt, &reviewer, &reason,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Record{}, ErrNotFound
		}
		return models.Record{}, fmt.Errorf("scan application: %w", err)
	}
	if err := json.Unmarshal(payload, &rec.Draft); err != nil {
		return models.Record{}, fmt.Errorf("unmarshal application payload: %w", err)
	}
	if decidedAt.Valid {
		t := decidedAt.Time
		rec.DecidedAt = &t
	}
	rec.ClientIP = clientIP.String
	rec.UserAgent = userAgent.String
	rec.Reviewer = reviewer.String
	rec.DecisionReason = reason.String
	return rec, nil
}
