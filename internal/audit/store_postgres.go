package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "triex/pkg/domain"
)

// PostgresStore persists audit events in the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (occurred_at, user_id, action, entity, entity_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var userID sql.NullString
	if !event.UserID.IsNil() {
		userID = sql.NullString{String: event.UserID.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		event.OccurredAt, userID, event.Action, event.Entity, event.EntityID, event.Detail)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByEntity(ctx context.Context, entity, entityID string) ([]Event, error) {
	query := `
		SELECT occurred_at, user_id, action, entity, entity_id, detail
		FROM audit_events
		WHERE entity = $1 AND entity_id = $2
		ORDER BY occurred_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, query, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT occurred_at, user_id, action, entity, entity_id, detail
		FROM audit_events
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent audit events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			event  Event
			userID sql.NullString
		)
		if err := rows.Scan(&event.OccurredAt, &userID, &event.Action,
			&event.Entity, &event.EntityID, &event.Detail); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if userID.Valid {
			parsed, err := id.ParseUserID(userID.String)
			if err != nil {
				return nil, fmt.Errorf("scan audit event: %w", err)
			}
			event.UserID = parsed
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
