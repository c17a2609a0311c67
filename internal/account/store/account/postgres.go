package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/account/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists user accounts in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const userColumns = `id, email, full_name, role, created_by, updated_by,
	created_at, updated_at, archived_at`

func (s *Postgres) Create(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		u.ID.String(), u.Email, u.FullName, u.Role.String(),
		nullID(u.CreatedBy), nullID(u.UpdatedBy),
		u.CreatedAt, u.UpdatedAt, nullTime(u.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, userID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Postgres) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET email = $2, full_name = $3, role = $4, updated_by = $5,
		    updated_at = $6, archived_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		u.ID.String(), u.Email, u.FullName, u.Role.String(),
		nullID(u.UpdatedBy), u.UpdatedAt, nullTime(u.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, userID id.UserID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var (
		where []string
		args  []any
	)
	switch filter.Scope {
	case models.ScopeDisabled:
		where = append(where, "archived_at IS NOT NULL")
	case models.ScopeAll:
	default:
		where = append(where, "archived_at IS NULL")
	}
	if filter.Role != "" {
		args = append(args, filter.Role.String())
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where, "(full_name ILIKE "+n+" OR email ILIKE "+n+")")
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var list []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u          models.User
		rawID      string
		rawRole    string
		createdBy  sql.NullString
		updatedBy  sql.NullString
		archivedAt sql.NullTime
	)
	err := row.Scan(&rawID, &u.Email, &u.FullName, &rawRole,
		&createdBy, &updatedBy, &u.CreatedAt, &u.UpdatedAt, &archivedAt)
	if err != nil {
		return nil, err
	}
	if u.ID, err = id.ParseUserID(rawID); err != nil {
		return nil, err
	}
	if u.Role, err = id.ParseRole(rawRole); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		if u.CreatedBy, err = id.ParseUserID(createdBy.String); err != nil {
			return nil, err
		}
	}
	if updatedBy.Valid {
		if u.UpdatedBy, err = id.ParseUserID(updatedBy.String); err != nil {
			return nil, err
		}
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		u.ArchivedAt = &t
	}
	return &u, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func nullID(userID id.UserID) sql.NullString {
	if userID.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: userID.String(), Valid: true}
}
