package passenger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/passenger/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists passenger records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const passengerColumns = `id, profile_id, first_name, last_name, email, phone, birth_date,
	document_type, document_number, is_recurrent, notes,
	created_by, updated_by, created_at, updated_at, archived_at`

func (s *Postgres) Create(ctx context.Context, p *models.Passenger) error {
	query := `
		INSERT INTO passengers (` + passengerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID.String(), nullID(p.ProfileID), p.FirstName, p.LastName, p.Email,
		p.Phone, nullTime(p.BirthDate), p.DocumentType, p.DocumentNumber,
		p.IsRecurrent, p.Notes, nullID(p.CreatedBy), nullID(p.UpdatedBy),
		p.CreatedAt, p.UpdatedAt, nullTime(p.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create passenger: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, passengerID id.PassengerID) (*models.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE id = $1`
	p, err := scanPassenger(s.db.QueryRowContext(ctx, query, passengerID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find passenger: %w", err)
	}
	return p, nil
}

func (s *Postgres) FindByProfile(ctx context.Context, profileID id.UserID) (*models.Passenger, error) {
	query := `
		SELECT ` + passengerColumns + `
		FROM passengers
		WHERE profile_id = $1 AND archived_at IS NULL
	`
	p, err := scanPassenger(s.db.QueryRowContext(ctx, query, profileID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find passenger by profile: %w", err)
	}
	return p, nil
}

func (s *Postgres) Update(ctx context.Context, p *models.Passenger) error {
	query := `
		UPDATE passengers
		SET profile_id = $2, first_name = $3, last_name = $4, email = $5,
		    phone = $6, birth_date = $7, document_type = $8, document_number = $9,
		    is_recurrent = $10, notes = $11, updated_by = $12, updated_at = $13,
		    archived_at = $14
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID.String(), nullID(p.ProfileID), p.FirstName, p.LastName, p.Email,
		p.Phone, nullTime(p.BirthDate), p.DocumentType, p.DocumentNumber,
		p.IsRecurrent, p.Notes, nullID(p.UpdatedBy), p.UpdatedAt,
		nullTime(p.ArchivedAt))
	if err != nil {
		return fmt.Errorf("update passenger: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update passenger: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers`
	var (
		where []string
		args  []any
	)
	switch filter.Scope {
	case models.ScopeArchived:
		where = append(where, "archived_at IS NOT NULL")
	case models.ScopeAll:
	default:
		where = append(where, "archived_at IS NULL")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := fmt.Sprintf("$%d", len(args))
		where = append(where,
			"(first_name ILIKE "+n+" OR last_name ILIKE "+n+" OR email ILIKE "+n+" OR document_number ILIKE "+n+")")
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY last_name ASC, first_name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list passengers: %w", err)
	}
	defer rows.Close()

	var list []*models.Passenger
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPassenger(row rowScanner) (*models.Passenger, error) {
	var (
		p          models.Passenger
		rawID      string
		profileID  sql.NullString
		birthDate  sql.NullTime
		createdBy  sql.NullString
		updatedBy  sql.NullString
		archivedAt sql.NullTime
	)
	err := row.Scan(&rawID, &profileID, &p.FirstName, &p.LastName, &p.Email,
		&p.Phone, &birthDate, &p.DocumentType, &p.DocumentNumber,
		&p.IsRecurrent, &p.Notes, &createdBy, &updatedBy,
		&p.CreatedAt, &p.UpdatedAt, &archivedAt)
	if err != nil {
		return nil, err
	}
	if p.ID, err = id.ParsePassengerID(rawID); err != nil {
		return nil, err
	}
	if profileID.Valid {
		if p.ProfileID, err = id.ParseUserID(profileID.String); err != nil {
			return nil, err
		}
	}
	if createdBy.Valid {
		if p.CreatedBy, err = id.ParseUserID(createdBy.String); err != nil {
			return nil, err
		}
	}
	if updatedBy.Valid {
		if p.UpdatedBy, err = id.ParseUserID(updatedBy.String); err != nil {
			return nil, err
		}
	}
	if birthDate.Valid {
		t := birthDate.Time
		p.BirthDate = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		p.ArchivedAt = &t
	}
	return &p, nil
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
