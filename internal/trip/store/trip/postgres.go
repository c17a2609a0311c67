package trip

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/trip/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

const tripColumns = `
	id, name, destination, internal_code, brand_sub, start_date, end_date,
	status_commercial, includes_text, excludes_text,
	coordinator_name, coordinator_phone, coordinator_email, banner_path,
	next_step_override_enabled, next_step_type_override, next_step_title_override,
	next_step_detail_override, next_step_cta_label_override, next_step_cta_route_override,
	created_by, updated_by, created_at, updated_at, archived_at`

// Postgres persists trips in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	_, err := s.db.ExecContext(ctx, query, tripArgs(trip)...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create trip: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, tripID id.TripID) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	trip, err := scanTrip(s.db.QueryRowContext(ctx, query, tripID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find trip: %w", err)
	}
	return trip, nil
}

func (s *Postgres) Update(ctx context.Context, trip *models.Trip) error {
	query := `
		UPDATE trips SET
			name = $2, destination = $3, internal_code = $4, brand_sub = $5,
			start_date = $6, end_date = $7, status_commercial = $8,
			includes_text = $9, excludes_text = $10,
			coordinator_name = $11, coordinator_phone = $12, coordinator_email = $13,
			banner_path = $14,
			next_step_override_enabled = $15, next_step_type_override = $16,
			next_step_title_override = $17, next_step_detail_override = $18,
			next_step_cta_label_override = $19, next_step_cta_route_override = $20,
			updated_by = $21, updated_at = $22, archived_at = $23
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		trip.ID.String(),
		trip.Name,
		trip.Destination,
		trip.InternalCode,
		trip.BrandSub,
		nullTime(trip.StartDate),
		nullTime(trip.EndDate),
		trip.StatusCommercial.String(),
		trip.IncludesText,
		trip.ExcludesText,
		trip.Coordinator.Name,
		trip.Coordinator.Phone,
		trip.Coordinator.Email,
		trip.BannerPath,
		trip.NextStep.Enabled,
		string(trip.NextStep.Type),
		trip.NextStep.Title,
		trip.NextStep.Detail,
		trip.NextStep.CTALabel,
		trip.NextStep.CTARoute,
		nullID(trip.UpdatedBy),
		trip.UpdatedAt,
		nullTime(trip.ArchivedAt),
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) Delete(ctx context.Context, tripID id.TripID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, tripID.String())
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) List(ctx context.Context, filter models.Filter) ([]*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE 1 = 1`
	var args []any
	switch filter.Scope {
	case models.ScopeArchived:
		query += ` AND archived_at IS NOT NULL`
	case models.ScopeAll:
	default:
		query += ` AND archived_at IS NULL`
	}
	if filter.Commercial != "" {
		args = append(args, filter.Commercial.String())
		query += fmt.Sprintf(` AND status_commercial = $%d`, len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(` AND (name ILIKE $%d OR destination ILIKE $%d)`, len(args), len(args))
	}
	query += ` ORDER BY start_date ASC NULLS LAST, created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (s *Postgres) ListByPassenger(ctx context.Context, passengerID id.PassengerID) ([]*models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN trip_passengers tp ON tp.trip_id = t.id
		WHERE tp.passenger_id = $1 AND t.archived_at IS NULL
		ORDER BY t.start_date ASC NULLS LAST, t.created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, passengerID.String())
	if err != nil {
		return nil, fmt.Errorf("list trips by passenger: %w", err)
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (s *Postgres) AssignPassenger(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) error {
	query := `
		INSERT INTO trip_passengers (trip_id, passenger_id)
		VALUES ($1, $2)
		ON CONFLICT (trip_id, passenger_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, tripID.String(), passengerID.String())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("assign passenger: %w", err)
	}
	return nil
}

func (s *Postgres) UnassignPassenger(ctx context.Context, tripID id.TripID, passengerID id.PassengerID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM trip_passengers WHERE trip_id = $1 AND passenger_id = $2`,
		tripID.String(), passengerID.String())
	if err != nil {
		return fmt.Errorf("unassign passenger: %w", err)
	}
	return requireRow(res)
}

func (s *Postgres) ListPassengerIDs(ctx context.Context, tripID id.TripID) ([]id.PassengerID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT passenger_id FROM trip_passengers WHERE trip_id = $1 ORDER BY passenger_id`,
		tripID.String())
	if err != nil {
		return nil, fmt.Errorf("list trip passengers: %w", err)
	}
	defer rows.Close()

	var ids []id.PassengerID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan trip passenger: %w", err)
		}
		passengerID, err := id.ParsePassengerID(raw)
		if err != nil {
			return nil, fmt.Errorf("scan trip passenger: %w", err)
		}
		ids = append(ids, passengerID)
	}
	return ids, rows.Err()
}

func tripArgs(trip *models.Trip) []any {
	return []any{
		trip.ID.String(),
		trip.Name,
		trip.Destination,
		trip.InternalCode,
		trip.BrandSub,
		nullTime(trip.StartDate),
		nullTime(trip.EndDate),
		trip.StatusCommercial.String(),
		trip.IncludesText,
		trip.ExcludesText,
		trip.Coordinator.Name,
		trip.Coordinator.Phone,
		trip.Coordinator.Email,
		trip.BannerPath,
		trip.NextStep.Enabled,
		string(trip.NextStep.Type),
		trip.NextStep.Title,
		trip.NextStep.Detail,
		trip.NextStep.CTALabel,
		trip.NextStep.CTARoute,
		nullID(trip.CreatedBy),
		nullID(trip.UpdatedBy),
		trip.CreatedAt,
		trip.UpdatedAt,
		nullTime(trip.ArchivedAt),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*models.Trip, error) {
	var (
		trip                 models.Trip
		rawID                string
		startDate, endDate   sql.NullTime
		commercial, nextStep string
		createdBy, updatedBy sql.NullString
		archivedAt           sql.NullTime
	)
	err := row.Scan(
		&rawID, &trip.Name, &trip.Destination, &trip.InternalCode, &trip.BrandSub,
		&startDate, &endDate, &commercial, &trip.IncludesText, &trip.ExcludesText,
		&trip.Coordinator.Name, &trip.Coordinator.Phone, &trip.Coordinator.Email,
		&trip.BannerPath,
		&trip.NextStep.Enabled, &nextStep, &trip.NextStep.Title, &trip.NextStep.Detail,
		&trip.NextStep.CTALabel, &trip.NextStep.CTARoute,
		&createdBy, &updatedBy, &trip.CreatedAt, &trip.UpdatedAt, &archivedAt,
	)
	if err != nil {
		return nil, err
	}
	trip.ID, err = id.ParseTripID(rawID)
	if err != nil {
		return nil, err
	}
	trip.StatusCommercial = models.CommercialStatus(commercial)
	trip.NextStep.Type = models.NextStepType(nextStep)
	if startDate.Valid {
		t := startDate.Time
		trip.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		trip.EndDate = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		trip.ArchivedAt = &t
	}
	if createdBy.Valid {
		trip.CreatedBy, err = id.ParseUserID(createdBy.String)
		if err != nil {
			return nil, err
		}
	}
	if updatedBy.Valid {
		trip.UpdatedBy, err = id.ParseUserID(updatedBy.String)
		if err != nil {
			return nil, err
		}
	}
	return &trip, nil
}

func collectTrips(rows *sql.Rows) ([]*models.Trip, error) {
	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
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
