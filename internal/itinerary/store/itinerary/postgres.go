package itinerary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/itinerary/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists itinerary days and items in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const dayColumns = `id, trip_id, day_number, date, title, sort_index, version, created_at, updated_at, archived_at`

func (s *Postgres) CreateDay(ctx context.Context, day *models.Day) error {
	query := `
		INSERT INTO trip_itinerary_days (` + dayColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		day.ID.String(), day.TripID.String(), day.DayNumber, nullTime(day.Date),
		nullString(day.Title), day.SortIndex, day.Version,
		day.CreatedAt, day.UpdatedAt, nullTime(day.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create itinerary day: %w", err)
	}
	return nil
}

func (s *Postgres) FindDay(ctx context.Context, dayID id.DayID) (*models.Day, error) {
	query := `SELECT ` + dayColumns + ` FROM trip_itinerary_days WHERE id = $1`
	day, err := scanDay(s.db.QueryRowContext(ctx, query, dayID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find itinerary day: %w", err)
	}
	return day, nil
}

func (s *Postgres) ListDays(ctx context.Context, tripID id.TripID) ([]*models.Day, error) {
	query := `
		SELECT ` + dayColumns + `
		FROM trip_itinerary_days
		WHERE trip_id = $1 AND archived_at IS NULL
		ORDER BY sort_index ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("list itinerary days: %w", err)
	}
	defer rows.Close()

	var days []*models.Day
	for rows.Next() {
		day, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan itinerary day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func (s *Postgres) UpdateDay(ctx context.Context, day *models.Day) error {
	query := `
		UPDATE trip_itinerary_days
		SET date = $2, title = $3, updated_at = $4, archived_at = $5
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		day.ID.String(), nullTime(day.Date), nullString(day.Title),
		day.UpdatedAt, nullTime(day.ArchivedAt))
	if err != nil {
		return fmt.Errorf("update itinerary day: %w", err)
	}
	return requireRow(res)
}

// ReorderDays rewrites the batch of day positions in one transaction. Each
// row is guarded by the version the caller loaded; zero affected rows means
// another session won the race and the whole batch rolls back.
func (s *Postgres) ReorderDays(ctx context.Context, updates []models.DaySort) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin day reorder: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE trip_itinerary_days
		SET sort_index = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3 AND archived_at IS NULL
	`
	for _, update := range updates {
		res, err := tx.ExecContext(ctx, query,
			update.DayID.String(), update.SortIndex, update.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("update day sort: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update day sort: %w", err)
		}
		if affected == 0 {
			return sentinel.ErrVersionMismatch
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit day reorder: %w", err)
	}
	return nil
}

const itemColumns = `id, trip_id, day_id, time_of_day, title, description, location_name,
	location_detail, instructions_url, instructions_text, sort_index, version,
	created_at, updated_at, archived_at`

func (s *Postgres) CreateItem(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO trip_itinerary_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		item.ID.String(), item.TripID.String(), item.DayID.String(),
		nullString(item.TimeOfDay), item.Title, nullString(item.Description),
		nullString(item.LocationName), nullString(item.LocationDetail),
		nullString(item.InstructionsURL), nullString(item.InstructionsText),
		item.SortIndex, item.Version, item.CreatedAt, item.UpdatedAt, nullTime(item.ArchivedAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create itinerary item: %w", err)
	}
	return nil
}

func (s *Postgres) FindItem(ctx context.Context, itemID id.ItemID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM trip_itinerary_items WHERE id = $1`
	item, err := scanItem(s.db.QueryRowContext(ctx, query, itemID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find itinerary item: %w", err)
	}
	return item, nil
}

func (s *Postgres) ListItems(ctx context.Context, dayID id.DayID) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM trip_itinerary_items
		WHERE day_id = $1 AND archived_at IS NULL
		ORDER BY sort_index ASC
	`
	rows, err := s.db.QueryContext(ctx, query, dayID.String())
	if err != nil {
		return nil, fmt.Errorf("list itinerary items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan itinerary item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Postgres) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE trip_itinerary_items
		SET time_of_day = $2, title = $3, description = $4, location_name = $5,
		    location_detail = $6, instructions_url = $7, instructions_text = $8,
		    updated_at = $9, archived_at = $10
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		item.ID.String(), nullString(item.TimeOfDay), item.Title,
		nullString(item.Description), nullString(item.LocationName),
		nullString(item.LocationDetail), nullString(item.InstructionsURL),
		nullString(item.InstructionsText), item.UpdatedAt, nullTime(item.ArchivedAt))
	if err != nil {
		return fmt.Errorf("update itinerary item: %w", err)
	}
	return requireRow(res)
}

// ReorderItems is the item counterpart of ReorderDays.
func (s *Postgres) ReorderItems(ctx context.Context, updates []models.ItemSort) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item reorder: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE trip_itinerary_items
		SET sort_index = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3 AND archived_at IS NULL
	`
	for _, update := range updates {
		res, err := tx.ExecContext(ctx, query,
			update.ItemID.String(), update.SortIndex, update.ExpectedVersion)
		if err != nil {
			return fmt.Errorf("update item sort: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update item sort: %w", err)
		}
		if affected == 0 {
			return sentinel.ErrVersionMismatch
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item reorder: %w", err)
	}
	return nil
}

func scanDay(row rowScanner) (*models.Day, error) {
	var (
		day            models.Day
		rawID, rawTrip string
		date           sql.NullTime
		title          sql.NullString
		archivedAt     sql.NullTime
	)
	err := row.Scan(&rawID, &rawTrip, &day.DayNumber, &date, &title,
		&day.SortIndex, &day.Version, &day.CreatedAt, &day.UpdatedAt, &archivedAt)
	if err != nil {
		return nil, err
	}
	if day.ID, err = id.ParseDayID(rawID); err != nil {
		return nil, err
	}
	if day.TripID, err = id.ParseTripID(rawTrip); err != nil {
		return nil, err
	}
	day.Title = title.String
	if date.Valid {
		t := date.Time
		day.Date = &t
	}
	if archivedAt.Valid {
		t := archivedAt.Time
		day.ArchivedAt = &t
	}
	return &day, nil
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item                   models.Item
		rawID, rawTrip, rawDay string
		timeOfDay, description sql.NullString
		locName, locDetail     sql.NullString
		instrURL, instrText    sql.NullString
		archivedAt             sql.NullTime
	)
	err := row.Scan(&rawID, &rawTrip, &rawDay, &timeOfDay, &item.Title, &description,
		&locName, &locDetail, &instrURL, &instrText,
		&item.SortIndex, &item.Version, &item.CreatedAt, &item.UpdatedAt, &archivedAt)
	if err != nil {
		return nil, err
	}
	if item.ID, err = id.ParseItemID(rawID); err != nil {
		return nil, err
	}
	if item.TripID, err = id.ParseTripID(rawTrip); err != nil {
		return nil, err
	}
	if item.DayID, err = id.ParseDayID(rawDay); err != nil {
		return nil, err
	}
	item.TimeOfDay = timeOfDay.String
	item.Description = description.String
	item.LocationName = locName.String
	item.LocationDetail = locDetail.String
	item.InstructionsURL = instrURL.String
	item.InstructionsText = instrText.String
	if archivedAt.Valid {
		t := archivedAt.Time
		item.ArchivedAt = &t
	}
	return &item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
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

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
