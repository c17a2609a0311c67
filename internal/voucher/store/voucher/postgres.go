package voucher

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"triex/internal/voucher/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists voucher records in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const voucherColumns = `id, trip_id, passenger_id, voucher_type, title, provider_name,
	service_date, format, external_url, file_path, visibility, status, notes,
	created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, v *models.Voucher) error {
	query := `
		INSERT INTO vouchers (` + voucherColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID.String(), v.TripID.String(), nullPassenger(v.PassengerID),
		v.VoucherType, v.Title, v.ProviderName, nullTime(v.ServiceDate),
		string(v.Format), v.ExternalURL, v.FilePath,
		string(v.Visibility), string(v.Status), v.Notes,
		v.CreatedAt, v.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code.Name() {
			case "unique_violation":
				return sentinel.ErrConflict
			case "foreign_key_violation":
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("create voucher: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, voucherID id.VoucherID) (*models.Voucher, error) {
	query := `SELECT ` + voucherColumns + ` FROM vouchers WHERE id = $1`
	v, err := scanVoucher(s.db.QueryRowContext(ctx, query, voucherID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find voucher: %w", err)
	}
	return v, nil
}

func (s *Postgres) Update(ctx context.Context, v *models.Voucher) error {
	query := `
		UPDATE vouchers
		SET passenger_id = $2, voucher_type = $3, title = $4, provider_name = $5,
		    service_date = $6, format = $7, external_url = $8, file_path = $9,
		    visibility = $10, status = $11, notes = $12, updated_at = $13
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		v.ID.String(), nullPassenger(v.PassengerID), v.VoucherType, v.Title,
		v.ProviderName, nullTime(v.ServiceDate), string(v.Format),
		v.ExternalURL, v.FilePath, string(v.Visibility), string(v.Status),
		v.Notes, v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update voucher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update voucher: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByTrip(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error) {
	query := `
		SELECT ` + voucherColumns + `
		FROM vouchers
		WHERE trip_id = $1
		ORDER BY service_date ASC NULLS LAST, created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tripID.String())
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}
	defer rows.Close()

	var list []*models.Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, fmt.Errorf("scan voucher: %w", err)
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func scanVoucher(row rowScanner) (*models.Voucher, error) {
	var (
		v                  models.Voucher
		rawID, rawTrip     string
		rawPassenger       sql.NullString
		serviceDate        sql.NullTime
		format, visibility string
		status             string
	)
	err := row.Scan(&rawID, &rawTrip, &rawPassenger, &v.VoucherType, &v.Title,
		&v.ProviderName, &serviceDate, &format, &v.ExternalURL, &v.FilePath,
		&visibility, &status, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if v.ID, err = id.ParseVoucherID(rawID); err != nil {
		return nil, err
	}
	if v.TripID, err = id.ParseTripID(rawTrip); err != nil {
		return nil, err
	}
	if rawPassenger.Valid {
		if v.PassengerID, err = id.ParsePassengerID(rawPassenger.String); err != nil {
			return nil, err
		}
	}
	v.Format = models.Format(format)
	v.Visibility = models.Visibility(visibility)
	v.Status = models.Status(status)
	if serviceDate.Valid {
		t := serviceDate.Time
		v.ServiceDate = &t
	}
	return &v, nil
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

func nullPassenger(passengerID id.PassengerID) sql.NullString {
	if passengerID.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: passengerID.String(), Valid: true}
}
