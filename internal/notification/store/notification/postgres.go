package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"triex/internal/notification/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// Postgres persists notifications and push subscriptions in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const notificationColumns = `id, passenger_id, trip_id, type, title, message, is_read, created_at`

func (s *Postgres) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		n.ID.String(), n.PassengerID.String(), nullTrip(n.TripID),
		string(n.Type), n.Title, n.Message, n.IsRead, n.CreatedAt)
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
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, notificationID id.NotificationID) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	n, err := scanNotification(s.db.QueryRowContext(ctx, query, notificationID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find notification: %w", err)
	}
	return n, nil
}

func (s *Postgres) ListByPassenger(ctx context.Context, passengerID id.PassengerID, limit int) ([]*models.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE passenger_id = $1
		ORDER BY created_at DESC
	`
	args := []any{passengerID.String()}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (s *Postgres) CountUnread(ctx context.Context, passengerID id.PassengerID) (int, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE passenger_id = $1 AND NOT is_read`
	var count int
	if err := s.db.QueryRowContext(ctx, query, passengerID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (s *Postgres) MarkRead(ctx context.Context, notificationID id.NotificationID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE id = $1`
	res, err := s.db.ExecContext(ctx, query, notificationID.String())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) MarkAllRead(ctx context.Context, passengerID id.PassengerID) error {
	query := `UPDATE notifications SET is_read = TRUE WHERE passenger_id = $1 AND NOT is_read`
	if _, err := s.db.ExecContext(ctx, query, passengerID.String()); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

const subscriptionColumns = `id, user_id, endpoint, p256dh, auth, device, created_at, updated_at`

// UpsertSubscription inserts a subscription; on a (user, endpoint) collision
// it refreshes the keys and device, keeping the original row. The stored ID
// and creation time are written back into sub.
func (s *Postgres) UpsertSubscription(ctx context.Context, sub *models.PushSubscription) error {
	query := `
		INSERT INTO push_subscriptions (` + subscriptionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, endpoint) DO UPDATE SET
			p256dh = EXCLUDED.p256dh,
			auth = EXCLUDED.auth,
			device = EXCLUDED.device,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`
	var rawID string
	err := s.db.QueryRowContext(ctx, query,
		sub.ID.String(), sub.UserID.String(), sub.Endpoint,
		sub.P256dh, sub.Auth, sub.Device, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&rawID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	if sub.ID, err = id.ParseSubscriptionID(rawID); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *Postgres) FindSubscription(ctx context.Context, subscriptionID id.SubscriptionID) (*models.PushSubscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM push_subscriptions WHERE id = $1`
	sub, err := scanSubscription(s.db.QueryRowContext(ctx, query, subscriptionID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

func (s *Postgres) ListSubscriptions(ctx context.Context, userID id.UserID) ([]*models.PushSubscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM push_subscriptions
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var list []*models.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

func (s *Postgres) DeleteSubscription(ctx context.Context, subscriptionID id.SubscriptionID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = $1`, subscriptionID.String())
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanNotification(row rowScanner) (*models.Notification, error) {
	var (
		n              models.Notification
		rawID, rawPax  string
		rawTrip        sql.NullString
		notificationTy string
	)
	err := row.Scan(&rawID, &rawPax, &rawTrip, &notificationTy, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if n.ID, err = id.ParseNotificationID(rawID); err != nil {
		return nil, err
	}
	if n.PassengerID, err = id.ParsePassengerID(rawPax); err != nil {
		return nil, err
	}
	if rawTrip.Valid {
		if n.TripID, err = id.ParseTripID(rawTrip.String); err != nil {
			return nil, err
		}
	}
	n.Type = models.Type(notificationTy)
	return &n, nil
}

func scanSubscription(row rowScanner) (*models.PushSubscription, error) {
	var (
		sub            models.PushSubscription
		rawID, rawUser string
	)
	err := row.Scan(&rawID, &rawUser, &sub.Endpoint, &sub.P256dh, &sub.Auth,
		&sub.Device, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sub.ID, err = id.ParseSubscriptionID(rawID); err != nil {
		return nil, err
	}
	if sub.UserID, err = id.ParseUserID(rawUser); err != nil {
		return nil, err
	}
	return &sub, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullTrip(tripID id.TripID) sql.NullString {
	if tripID.IsNil() {
		return sql.NullString{}
	}
	return sql.NullString{String: tripID.String(), Valid: true}
}
