package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"triex/internal/audit"
	"triex/internal/voucher/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// Input carries the writable voucher fields.
type Input struct {
	PassengerID  id.PassengerID
	VoucherType  string
	Title        string
	ProviderName string
	ServiceDate  *time.Time
	Format       string
	ExternalURL  string
	FilePath     string
	Visibility   string
	Notes        string
}

// CreateVoucher attaches a voucher to a trip. Staff only. A named passenger
// must be assigned to the trip.
func (s *Service) CreateVoucher(ctx context.Context, tripID id.TripID, input Input) (*models.Voucher, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	voucher := &models.Voucher{
		ID:        id.NewVoucherID(),
		TripID:    tripID,
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := applyInput(voucher, input); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, voucher); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "trip or passenger not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create voucher")
	}
	s.emitAudit(ctx, "voucher.created", voucher.ID.String(), voucher.Title)
	return voucher, nil
}

// GetVoucher returns one voucher. Staff only; passengers read through
// MyVouchers.
func (s *Service) GetVoucher(ctx context.Context, voucherID id.VoucherID) (*models.Voucher, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	return s.findVoucher(ctx, voucherID)
}

// UpdateVoucher replaces the writable fields. Staff only.
func (s *Service) UpdateVoucher(ctx context.Context, voucherID id.VoucherID, input Input) (*models.Voucher, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	voucher, err := s.findVoucher(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if err := applyInput(voucher, input); err != nil {
		return nil, err
	}
	voucher.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, voucher); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update voucher")
	}
	s.emitAudit(ctx, "voucher.updated", voucher.ID.String(), voucher.Title)
	return voucher, nil
}

// ArchiveVoucher hides a voucher from passengers without deleting the record.
func (s *Service) ArchiveVoucher(ctx context.Context, voucherID id.VoucherID) error {
	return s.setStatus(ctx, voucherID, models.StatusArchived, "voucher.archived")
}

// RestoreVoucher reactivates an archived voucher.
func (s *Service) RestoreVoucher(ctx context.Context, voucherID id.VoucherID) error {
	return s.setStatus(ctx, voucherID, models.StatusActive, "voucher.restored")
}

// TripVouchers lists every voucher of a trip, archived included. Staff only.
func (s *Service) TripVouchers(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	return s.listByTrip(ctx, tripID)
}

// MyVouchers lists the vouchers a passenger may see on a trip: their own plus
// trip-wide ones, active only.
func (s *Service) MyVouchers(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if sess.PassengerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeForbidden, "account is not linked to a passenger")
	}
	// GetTrip hides trips the passenger is not assigned to.
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}
	all, err := s.listByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	visible := make([]*models.Voucher, 0, len(all))
	for _, v := range all {
		if v.VisibleTo(sess.PassengerID) {
			visible = append(visible, v)
		}
	}
	return visible, nil
}

func (s *Service) setStatus(ctx context.Context, voucherID id.VoucherID, status models.Status, action string) error {
	if _, err := s.requireStaff(ctx); err != nil {
		return err
	}
	voucher, err := s.findVoucher(ctx, voucherID)
	if err != nil {
		return err
	}
	if voucher.Status == status {
		return dErrors.Newf(dErrors.CodeConflict, "voucher is already %s", status)
	}
	voucher.Status = status
	voucher.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.Update(ctx, voucher); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update voucher")
	}
	s.emitAudit(ctx, action, voucher.ID.String(), voucher.Title)
	return nil
}

func applyInput(voucher *models.Voucher, input Input) error {
	format, err := models.ParseFormat(input.Format)
	if err != nil {
		return err
	}
	visibility, err := models.ParseVisibility(input.Visibility)
	if err != nil {
		return err
	}
	voucher.PassengerID = input.PassengerID
	voucher.VoucherType = strings.TrimSpace(input.VoucherType)
	voucher.Title = strings.TrimSpace(input.Title)
	voucher.ProviderName = strings.TrimSpace(input.ProviderName)
	voucher.ServiceDate = input.ServiceDate
	voucher.Format = format
	voucher.ExternalURL = strings.TrimSpace(input.ExternalURL)
	voucher.FilePath = strings.TrimSpace(input.FilePath)
	voucher.Visibility = visibility
	voucher.Notes = input.Notes
	return voucher.Validate()
}

func (s *Service) requireStaff(ctx context.Context) (requestcontext.Session, error) {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() {
		return requestcontext.Session{}, dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	return sess, nil
}

func (s *Service) findVoucher(ctx context.Context, voucherID id.VoucherID) (*models.Voucher, error) {
	voucher, err := s.store.FindByID(ctx, voucherID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "voucher not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load voucher")
	}
	return voucher, nil
}

func (s *Service) listByTrip(ctx context.Context, tripID id.TripID) ([]*models.Voucher, error) {
	list, err := s.store.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list vouchers")
	}
	return list, nil
}

func (s *Service) emitAudit(ctx context.Context, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "voucher",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
