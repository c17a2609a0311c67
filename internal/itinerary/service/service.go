// Package service implements itinerary editing: appending days and items,
// moving them, and soft-deleting them.
//
// Ordering is an explicit O(n) rewrite: a move splices the in-memory list,
// reinserts, and persists every changed position as its new 0-based index.
// Lists are single-digit to low-tens long, so simplicity wins over gap or
// fractional indexing. The changed positions persist as one atomic batch; a
// stale version anywhere aborts the whole move with a conflict and leaves
// every position untouched.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"triex/internal/audit"
	"triex/internal/itinerary/models"
	"triex/internal/platform/metrics"
	tripmodels "triex/internal/trip/models"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// Store is the itinerary persistence. Reorder batches must apply atomically
// and fail whole with sentinel.ErrVersionMismatch when any expected version
// is stale.
type Store interface {
	CreateDay(ctx context.Context, day *models.Day) error
	FindDay(ctx context.Context, dayID id.DayID) (*models.Day, error)
	ListDays(ctx context.Context, tripID id.TripID) ([]*models.Day, error)
	UpdateDay(ctx context.Context, day *models.Day) error
	ReorderDays(ctx context.Context, updates []models.DaySort) error

	CreateItem(ctx context.Context, item *models.Item) error
	FindItem(ctx context.Context, itemID id.ItemID) (*models.Item, error)
	ListItems(ctx context.Context, dayID id.DayID) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ReorderItems(ctx context.Context, updates []models.ItemSort) error
}

// TripAuthorizer answers whether the caller may see a trip. The trip
// service's GetTrip already applies staff/assignment rules, so the itinerary
// service delegates to it.
type TripAuthorizer interface {
	GetTrip(ctx context.Context, tripID id.TripID) (*tripmodels.Trip, error)
}

// AuditPublisher records itinerary edits.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service exposes itinerary operations.
type Service struct {
	store   Store
	trips   TripAuthorizer
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, trips TripAuthorizer, opts ...Option) *Service {
	s := &Service{
		store:  store,
		trips:  trips,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DayWithItems is one rendered itinerary day.
type DayWithItems struct {
	Day   *models.Day
	Items []*models.Item
}

// Itinerary returns the full itinerary of a trip in display order. The item
// lists of all days load concurrently.
func (s *Service) Itinerary(ctx context.Context, tripID id.TripID) ([]DayWithItems, error) {
	if _, err := s.trips.GetTrip(ctx, tripID); err != nil {
		return nil, err
	}

	days, err := s.store.ListDays(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load itinerary")
	}

	out := make([]DayWithItems, len(days))
	g, gctx := errgroup.WithContext(ctx)
	for index, day := range days {
		g.Go(func() error {
			items, err := s.store.ListItems(gctx, day.ID)
			if err != nil {
				return err
			}
			out[index] = DayWithItems{Day: day, Items: items}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load itinerary items")
	}
	return out, nil
}

// DayInput carries the editable day fields.
type DayInput struct {
	Date  *time.Time
	Title string
}

// AddDay appends a day numbered one past the current maximum; the number
// doubles as the initial sort position.
func (s *Service) AddDay(ctx context.Context, tripID id.TripID, input DayInput) (*models.Day, error) {
	if err := s.requireStaffTrip(ctx, tripID); err != nil {
		return nil, err
	}

	days, err := s.store.ListDays(ctx, tripID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load itinerary")
	}
	maxNumber := 0
	for _, day := range days {
		if day.DayNumber > maxNumber {
			maxNumber = day.DayNumber
		}
	}

	day := models.NewDay(id.DayID(uuid.New()), tripID, maxNumber+1, requestcontext.Now(ctx))
	day.Date = input.Date
	day.Title = input.Title

	if err := s.store.CreateDay(ctx, day); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create day")
	}
	s.emitAudit(ctx, "itinerary.day_added", tripID.String())
	return day, nil
}

// UpdateDay edits the date and title of a day.
func (s *Service) UpdateDay(ctx context.Context, dayID id.DayID, input DayInput) (*models.Day, error) {
	day, err := s.findDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaffTrip(ctx, day.TripID); err != nil {
		return nil, err
	}

	day.Date = input.Date
	day.Title = input.Title
	day.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateDay(ctx, day); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update day")
	}
	s.emitAudit(ctx, "itinerary.day_updated", day.TripID.String())
	return day, nil
}

// DeleteDay soft-deletes a day. Sibling positions keep their values; the
// resulting gap is harmless because reads sort ascending.
func (s *Service) DeleteDay(ctx context.Context, dayID id.DayID) error {
	day, err := s.findDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := s.requireStaffTrip(ctx, day.TripID); err != nil {
		return err
	}
	if day.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "day is already deleted")
	}

	now := requestcontext.Now(ctx)
	day.ArchivedAt = &now
	day.UpdatedAt = now
	if err := s.store.UpdateDay(ctx, day); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete day")
	}
	s.emitAudit(ctx, "itinerary.day_deleted", day.TripID.String())
	return nil
}

// MoveDay removes the day at fromIndex from the display order and reinserts
// it at toIndex. Every day's position is rewritten to its new 0-based index.
func (s *Service) MoveDay(ctx context.Context, tripID id.TripID, fromIndex, toIndex int) error {
	if err := s.requireStaffTrip(ctx, tripID); err != nil {
		return err
	}

	days, err := s.store.ListDays(ctx, tripID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load itinerary")
	}

	reordered, err := splice(days, fromIndex, toIndex)
	if err != nil {
		return err
	}

	updates := make([]models.DaySort, 0, len(reordered))
	for index, day := range reordered {
		if day.SortIndex == index {
			continue
		}
		updates = append(updates, models.DaySort{
			DayID:           day.ID,
			SortIndex:       index,
			ExpectedVersion: day.Version,
		})
	}
	if err := s.finishReorder(ctx, s.store.ReorderDays(ctx, updates)); err != nil {
		return err
	}
	s.emitAudit(ctx, "itinerary.day_moved", tripID.String())
	return nil
}

// ItemInput carries the editable item fields.
type ItemInput struct {
	TimeOfDay        string
	Title            string
	Description      string
	LocationName     string
	LocationDetail   string
	InstructionsURL  string
	InstructionsText string
}

// AddItem appends an item to a day, one past the day's maximum position.
func (s *Service) AddItem(ctx context.Context, dayID id.DayID, input ItemInput) (*models.Item, error) {
	day, err := s.findDay(ctx, dayID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaffTrip(ctx, day.TripID); err != nil {
		return nil, err
	}

	items, err := s.store.ListItems(ctx, dayID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
	}
	sortIndex := 0
	for _, item := range items {
		if item.SortIndex >= sortIndex {
			sortIndex = item.SortIndex + 1
		}
	}

	now := requestcontext.Now(ctx)
	item := &models.Item{
		ID:               id.ItemID(uuid.New()),
		TripID:           day.TripID,
		DayID:            dayID,
		TimeOfDay:        input.TimeOfDay,
		Title:            input.Title,
		Description:      input.Description,
		LocationName:     input.LocationName,
		LocationDetail:   input.LocationDetail,
		InstructionsURL:  input.InstructionsURL,
		InstructionsText: input.InstructionsText,
		SortIndex:        sortIndex,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create item")
	}
	s.emitAudit(ctx, "itinerary.item_added", day.TripID.String())
	return item, nil
}

// UpdateItem edits the item form fields.
func (s *Service) UpdateItem(ctx context.Context, itemID id.ItemID, input ItemInput) (*models.Item, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.requireStaffTrip(ctx, item.TripID); err != nil {
		return nil, err
	}

	item.TimeOfDay = input.TimeOfDay
	item.Title = input.Title
	item.Description = input.Description
	item.LocationName = input.LocationName
	item.LocationDetail = input.LocationDetail
	item.InstructionsURL = input.InstructionsURL
	item.InstructionsText = input.InstructionsText
	item.UpdatedAt = requestcontext.Now(ctx)
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update item")
	}
	s.emitAudit(ctx, "itinerary.item_updated", item.TripID.String())
	return item, nil
}

// DeleteItem soft-deletes an item without renumbering siblings.
func (s *Service) DeleteItem(ctx context.Context, itemID id.ItemID) error {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return err
	}
	if err := s.requireStaffTrip(ctx, item.TripID); err != nil {
		return err
	}
	if item.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "item is already deleted")
	}

	now := requestcontext.Now(ctx)
	item.ArchivedAt = &now
	item.UpdatedAt = now
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete item")
	}
	s.emitAudit(ctx, "itinerary.item_deleted", item.TripID.String())
	return nil
}

// MoveItem reorders the items of one day; same contract as MoveDay.
func (s *Service) MoveItem(ctx context.Context, dayID id.DayID, fromIndex, toIndex int) error {
	day, err := s.findDay(ctx, dayID)
	if err != nil {
		return err
	}
	if err := s.requireStaffTrip(ctx, day.TripID); err != nil {
		return err
	}

	items, err := s.store.ListItems(ctx, dayID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load items")
	}

	reordered, err := splice(items, fromIndex, toIndex)
	if err != nil {
		return err
	}

	updates := make([]models.ItemSort, 0, len(reordered))
	for index, item := range reordered {
		if item.SortIndex == index {
			continue
		}
		updates = append(updates, models.ItemSort{
			ItemID:          item.ID,
			SortIndex:       index,
			ExpectedVersion: item.Version,
		})
	}
	if err := s.finishReorder(ctx, s.store.ReorderItems(ctx, updates)); err != nil {
		return err
	}
	s.emitAudit(ctx, "itinerary.item_moved", day.TripID.String())
	return nil
}

// splice removes the entry at fromIndex and reinserts it at toIndex.
func splice[T any](list []T, fromIndex, toIndex int) ([]T, error) {
	if fromIndex < 0 || fromIndex >= len(list) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "from index out of range")
	}
	if toIndex < 0 || toIndex >= len(list) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "to index out of range")
	}

	out := make([]T, 0, len(list))
	out = append(out, list[:fromIndex]...)
	out = append(out, list[fromIndex+1:]...)

	out = append(out, *new(T))
	copy(out[toIndex+1:], out[toIndex:])
	out[toIndex] = list[fromIndex]
	return out, nil
}

func (s *Service) finishReorder(ctx context.Context, err error) error {
	if err != nil {
		if errors.Is(err, sentinel.ErrVersionMismatch) {
			if s.metrics != nil {
				s.metrics.ReorderConflicts.Inc()
			}
			return dErrors.New(dErrors.CodeConflict, "itinerary was changed by another session, reload and retry")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist new order")
	}
	if s.metrics != nil {
		s.metrics.ItineraryReorders.Inc()
	}
	return nil
}

// requireStaffTrip fails unless the caller is staff and the trip exists.
func (s *Service) requireStaffTrip(ctx context.Context, tripID id.TripID) error {
	sess, ok := requestcontext.SessionFrom(ctx)
	if !ok {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if !sess.IsStaff() {
		return dErrors.New(dErrors.CodeForbidden, "staff role required")
	}
	_, err := s.trips.GetTrip(ctx, tripID)
	return err
}

func (s *Service) findDay(ctx context.Context, dayID id.DayID) (*models.Day, error) {
	day, err := s.store.FindDay(ctx, dayID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "day not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load day")
	}
	return day, nil
}

func (s *Service) findItem(ctx context.Context, itemID id.ItemID) (*models.Item, error) {
	item, err := s.store.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "item not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load item")
	}
	return item, nil
}

func (s *Service) emitAudit(ctx context.Context, action, tripID string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "itinerary",
		EntityID:   tripID,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
