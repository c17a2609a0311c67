// Package service manages portal user accounts from the admin console:
// staff list and edit accounts, disabling blocks the login, and role
// assignment is reserved to admins.
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"triex/internal/account/models"
	"triex/internal/audit"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
	"triex/pkg/platform/sentinel"
	"triex/pkg/requestcontext"
)

// Store is the account persistence. Both the in-memory and PostgreSQL
// stores satisfy it.
type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	List(ctx context.Context, filter models.Filter) ([]*models.User, error)
}

// AuditPublisher records staff account actions.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service exposes account operations.
type Service struct {
	accounts Store
	audit    AuditPublisher
	logger   *slog.Logger
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs a Service. Audit is optional.
func New(accounts Store, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Input carries the editable account fields.
type Input struct {
	Email    string
	FullName string
	Role     id.Role
}

// CreateAccount registers a login. Granting the admin role is reserved to
// admins.
func (s *Service) CreateAccount(ctx context.Context, input Input) (*models.User, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	if input.Role == id.RoleAdmin && sess.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can grant the admin role")
	}

	u, err := models.NewUser(id.NewUserID(), input.Email, input.FullName, input.Role, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	u.CreatedBy = sess.UserID
	u.UpdatedBy = sess.UserID
	if err := s.accounts.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with that email already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}
	s.emitAudit(ctx, "account.created", u.ID.String(), u.Email)
	return u, nil
}

// GetAccount returns one account. Staff only.
func (s *Service) GetAccount(ctx context.Context, userID id.UserID) (*models.User, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	return s.findAccount(ctx, userID)
}

// ListAccounts returns accounts matching the filter, newest first.
func (s *Service) ListAccounts(ctx context.Context, filter models.Filter) ([]*models.User, error) {
	if _, err := s.requireStaff(ctx); err != nil {
		return nil, err
	}
	filter.Search = strings.TrimSpace(filter.Search)
	list, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list accounts")
	}
	return list, nil
}

// UpdateAccount rewrites the name and role. Any role change is reserved to
// admins; the email is immutable because it is the login identifier.
func (s *Service) UpdateAccount(ctx context.Context, userID id.UserID, fullName string, role id.Role) (*models.User, error) {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.findAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	if role != u.Role && sess.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeForbidden, "only admins can change roles")
	}

	u.FullName = fullName
	u.Role = role
	u.UpdatedBy = sess.UserID
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.accounts.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update account")
	}
	s.emitAudit(ctx, "account.updated", u.ID.String(), u.Email)
	return u, nil
}

// DisableAccount blocks the login. An account cannot disable itself, so the
// console always keeps at least one usable staff session.
func (s *Service) DisableAccount(ctx context.Context, userID id.UserID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	if sess.UserID == userID {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot disable your own account")
	}
	u, err := s.findAccount(ctx, userID)
	if err != nil {
		return err
	}
	if u.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "account is already disabled")
	}

	now := requestcontext.Now(ctx)
	u.ArchivedAt = &now
	u.UpdatedBy = sess.UserID
	u.UpdatedAt = now
	if err := s.accounts.Update(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to disable account")
	}
	s.emitAudit(ctx, "account.disabled", u.ID.String(), u.Email)
	return nil
}

// EnableAccount undoes a disable.
func (s *Service) EnableAccount(ctx context.Context, userID id.UserID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	u, err := s.findAccount(ctx, userID)
	if err != nil {
		return err
	}
	if !u.IsArchived() {
		return dErrors.New(dErrors.CodeConflict, "account is not disabled")
	}

	u.ArchivedAt = nil
	u.UpdatedBy = sess.UserID
	u.UpdatedAt = requestcontext.Now(ctx)
	if err := s.accounts.Update(ctx, u); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to enable account")
	}
	s.emitAudit(ctx, "account.enabled", u.ID.String(), u.Email)
	return nil
}

// DeleteAccount removes the row permanently. Admins only.
func (s *Service) DeleteAccount(ctx context.Context, userID id.UserID) error {
	sess, err := s.requireStaff(ctx)
	if err != nil {
		return err
	}
	if sess.Role != id.RoleAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only admins can delete accounts")
	}
	if sess.UserID == userID {
		return dErrors.New(dErrors.CodeInvalidInput, "cannot delete your own account")
	}
	u, err := s.findAccount(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete account")
	}
	s.emitAudit(ctx, "account.deleted", userID.String(), u.Email)
	return nil
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

func (s *Service) findAccount(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return u, nil
}

func (s *Service) emitAudit(ctx context.Context, action, entityID, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		OccurredAt: requestcontext.Now(ctx),
		UserID:     requestcontext.UserID(ctx),
		Action:     action,
		Entity:     "account",
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
