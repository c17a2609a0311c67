package passenger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"triex/internal/passenger/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

type PassengerStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PassengerStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPassengerStoreSuite(t *testing.T) {
	suite.Run(t, new(PassengerStoreSuite))
}

func (s *PassengerStoreSuite) newPassenger(first, last string) *models.Passenger {
	p, err := models.NewPassenger(id.NewPassengerID(), first, last, first+"@example.com", time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, p))
	return p
}

func (s *PassengerStoreSuite) TestCreateAndFind() {
	p := s.newPassenger("Ana", "García")

	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("Ana", found.FirstName)

	s.ErrorIs(s.store.Create(s.ctx, p), sentinel.ErrConflict)

	_, err = s.store.FindByID(s.ctx, id.NewPassengerID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PassengerStoreSuite) TestUpdateDoesNotAliasCallerValue() {
	p := s.newPassenger("Ana", "García")
	p.Notes = "vegetariana"
	s.Require().NoError(s.store.Update(s.ctx, p))

	p.Notes = "mutated after store write"
	found, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal("vegetariana", found.Notes)
}

func (s *PassengerStoreSuite) TestFindByProfile() {
	p := s.newPassenger("Ana", "García")
	profileID := id.NewUserID()
	p.ProfileID = profileID
	s.Require().NoError(s.store.Update(s.ctx, p))

	found, err := s.store.FindByProfile(s.ctx, profileID)
	s.Require().NoError(err)
	s.Equal(p.ID, found.ID)

	// Archived records break the link.
	now := time.Now()
	p.ArchivedAt = &now
	s.Require().NoError(s.store.Update(s.ctx, p))
	_, err = s.store.FindByProfile(s.ctx, profileID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PassengerStoreSuite) TestListScopesAndSearch() {
	s.newPassenger("Ana", "García")
	bruno := s.newPassenger("Bruno", "Pérez")
	now := time.Now()
	bruno.ArchivedAt = &now
	s.Require().NoError(s.store.Update(s.ctx, bruno))

	active, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Ana", active[0].FirstName)

	archived, err := s.store.List(s.ctx, models.Filter{Scope: models.ScopeArchived})
	s.Require().NoError(err)
	s.Len(archived, 1)

	all, err := s.store.List(s.ctx, models.Filter{Scope: models.ScopeAll})
	s.Require().NoError(err)
	s.Len(all, 2)

	byEmail, err := s.store.List(s.ctx, models.Filter{Scope: models.ScopeAll, Search: "BRUNO@"})
	s.Require().NoError(err)
	s.Len(byEmail, 1)
}

func (s *PassengerStoreSuite) TestListSortsByName() {
	s.newPassenger("Bruno", "Pérez")
	s.newPassenger("Ana", "García")
	s.newPassenger("Carla", "García")

	list, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("Ana", list[0].FirstName)
	s.Equal("Carla", list[1].FirstName)
	s.Equal("Bruno", list[2].FirstName)
}
