//go:build integration

package document_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"triex/internal/document/models"
	"triex/internal/document/store/document"
	tripmodels "triex/internal/trip/models"
	tripstore "triex/internal/trip/store/trip"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
	"triex/pkg/testutil/containers"
)

type PostgresDocumentSuite struct {
	suite.Suite
	postgres    *containers.PostgresContainer
	store       *document.Postgres
	trips       *tripstore.Postgres
	ctx         context.Context
	tripID      id.TripID
	passengerID id.PassengerID
}

func TestPostgresDocumentSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresDocumentSuite))
}

func (s *PostgresDocumentSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = document.NewPostgres(s.postgres.DB)
	s.trips = tripstore.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresDocumentSuite) SetupTest() {
	err := s.postgres.TruncateTables(s.ctx,
		"passenger_documents", "required_documents", "document_types", "passengers", "trips")
	s.Require().NoError(err)

	trip, err := tripmodels.NewTrip(id.NewTripID(), "Integración", "Mendoza", time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.trips.Create(s.ctx, trip))
	s.tripID = trip.ID

	s.passengerID = id.NewPassengerID()
	_, err = s.postgres.DB.ExecContext(s.ctx, `
		INSERT INTO passengers (id, first_name, last_name, email)
		VALUES ($1, 'Ana', 'Prueba', 'ana@example.com')
	`, s.passengerID.String())
	s.Require().NoError(err)
}

func (s *PostgresDocumentSuite) createType(name string) *models.DocumentType {
	docType := &models.DocumentType{ID: id.NewDocumentTypeID(), Name: name, IsActive: true}
	s.Require().NoError(s.store.CreateType(s.ctx, docType))
	return docType
}

func (s *PostgresDocumentSuite) createRequirement(docType *models.DocumentType) *models.RequiredDocument {
	now := time.Now().UTC().Truncate(time.Microsecond)
	req := &models.RequiredDocument{
		ID:          id.NewRequirementID(),
		TripID:      s.tripID,
		DocTypeID:   docType.ID,
		DocTypeName: docType.Name,
		IsRequired:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.Require().NoError(s.store.ReplaceRequirements(s.ctx, s.tripID, []*models.RequiredDocument{req}))
	return req
}

func (s *PostgresDocumentSuite) createDocument(reqID id.RequirementID, at time.Time) *models.PassengerDocument {
	doc := &models.PassengerDocument{
		ID:            id.NewPassengerDocumentID(),
		TripID:        s.tripID,
		PassengerID:   s.passengerID,
		RequirementID: reqID,
		Format:        models.FormatFile,
		FilePath:      "documents/scan.pdf",
		Status:        models.StatusUploaded,
		UploadedAt:    &at,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	s.Require().NoError(s.store.CreateDocument(s.ctx, doc))
	return doc
}

func (s *PostgresDocumentSuite) TestTypeRoundTrip() {
	docType := s.createType("DNI")

	found, err := s.store.FindType(s.ctx, docType.ID)
	s.Require().NoError(err)
	s.Equal("DNI", found.Name)
	s.True(found.IsActive)

	s.ErrorIs(s.store.CreateType(s.ctx, docType), sentinel.ErrConflict)

	found.IsActive = false
	s.Require().NoError(s.store.UpdateType(s.ctx, found))

	types, err := s.store.ListTypes(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(types, 1)
	s.False(types[0].IsActive)
}

func (s *PostgresDocumentSuite) TestRequirementJoinCarriesTypeName() {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	req := s.createRequirement(s.createType("Apto médico"))
	req.DueDate = &due
	s.Require().NoError(s.store.ReplaceRequirements(s.ctx, s.tripID, []*models.RequiredDocument{req}))

	found, err := s.store.FindRequirement(s.ctx, req.ID)
	s.Require().NoError(err)
	s.Equal("Apto médico", found.DocTypeName)
	s.Require().NotNil(found.DueDate)
	s.True(found.DueDate.Equal(due))
}

func (s *PostgresDocumentSuite) TestReplaceDropsUploadsWithRequirement() {
	dni := s.createType("DNI")
	visa := s.createType("Visa")
	req := s.createRequirement(dni)
	doc := s.createDocument(req.ID, time.Now().UTC().Truncate(time.Microsecond))

	now := time.Now().UTC().Truncate(time.Microsecond)
	replacement := &models.RequiredDocument{
		ID: id.NewRequirementID(), TripID: s.tripID,
		DocTypeID: visa.ID, IsRequired: false,
		CreatedAt: now, UpdatedAt: now,
	}
	s.Require().NoError(s.store.ReplaceRequirements(s.ctx, s.tripID, []*models.RequiredDocument{replacement}))

	_, err := s.store.FindDocument(s.ctx, doc.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	reqs, err := s.store.ListRequirements(s.ctx, s.tripID)
	s.Require().NoError(err)
	s.Require().Len(reqs, 1)
	s.Equal(visa.ID, reqs[0].DocTypeID)
}

func (s *PostgresDocumentSuite) TestUnknownTypeRejected() {
	now := time.Now().UTC()
	req := &models.RequiredDocument{
		ID: id.NewRequirementID(), TripID: s.tripID,
		DocTypeID: id.NewDocumentTypeID(), IsRequired: true,
		CreatedAt: now, UpdatedAt: now,
	}
	err := s.store.ReplaceRequirements(s.ctx, s.tripID, []*models.RequiredDocument{req})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresDocumentSuite) TestDocumentRoundTripAndReview() {
	req := s.createRequirement(s.createType("DNI"))
	at := time.Now().UTC().Truncate(time.Microsecond)
	doc := s.createDocument(req.ID, at)

	found, err := s.store.FindDocument(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusUploaded, found.Status)
	s.Equal(models.FormatFile, found.Format)
	s.Require().NotNil(found.UploadedAt)

	reviewedAt := at.Add(time.Hour)
	found.Status = models.StatusRejected
	found.ReviewComment = "foto ilegible"
	found.ReviewedAt = &reviewedAt
	found.UpdatedAt = reviewedAt
	s.Require().NoError(s.store.UpdateDocument(s.ctx, found))

	again, err := s.store.FindDocument(s.ctx, doc.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusRejected, again.Status)
	s.Equal("foto ilegible", again.ReviewComment)
	s.Require().NotNil(again.ReviewedAt)
}

func (s *PostgresDocumentSuite) TestListDocumentsNewestFirst() {
	req := s.createRequirement(s.createType("DNI"))
	base := time.Now().UTC().Truncate(time.Microsecond)
	s.createDocument(req.ID, base.Add(-time.Hour))
	newest := s.createDocument(req.ID, base)

	docs, err := s.store.ListDocuments(s.ctx, s.tripID, s.passengerID)
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal(newest.ID, docs[0].ID)

	all, err := s.store.ListTripDocuments(s.ctx, s.tripID)
	s.Require().NoError(err)
	s.Len(all, 2)
}

func (s *PostgresDocumentSuite) TestArchivedHiddenFromListings() {
	req := s.createRequirement(s.createType("DNI"))
	at := time.Now().UTC().Truncate(time.Microsecond)
	doc := s.createDocument(req.ID, at)

	archived := at.Add(time.Minute)
	doc.ArchivedAt = &archived
	doc.UpdatedAt = archived
	s.Require().NoError(s.store.UpdateDocument(s.ctx, doc))

	docs, err := s.store.ListDocuments(s.ctx, s.tripID, s.passengerID)
	s.Require().NoError(err)
	s.Empty(docs)
}
