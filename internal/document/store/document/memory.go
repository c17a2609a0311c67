// Package document provides storage for document types, per-trip
// requirements, and passenger uploads.
package document

import (
	"context"
	"sort"
	"sync"

	"triex/internal/document/models"
	id "triex/pkg/domain"
	"triex/pkg/platform/sentinel"
)

// InMemory is a map-backed store used by unit tests and local development.
type InMemory struct {
	mu           sync.RWMutex
	types        map[id.DocumentTypeID]models.DocumentType
	requirements map[id.RequirementID]models.RequiredDocument
	documents    map[id.PassengerDocumentID]models.PassengerDocument
}

func NewInMemory() *InMemory {
	return &InMemory{
		types:        make(map[id.DocumentTypeID]models.DocumentType),
		requirements: make(map[id.RequirementID]models.RequiredDocument),
		documents:    make(map[id.PassengerDocumentID]models.PassengerDocument),
	}
}

func (s *InMemory) CreateType(_ context.Context, docType *models.DocumentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[docType.ID]; ok {
		return sentinel.ErrConflict
	}
	s.types[docType.ID] = *docType
	return nil
}

func (s *InMemory) FindType(_ context.Context, typeID id.DocumentTypeID) (*models.DocumentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docType, ok := s.types[typeID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &docType, nil
}

func (s *InMemory) ListTypes(_ context.Context) ([]*models.DocumentType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*models.DocumentType, 0, len(s.types))
	for _, docType := range s.types {
		copied := docType
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *InMemory) UpdateType(_ context.Context, docType *models.DocumentType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.types[docType.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.types[docType.ID] = *docType
	return nil
}

// ReplaceRequirements swaps the full requirement set of a trip. Uploads
// against dropped requirements are discarded with them.
func (s *InMemory) ReplaceRequirements(_ context.Context, tripID id.TripID, reqs []*models.RequiredDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for reqID, req := range s.requirements {
		if req.TripID == tripID {
			delete(s.requirements, reqID)
		}
	}
	kept := make(map[id.RequirementID]struct{}, len(reqs))
	for _, req := range reqs {
		kept[req.ID] = struct{}{}
	}
	for docID, doc := range s.documents {
		if doc.TripID != tripID {
			continue
		}
		if _, ok := kept[doc.RequirementID]; !ok {
			delete(s.documents, docID)
		}
	}
	for _, req := range reqs {
		copied := *req
		if docType, ok := s.types[req.DocTypeID]; ok {
			copied.DocTypeName = docType.Name
		}
		s.requirements[req.ID] = copied
	}
	return nil
}

func (s *InMemory) FindRequirement(_ context.Context, reqID id.RequirementID) (*models.RequiredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requirements[reqID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &req, nil
}

func (s *InMemory) ListRequirements(_ context.Context, tripID id.TripID) ([]*models.RequiredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.RequiredDocument
	for _, req := range s.requirements {
		if req.TripID != tripID {
			continue
		}
		copied := req
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].DocTypeName < list[j].DocTypeName
	})
	return list, nil
}

func (s *InMemory) CreateDocument(_ context.Context, doc *models.PassengerDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = *doc
	return nil
}

func (s *InMemory) FindDocument(_ context.Context, docID id.PassengerDocumentID) (*models.PassengerDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns a passenger's active uploads for a trip, newest
// first.
func (s *InMemory) ListDocuments(_ context.Context, tripID id.TripID, passengerID id.PassengerID) ([]*models.PassengerDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.PassengerDocument
	for _, doc := range s.documents {
		if doc.TripID != tripID || doc.PassengerID != passengerID || doc.IsArchived() {
			continue
		}
		copied := doc
		list = append(list, &copied)
	}
	sortNewestFirst(list)
	return list, nil
}

// ListTripDocuments returns every active upload of a trip for the staff
// review queue.
func (s *InMemory) ListTripDocuments(_ context.Context, tripID id.TripID) ([]*models.PassengerDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var list []*models.PassengerDocument
	for _, doc := range s.documents {
		if doc.TripID != tripID || doc.IsArchived() {
			continue
		}
		copied := doc
		list = append(list, &copied)
	}
	sortNewestFirst(list)
	return list, nil
}

func (s *InMemory) UpdateDocument(_ context.Context, doc *models.PassengerDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.documents[doc.ID] = *doc
	return nil
}

func sortNewestFirst(list []*models.PassengerDocument) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
