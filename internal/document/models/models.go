// Package models holds document requirements, uploaded passenger documents,
// and the completeness evaluator.
package models

import (
	"strings"
	"time"

	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

// Status is the review state of an uploaded document, plus the two derived
// states the evaluator produces for requirements with no usable uploads.
type Status string

const (
	StatusMissing  Status = "missing"  // derived: no records at all
	StatusPartial  Status = "partial"  // derived: identity document with only one side
	StatusUploaded Status = "uploaded" // stored: awaiting review
	StatusApproved Status = "approved" // stored
	StatusRejected Status = "rejected" // stored
)

// Satisfies reports whether the status passes the "required documents" gate.
// Uploaded counts: staff review asynchronously without blocking passengers.
func (s Status) Satisfies() bool {
	return s == StatusApproved || s == StatusUploaded
}

func (s Status) String() string { return string(s) }

// DocumentType is a reusable document definition ("DNI", "Apto médico").
type DocumentType struct {
	ID       id.DocumentTypeID
	Name     string
	IsActive bool
}

// NewDocumentType validates the name.
func NewDocumentType(typeID id.DocumentTypeID, name string) (*DocumentType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document type name is required")
	}
	return &DocumentType{ID: typeID, Name: name, IsActive: true}, nil
}

// RequiredDocument binds a document type to a trip. DocTypeName is
// denormalized onto the struct because the evaluator keys its identity rule
// off the name.
type RequiredDocument struct {
	ID          id.RequirementID
	TripID      id.TripID
	DocTypeID   id.DocumentTypeID
	DocTypeName string
	IsRequired  bool
	Description string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Format distinguishes uploaded files from external links.
type Format string

const (
	FormatFile Format = "file"
	FormatLink Format = "link"
)

// ParseFormat validates external input.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatFile, FormatLink:
		return Format(s), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, "format must be file or link")
	}
}

// PassengerDocument is one upload attempt against a requirement. Re-uploads
// create new rows; the evaluator only looks at the newest ones.
type PassengerDocument struct {
	ID            id.PassengerDocumentID
	TripID        id.TripID
	PassengerID   id.PassengerID
	RequirementID id.RequirementID
	Format        Format
	FilePath      string
	Status        Status
	ReviewComment string
	UploadedAt    *time.Time
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ArchivedAt    *time.Time
}

func (d *PassengerDocument) IsArchived() bool { return d.ArchivedAt != nil }
