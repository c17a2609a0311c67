package handler

import (
	"strings"
	"time"

	"triex/internal/document/service"
	id "triex/pkg/domain"
	dErrors "triex/pkg/domain-errors"
)

const dateFormat = "2006-01-02"

// DocumentTypeRequest creates or updates a document-type definition.
type DocumentTypeRequest struct {
	Name     string `json:"name"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (r *DocumentTypeRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if len(r.Name) > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "name must be at most 100 characters")
	}
	return nil
}

// Active defaults to true so creation bodies can omit the field.
func (r *DocumentTypeRequest) Active() bool {
	if r.IsActive == nil {
		return true
	}
	return *r.IsActive
}

// RequirementsRequest replaces the full requirement list of a trip.
type RequirementsRequest struct {
	Requirements []requirementEntry `json:"requirements"`

	parsed []service.RequirementInput
}

type requirementEntry struct {
	DocTypeID   string `json:"doc_type_id"`
	IsRequired  bool   `json:"is_required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
}

func (r *RequirementsRequest) Validate() error {
	if len(r.Requirements) > 50 {
		return dErrors.New(dErrors.CodeInvalidInput, "at most 50 requirements per trip")
	}
	r.parsed = make([]service.RequirementInput, 0, len(r.Requirements))
	for _, entry := range r.Requirements {
		typeID, err := id.ParseDocumentTypeID(entry.DocTypeID)
		if err != nil {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid doc_type_id")
		}
		input := service.RequirementInput{
			DocTypeID:   typeID,
			IsRequired:  entry.IsRequired,
			Description: entry.Description,
		}
		if entry.DueDate != "" {
			due, err := time.Parse(dateFormat, entry.DueDate)
			if err != nil {
				return dErrors.New(dErrors.CodeInvalidInput, "due_date must be YYYY-MM-DD")
			}
			input.DueDate = &due
		}
		r.parsed = append(r.parsed, input)
	}
	return nil
}

// Parsed returns the inputs produced by Validate.
func (r *RequirementsRequest) Parsed() []service.RequirementInput { return r.parsed }

// UploadRequest records one passenger upload against a requirement.
type UploadRequest struct {
	RequirementID string `json:"requirement_id"`
	Format        string `json:"format"`
	FilePath      string `json:"file_path"`

	parsedRequirement id.RequirementID
}

func (r *UploadRequest) Validate() error {
	reqID, err := id.ParseRequirementID(r.RequirementID)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid requirement_id")
	}
	r.parsedRequirement = reqID
	if strings.TrimSpace(r.FilePath) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "file_path is required")
	}
	return nil
}

func (r *UploadRequest) ToInput() service.UploadInput {
	return service.UploadInput{
		RequirementID: r.parsedRequirement,
		Format:        r.Format,
		FilePath:      r.FilePath,
	}
}

// ReviewRequest approves or rejects one upload.
type ReviewRequest struct {
	Approve *bool  `json:"approve"`
	Comment string `json:"comment"`
}

func (r *ReviewRequest) Validate() error {
	if r.Approve == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "approve is required")
	}
	return nil
}
