package handler

import (
	"time"

	"triex/internal/document/models"
)

type DocumentTypeResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func fromType(docType *models.DocumentType) DocumentTypeResponse {
	return DocumentTypeResponse{
		ID:       docType.ID.String(),
		Name:     docType.Name,
		IsActive: docType.IsActive,
	}
}

func fromTypes(types []*models.DocumentType) []DocumentTypeResponse {
	out := make([]DocumentTypeResponse, 0, len(types))
	for _, docType := range types {
		out = append(out, fromType(docType))
	}
	return out
}

type RequirementResponse struct {
	ID          string `json:"id"`
	DocTypeID   string `json:"doc_type_id"`
	DocTypeName string `json:"doc_type_name"`
	IsRequired  bool   `json:"is_required"`
	Description string `json:"description,omitempty"`
	DueDate     string `json:"due_date,omitempty"`
}

func fromRequirement(req *models.RequiredDocument) RequirementResponse {
	resp := RequirementResponse{
		ID:          req.ID.String(),
		DocTypeID:   req.DocTypeID.String(),
		DocTypeName: req.DocTypeName,
		IsRequired:  req.IsRequired,
		Description: req.Description,
	}
	if req.DueDate != nil {
		resp.DueDate = req.DueDate.Format(dateFormat)
	}
	return resp
}

func fromRequirements(reqs []*models.RequiredDocument) []RequirementResponse {
	out := make([]RequirementResponse, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, fromRequirement(req))
	}
	return out
}

type DocumentResponse struct {
	ID            string     `json:"id"`
	TripID        string     `json:"trip_id"`
	PassengerID   string     `json:"passenger_id"`
	RequirementID string     `json:"requirement_id"`
	Format        string     `json:"format"`
	FilePath      string     `json:"file_path"`
	Status        string     `json:"status"`
	ReviewComment string     `json:"review_comment,omitempty"`
	UploadedAt    *time.Time `json:"uploaded_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
}

func fromDocument(doc *models.PassengerDocument) DocumentResponse {
	return DocumentResponse{
		ID:            doc.ID.String(),
		TripID:        doc.TripID.String(),
		PassengerID:   doc.PassengerID.String(),
		RequirementID: doc.RequirementID.String(),
		Format:        string(doc.Format),
		FilePath:      doc.FilePath,
		Status:        doc.Status.String(),
		ReviewComment: doc.ReviewComment,
		UploadedAt:    doc.UploadedAt,
		ReviewedAt:    doc.ReviewedAt,
	}
}

func fromDocuments(docs []*models.PassengerDocument) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, fromDocument(doc))
	}
	return out
}

// CompletenessResponse is the per-passenger checklist verdict.
type CompletenessResponse struct {
	Complete     bool                       `json:"complete"`
	Requirements []RequirementStateResponse `json:"requirements"`
}

type RequirementStateResponse struct {
	Requirement RequirementResponse `json:"requirement"`
	Status      string              `json:"status"`
	Documents   []DocumentResponse  `json:"documents"`
}

func fromCompleteness(verdict *models.Completeness) CompletenessResponse {
	resp := CompletenessResponse{
		Complete:     verdict.Complete,
		Requirements: make([]RequirementStateResponse, 0, len(verdict.Requirements)),
	}
	for _, state := range verdict.Requirements {
		req := state.Requirement
		docs := make([]DocumentResponse, 0, len(state.Documents))
		for i := range state.Documents {
			docs = append(docs, fromDocument(&state.Documents[i]))
		}
		resp.Requirements = append(resp.Requirements, RequirementStateResponse{
			Requirement: fromRequirement(&req),
			Status:      state.Status.String(),
			Documents:   docs,
		})
	}
	return resp
}
