package models

import (
	"sort"
	"strings"

	id "triex/pkg/domain"
)

// identityKeywords mark document types that need both sides (front and back)
// of an identity document. Matching is a case-insensitive substring check on
// the type name.
var identityKeywords = []string{"dni", "identidad", "passport", "pasaporte"}

// IsIdentityType reports whether the document-type name denotes a two-sided
// identity document.
func IsIdentityType(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range identityKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RequirementState is the evaluated status of one requirement for one
// passenger, with the uploads the verdict was derived from.
type RequirementState struct {
	Requirement RequiredDocument
	Status      Status
	Documents   []PassengerDocument
}

// Completeness is the per-trip verdict for a passenger.
type Completeness struct {
	Complete     bool
	Requirements []RequirementState
}

// Evaluate derives the status of every requirement from the passenger's
// uploads and rolls them up into a completeness verdict. Only is_required
// requirements gate completeness; optional ones are reported but never block.
// Archived uploads are ignored.
func Evaluate(requirements []RequiredDocument, uploads []PassengerDocument) Completeness {
	byRequirement := make(map[id.RequirementID][]PassengerDocument, len(requirements))
	for _, doc := range uploads {
		if doc.IsArchived() {
			continue
		}
		byRequirement[doc.RequirementID] = append(byRequirement[doc.RequirementID], doc)
	}

	result := Completeness{Complete: true}
	for _, req := range requirements {
		docs := newestFirst(byRequirement[req.ID])
		state := RequirementState{
			Requirement: req,
			Status:      evaluateOne(req, docs),
			Documents:   docs,
		}
		if req.IsRequired && !state.Status.Satisfies() {
			result.Complete = false
		}
		result.Requirements = append(result.Requirements, state)
	}
	return result
}

func evaluateOne(req RequiredDocument, newestFirst []PassengerDocument) Status {
	if IsIdentityType(req.DocTypeName) {
		return evaluateIdentity(newestFirst)
	}
	if len(newestFirst) == 0 {
		return StatusMissing
	}
	return newestFirst[0].Status
}

// evaluateIdentity looks at the two newest uploads: both sides of the
// document. A rejection on either side wins over everything else so the
// passenger is prompted to re-upload.
func evaluateIdentity(newestFirst []PassengerDocument) Status {
	switch len(newestFirst) {
	case 0:
		return StatusMissing
	case 1:
		return StatusPartial
	}
	first, second := newestFirst[0], newestFirst[1]
	if first.Status == StatusRejected || second.Status == StatusRejected {
		return StatusRejected
	}
	if first.Status == StatusApproved && second.Status == StatusApproved {
		return StatusApproved
	}
	return StatusUploaded
}

func newestFirst(docs []PassengerDocument) []PassengerDocument {
	sorted := make([]PassengerDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
