// Package domain holds shared domain primitives: typed entity IDs validated
// at trust boundaries.
//
// Each entity gets its own UUID-backed type so the compiler rejects a
// PassengerID where a TripID is expected. Construct IDs with the Parse
// functions when input crosses a trust boundary; direct casting bypasses
// validation and is reserved for values already owned by the store.
package domain

import (
	"github.com/google/uuid"

	dErrors "triex/pkg/domain-errors"
)

type (
	// UserID identifies a portal account (staff or passenger login).
	UserID uuid.UUID
	// PassengerID identifies a passenger record, which may or may not be
	// linked to a login.
	PassengerID uuid.UUID
	// TripID identifies a trip.
	TripID uuid.UUID
	// DayID identifies an itinerary day within a trip.
	DayID uuid.UUID
	// ItemID identifies an activity item within an itinerary day.
	ItemID uuid.UUID
	// DocumentTypeID identifies a document-type definition.
	DocumentTypeID uuid.UUID
	// RequirementID identifies a required-document row for a trip.
	RequirementID uuid.UUID
	// PassengerDocumentID identifies one uploaded document attempt.
	PassengerDocumentID uuid.UUID
	// VoucherID identifies a voucher record.
	VoucherID uuid.UUID
	// NotificationID identifies a notification record.
	NotificationID uuid.UUID
	// SubscriptionID identifies a web-push subscription.
	SubscriptionID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s id", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id cannot be nil", kind)
	}
	return u, nil
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

func ParsePassengerID(s string) (PassengerID, error) {
	u, err := parseUUID(s, "passenger")
	return PassengerID(u), err
}

func ParseTripID(s string) (TripID, error) {
	u, err := parseUUID(s, "trip")
	return TripID(u), err
}

func ParseDayID(s string) (DayID, error) {
	u, err := parseUUID(s, "day")
	return DayID(u), err
}

func ParseItemID(s string) (ItemID, error) {
	u, err := parseUUID(s, "item")
	return ItemID(u), err
}

func ParseDocumentTypeID(s string) (DocumentTypeID, error) {
	u, err := parseUUID(s, "document type")
	return DocumentTypeID(u), err
}

func ParseRequirementID(s string) (RequirementID, error) {
	u, err := parseUUID(s, "requirement")
	return RequirementID(u), err
}

func ParsePassengerDocumentID(s string) (PassengerDocumentID, error) {
	u, err := parseUUID(s, "passenger document")
	return PassengerDocumentID(u), err
}

func ParseVoucherID(s string) (VoucherID, error) {
	u, err := parseUUID(s, "voucher")
	return VoucherID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification")
	return NotificationID(u), err
}

func ParseSubscriptionID(s string) (SubscriptionID, error) {
	u, err := parseUUID(s, "subscription")
	return SubscriptionID(u), err
}

func (id UserID) String() string              { return uuid.UUID(id).String() }
func (id PassengerID) String() string         { return uuid.UUID(id).String() }
func (id TripID) String() string              { return uuid.UUID(id).String() }
func (id DayID) String() string               { return uuid.UUID(id).String() }
func (id ItemID) String() string              { return uuid.UUID(id).String() }
func (id DocumentTypeID) String() string      { return uuid.UUID(id).String() }
func (id RequirementID) String() string       { return uuid.UUID(id).String() }
func (id PassengerDocumentID) String() string { return uuid.UUID(id).String() }
func (id VoucherID) String() string           { return uuid.UUID(id).String() }
func (id NotificationID) String() string      { return uuid.UUID(id).String() }
func (id SubscriptionID) String() string      { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool              { return uuid.UUID(id) == uuid.Nil }
func (id PassengerID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id TripID) IsNil() bool              { return uuid.UUID(id) == uuid.Nil }
func (id DayID) IsNil() bool               { return uuid.UUID(id) == uuid.Nil }
func (id ItemID) IsNil() bool              { return uuid.UUID(id) == uuid.Nil }
func (id DocumentTypeID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id RequirementID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id PassengerDocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id VoucherID) IsNil() bool           { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id SubscriptionID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func NewUserID() UserID                           { return UserID(uuid.New()) }
func NewPassengerID() PassengerID                 { return PassengerID(uuid.New()) }
func NewTripID() TripID                           { return TripID(uuid.New()) }
func NewDayID() DayID                             { return DayID(uuid.New()) }
func NewItemID() ItemID                           { return ItemID(uuid.New()) }
func NewDocumentTypeID() DocumentTypeID           { return DocumentTypeID(uuid.New()) }
func NewRequirementID() RequirementID             { return RequirementID(uuid.New()) }
func NewPassengerDocumentID() PassengerDocumentID { return PassengerDocumentID(uuid.New()) }
func NewVoucherID() VoucherID                     { return VoucherID(uuid.New()) }
func NewNotificationID() NotificationID           { return NotificationID(uuid.New()) }
func NewSubscriptionID() SubscriptionID           { return SubscriptionID(uuid.New()) }
