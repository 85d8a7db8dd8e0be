// Package domain holds typed identifiers shared across modules. Distinct types
// keep a ticket ID from being passed where a profile ID is expected.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "safereturn/pkg/domain-errors"
)

type (
	ProfileID      uuid.UUID
	CheckInID      uuid.UUID
	TicketID       uuid.UUID
	NotificationID uuid.UUID
	WorkerID       uuid.UUID
)

// NationalID is the ten digit civil identifier used as the intake key.
type NationalID string

func NewProfileID() ProfileID           { return ProfileID(uuid.New()) }
func NewCheckInID() CheckInID           { return CheckInID(uuid.New()) }
func NewTicketID() TicketID             { return TicketID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

func (id ProfileID) String() string      { return uuid.UUID(id).String() }
func (id CheckInID) String() string      { return uuid.UUID(id).String() }
func (id TicketID) String() string       { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id WorkerID) String() string       { return uuid.UUID(id).String() }

func (id ProfileID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TicketID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id WorkerID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

func (id ProfileID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id CheckInID) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }
func (id TicketID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id WorkerID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }

func ParseProfileID(s string) (ProfileID, error) {
	u, err := parseUUID(s, "profile_id")
	return ProfileID(u), err
}

func ParseCheckInID(s string) (CheckInID, error) {
	u, err := parseUUID(s, "checkin_id")
	return CheckInID(u), err
}

func ParseTicketID(s string) (TicketID, error) {
	u, err := parseUUID(s, "ticket_id")
	return TicketID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification_id")
	return NotificationID(u), err
}

func ParseWorkerID(s string) (WorkerID, error) {
	u, err := parseUUID(s, "worker_id")
	return WorkerID(u), err
}

// ParseNationalID accepts exactly ten ASCII digits.
func ParseNationalID(s string) (NationalID, error) {
	s = strings.TrimSpace(s)
	if len(s) != 10 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "national_id must be 10 digits")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "national_id must be 10 digits")
		}
	}
	return NationalID(s), nil
}

func parseUUID(s, field string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}
