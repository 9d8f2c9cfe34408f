// Package domain holds shared domain value types: typed identifiers and the
// role hierarchy. Types here are constructed at trust boundaries via the
// ParseXxx functions; direct casting bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "scouthub/pkg/domain-errors"
)

// Typed UUID identifiers. Distinct types prevent cross-entity assignment at
// compile time (an ApplicationID can never be passed where a UserID is
// expected).
type (
	UserID        uuid.UUID
	ApplicationID uuid.UUID
	AttachmentID  uuid.UUID
	TemplateID    uuid.UUID
)

func (id UserID) String() string        { return uuid.UUID(id).String() }
func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id AttachmentID) String() string  { return uuid.UUID(id).String() }
func (id TemplateID) String() string    { return uuid.UUID(id).String() }

func (id UserID) IsZero() bool        { return uuid.UUID(id) == uuid.Nil }
func (id ApplicationID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }
func (id AttachmentID) IsZero() bool  { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsZero() bool    { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's marshalers, so each ID
// implements encoding.TextMarshaler/TextUnmarshaler explicitly. Without
// these, JSON (and every JSON-backed surface: responses, the redis cache,
// kafka payloads) would render IDs as raw 16-byte arrays instead of the
// canonical string form the ParseXxx constructors accept.

func (id UserID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id ApplicationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id AttachmentID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id TemplateID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(data []byte) error        { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *ApplicationID) UnmarshalText(data []byte) error { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *AttachmentID) UnmarshalText(data []byte) error  { return (*uuid.UUID)(id).UnmarshalText(data) }
func (id *TemplateID) UnmarshalText(data []byte) error    { return (*uuid.UUID)(id).UnmarshalText(data) }

// NewUserID generates a fresh user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewApplicationID generates a fresh application identifier.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewAttachmentID generates a fresh attachment identifier.
func NewAttachmentID() AttachmentID { return AttachmentID(uuid.New()) }

// NewTemplateID generates a fresh template identifier.
func NewTemplateID() TemplateID { return TemplateID(uuid.New()) }

// parseUUID enforces the shared parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseUserID constructs a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user id")
	return UserID(parsed), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	parsed, err := parseUUID(s, "application id")
	return ApplicationID(parsed), err
}

// ParseAttachmentID constructs an AttachmentID from external input.
func ParseAttachmentID(s string) (AttachmentID, error) {
	parsed, err := parseUUID(s, "attachment id")
	return AttachmentID(parsed), err
}

// ParseTemplateID constructs a TemplateID from external input.
func ParseTemplateID(s string) (TemplateID, error) {
	parsed, err := parseUUID(s, "template id")
	return TemplateID(parsed), err
}
