package models

import (
	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// RequirementTemplate is a named, versioned slot an application must fill
// (e.g. "criminal-record certificate"). The catalog owns these; the core
// treats them as read-only reference data keyed by ID.
type RequirementTemplate struct {
	ID          id.TemplateID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Version     int           `json:"version"`
	Mandatory   bool          `json:"mandatory"`
	// Position fixes the catalog's declared ordering so user-facing
	// missing-requirement lists always render identically.
	Position int `json:"position"`
}

// NewRequirementTemplate validates catalog entries at seed time.
func NewRequirementTemplate(templateID id.TemplateID, name string, version int, mandatory bool, position int) (*RequirementTemplate, error) {
	if templateID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "template id cannot be zero")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "template name cannot be empty")
	}
	if version < 1 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "template version must be at least 1")
	}
	if position < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "template position cannot be negative")
	}
	return &RequirementTemplate{
		ID:        templateID,
		Name:      name,
		Version:   version,
		Mandatory: mandatory,
		Position:  position,
	}, nil
}
