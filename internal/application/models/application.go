package models

import (
	"time"

	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// InstructorApplication is the aggregate root for one user's path to the
// instructor role.
//
// Invariants:
//   - Status is one of the closed status set; transitions only through the
//     state machine (never by assigning Status directly outside a store)
//   - ApplicantID is immutable after construction
//   - Attachments cannot exist without the parent application
//   - The aggregate cannot reach SUBMITTED unless every mandatory
//     requirement template holds at least one non-rejected attachment
//   - APPROVED and REJECTED are terminal
//
// Concurrency: the aggregate itself is a plain in-memory value; lost-update
// protection lives at the store boundary, where status writes are
// conditioned on the status the caller last observed.
type InstructorApplication struct {
	ID          id.ApplicationID `json:"id"`
	ApplicantID id.UserID        `json:"applicant_id"`
	Status      Status           `json:"status"`
	Attachments []Attachment     `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewInstructorApplication creates an application in DRAFT for the given
// applicant.
func NewInstructorApplication(appID id.ApplicationID, applicantID id.UserID, now time.Time) (*InstructorApplication, error) {
	if appID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "application id cannot be zero")
	}
	if applicantID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "applicant id cannot be zero")
	}
	return &InstructorApplication{
		ID:          appID,
		ApplicantID: applicantID,
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsEditable reports whether the owning applicant may still mutate content.
func (a *InstructorApplication) IsEditable() bool {
	return IsEditable(a.Status)
}

// IsOwnedBy reports whether userID is the owning applicant.
func (a *InstructorApplication) IsOwnedBy(userID id.UserID) bool {
	return a.ApplicantID == userID
}

// FindAttachment returns the attachment with the given id, if present.
func (a *InstructorApplication) FindAttachment(attachmentID id.AttachmentID) (*Attachment, bool) {
	for i := range a.Attachments {
		if a.Attachments[i].ID == attachmentID {
			return &a.Attachments[i], true
		}
	}
	return nil, false
}

// AttachmentsForTemplate returns every attachment referencing the template
// slot, in upload order.
func (a *InstructorApplication) AttachmentsForTemplate(templateID id.TemplateID) []Attachment {
	var out []Attachment
	for _, att := range a.Attachments {
		if att.TemplateID == templateID {
			out = append(out, att)
		}
	}
	return out
}
