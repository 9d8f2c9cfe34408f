package models

import (
	"time"

	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// ReviewStatus is the per-attachment reviewer verdict state.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewAccepted ReviewStatus = "accepted"
	ReviewRejected ReviewStatus = "rejected"
)

var validReviewStatuses = map[ReviewStatus]bool{
	ReviewPending:  true,
	ReviewAccepted: true,
	ReviewRejected: true,
}

// ParseReviewStatus constructs a ReviewStatus from external input.
func ParseReviewStatus(s string) (ReviewStatus, error) {
	rs := ReviewStatus(s)
	if !validReviewStatuses[rs] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown review status")
	}
	return rs, nil
}

// IsVerdict reports whether the status is a final reviewer decision.
func (rs ReviewStatus) IsVerdict() bool {
	return rs == ReviewAccepted || rs == ReviewRejected
}

// Attachment is a file the applicant uploaded against one requirement
// template slot.
//
// Invariants:
//   - Belongs to exactly one application and references exactly one template
//   - FileName and ContentType are non-empty
//   - ReviewStatus starts pending; a verdict (accepted/rejected) is final
//     per attachment - a rejected slot is re-filled by uploading a new
//     attachment, never by flipping the old verdict
type Attachment struct {
	ID            id.AttachmentID  `json:"id"`
	ApplicationID id.ApplicationID `json:"application_id"`
	TemplateID    id.TemplateID    `json:"template_id"`
	FileName      string           `json:"file_name"`
	ContentType   string           `json:"content_type"`
	ObjectKey     string           `json:"-"`
	ReviewStatus  ReviewStatus     `json:"review_status"`
	ReviewedBy    id.UserID        `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// NewAttachment creates a pending attachment for one template slot.
func NewAttachment(
	attachmentID id.AttachmentID,
	applicationID id.ApplicationID,
	templateID id.TemplateID,
	fileName string,
	contentType string,
	objectKey string,
	now time.Time,
) (*Attachment, error) {
	if attachmentID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attachment id cannot be zero")
	}
	if applicationID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attachment requires a parent application")
	}
	if templateID.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attachment must reference a requirement template")
	}
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file name cannot be empty")
	}
	if contentType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "content type cannot be empty")
	}
	return &Attachment{
		ID:            attachmentID,
		ApplicationID: applicationID,
		TemplateID:    templateID,
		FileName:      fileName,
		ContentType:   contentType,
		ObjectKey:     objectKey,
		ReviewStatus:  ReviewPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CanReview checks whether a reviewer verdict may still be applied.
// Use with ApplyVerdict for the Can/Apply separation used by Execute callbacks.
func (a *Attachment) CanReview() error {
	if a.ReviewStatus != ReviewPending {
		return dErrors.New(dErrors.CodeInvariantViolation, "attachment already carries a verdict")
	}
	return nil
}

// ApplyVerdict records the reviewer decision. Call CanReview first.
func (a *Attachment) ApplyVerdict(verdict ReviewStatus, reviewer id.UserID, now time.Time) {
	a.ReviewStatus = verdict
	a.ReviewedBy = reviewer
	a.UpdatedAt = now
}

// Review validates and applies a verdict in one call.
func (a *Attachment) Review(verdict ReviewStatus, reviewer id.UserID, now time.Time) error {
	if !verdict.IsVerdict() {
		return dErrors.New(dErrors.CodeInvalidInput, "verdict must be accepted or rejected")
	}
	if err := a.CanReview(); err != nil {
		return err
	}
	a.ApplyVerdict(verdict, reviewer, now)
	return nil
}
