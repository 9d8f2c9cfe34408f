package audit

import (
	"time"

	id "scouthub/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	UserID        id.UserID        `json:"user_id"`
	ActorID       id.UserID        `json:"actor_id"`
	ActorRole     string           `json:"actor_role,omitempty"`
	ApplicationID id.ApplicationID `json:"application_id,omitempty"`
	Action        string           `json:"action"`
	Detail        string           `json:"detail,omitempty"`
	RequestID     string           `json:"request_id,omitempty"`
}

// Audit actions emitted by the application module.
const (
	EventApplicationCreated   = "application_created"
	EventApplicationSubmitted = "application_submitted"
	EventReviewStarted        = "application_review_started"
	EventApplicationApproved  = "application_approved"
	EventApplicationRejected  = "application_rejected"
	EventReturnedForFix       = "application_returned_for_fix"
	EventAttachmentAdded      = "attachment_added"
	EventAttachmentRemoved    = "attachment_removed"
	EventAttachmentReviewed   = "attachment_reviewed"
)
