package models

import dErrors "scouthub/pkg/domain-errors"

// Status is the closed set of instructor-application lifecycle states.
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusToFix       Status = "TO_FIX"
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusApproved    Status = "APPROVED"
	StatusRejected    Status = "REJECTED"
)

var validStatuses = map[Status]bool{
	StatusDraft:       true,
	StatusToFix:       true,
	StatusSubmitted:   true,
	StatusUnderReview: true,
	StatusApproved:    true,
	StatusRejected:    true,
}

// statusTransitions is the single source of truth for legal transitions.
// Role and fulfillment preconditions are layered on top by the state
// machine; anything absent here is illegal for every actor.
var statusTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusToFix:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected, StatusToFix},
}

// ParseStatus constructs a Status from external input.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown application status")
	}
	return status, nil
}

// IsValid checks whether the status is one of the closed set.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether the transition table declares s -> target.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsEditable is the single predicate gating every applicant mutation: an
// application's content may change only in DRAFT or TO_FIX. Values outside
// the closed status set are simply not editable.
func IsEditable(s Status) bool {
	return s == StatusDraft || s == StatusToFix
}
