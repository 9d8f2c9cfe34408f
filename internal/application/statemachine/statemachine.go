// Package statemachine decides instructor-application status transitions.
//
// Decide is a pure function over an in-memory snapshot: it layers the actor
// gate (owner vs staff rank) and the submission fulfillment gate on top of
// the status transition table and returns either the committed next status
// plus side-effect instructions, or a typed failure. Applying the decision
// is the caller's job, conditioned on the observed status still being
// current at the store (stale decisions are never silently applied).
package statemachine

import (
	"fmt"

	"scouthub/internal/application/fulfillment"
	"scouthub/internal/application/models"
	"scouthub/internal/principal"
	dErrors "scouthub/pkg/domain-errors"
)

// Decision is the successful outcome of a transition attempt.
type Decision struct {
	// Previous is the status the decision was computed against. Persistence
	// must condition the write on this still being current.
	Previous models.Status
	// Next is the committed target status.
	Next models.Status
	// NotifyReviewerPool instructs the caller to announce a fresh submission
	// to reviewers.
	NotifyReviewerPool bool
}

// Decide evaluates a transition attempt by actor against the application
// snapshot. templates is the full catalog, consulted only for submission
// attempts.
//
// Errors: ILLEGAL_TRANSITION when the (source, target) pair is not declared
// or the actor's role may not drive it; FORBIDDEN when a submission is
// attempted by anyone but the owning applicant; SUBMISSION_INCOMPLETE,
// carrying the missing template names, when mandatory slots are unfilled.
func Decide(
	app *models.InstructorApplication,
	target models.Status,
	actor *principal.AuthPrincipal,
	templates []models.RequirementTemplate,
) (*Decision, error) {
	if !target.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown target status")
	}
	if !app.Status.CanTransitionTo(target) {
		return nil, illegalTransition(app.Status, target, actor)
	}

	if target == models.StatusSubmitted {
		return decideSubmission(app, actor, templates)
	}

	// Everything past submission is reviewer territory.
	if !actor.Role.IsHigherThanUser() {
		return nil, illegalTransition(app.Status, target, actor)
	}
	return &Decision{Previous: app.Status, Next: target}, nil
}

func decideSubmission(
	app *models.InstructorApplication,
	actor *principal.AuthPrincipal,
	templates []models.RequirementTemplate,
) (*Decision, error) {
	if !app.IsOwnedBy(actor.UserID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the owning applicant may submit")
	}

	missing := fulfillment.Missing(app, templates)
	if len(missing) > 0 {
		err := dErrors.New(dErrors.CodeSubmissionIncomplete, "mandatory requirements are not fulfilled")
		for _, tpl := range missing {
			err.AddFieldViolation("missing_templates", tpl.Name)
		}
		return nil, err
	}

	return &Decision{Previous: app.Status, Next: models.StatusSubmitted, NotifyReviewerPool: true}, nil
}

func illegalTransition(from, to models.Status, actor *principal.AuthPrincipal) error {
	return dErrors.New(
		dErrors.CodeIllegalTransition,
		fmt.Sprintf("transition %s -> %s is not allowed for role %s", from, to, actor.Role),
	)
}
