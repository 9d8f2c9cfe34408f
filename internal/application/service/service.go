// Package service orchestrates the instructor-application lifecycle: create,
// attachment management, submission, and review transitions. It owns the
// authorization decisions (ownership vs staff rank), delegates transition
// legality to the state machine, and translates store sentinels into typed
// domain errors.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"scouthub/internal/application/metrics"
	"scouthub/internal/application/models"
	"scouthub/internal/application/preview"
	"scouthub/internal/application/statemachine"
	"scouthub/internal/audit"
	"scouthub/internal/principal"
	"scouthub/internal/storage"
	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
	"scouthub/pkg/platform/sentinel"
	"scouthub/pkg/requestcontext"
)

// ApplicationStore persists instructor applications. Every mutation carries
// its own precondition (observed status, editability, pending verdict) so a
// stale caller gets sentinel.ErrConflict instead of silently clobbering a
// concurrent writer.
type ApplicationStore interface {
	Create(ctx context.Context, app *models.InstructorApplication) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.InstructorApplication, error)
	ListByApplicant(ctx context.Context, applicantID id.UserID) ([]*models.InstructorApplication, error)
	List(ctx context.Context) ([]*models.InstructorApplication, error)
	UpdateStatus(ctx context.Context, appID id.ApplicationID, expected, next models.Status, now time.Time) error
	AddAttachment(ctx context.Context, att *models.Attachment) error
	RemoveAttachment(ctx context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, now time.Time) error
	SetAttachmentVerdict(ctx context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, verdict models.ReviewStatus, reviewer id.UserID, now time.Time) error
}

// TemplateCatalog provides the requirement templates applicants upload
// against. Read-mostly; implementations may cache.
type TemplateCatalog interface {
	List(ctx context.Context) ([]models.RequirementTemplate, error)
	FindByID(ctx context.Context, templateID id.TemplateID) (*models.RequirementTemplate, error)
}

// AuditPublisher records lifecycle events. Failures are logged, never
// surfaced: audit must not break the business operation.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ProfileChecker answers whether an applicant's member profile is complete
// enough to start an application. Backed by the membership system in
// production; the service only relays the answer.
type ProfileChecker interface {
	Check(ctx context.Context, userID id.UserID) (*models.ProfileCheckResult, error)
}

// Service implements the instructor-application operations.
type Service struct {
	apps        ApplicationStore
	templates   TemplateCatalog
	objects     storage.ObjectURLProvider
	profile     ProfileChecker
	audit       AuditPublisher
	logger      *slog.Logger
	metrics     *metrics.Metrics
	downloadTTL time.Duration
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithProfileChecker(c ProfileChecker) Option {
	return func(s *Service) { s.profile = c }
}

// WithDownloadTTL overrides the lifetime of issued download URLs.
func WithDownloadTTL(ttl time.Duration) Option {
	return func(s *Service) { s.downloadTTL = ttl }
}

func New(apps ApplicationStore, templates TemplateCatalog, objects storage.ObjectURLProvider, opts ...Option) *Service {
	s := &Service{
		apps:        apps,
		templates:   templates,
		objects:     objects,
		logger:      slog.Default(),
		downloadTTL: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a DRAFT application for the acting applicant. One open
// application per applicant: a second create while a non-terminal one exists
// fails with CONFLICT.
func (s *Service) Create(ctx context.Context, actor *principal.AuthPrincipal) (*models.InstructorApplication, error) {
	now := requestcontext.Now(ctx)
	app, err := models.NewInstructorApplication(id.NewApplicationID(), actor.UserID, now)
	if err != nil {
		return nil, err
	}

	if err := s.apps.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "an open application already exists for this applicant")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create application")
	}

	if s.metrics != nil {
		s.metrics.ApplicationsCreated.Inc()
	}
	s.emitAudit(ctx, actor, app, audit.EventApplicationCreated, "")
	s.logger.InfoContext(ctx, "instructor application created",
		"application_id", app.ID.String(),
		"applicant_id", actor.UserID.String(),
	)
	return app, nil
}

// Get loads one application. Applicants see only their own; staff see any.
func (s *Service) Get(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID) (*models.InstructorApplication, error) {
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns the applications visible to the actor: their own for plain
// users, the full set for staff.
func (s *Service) List(ctx context.Context, actor *principal.AuthPrincipal) ([]*models.InstructorApplication, error) {
	var (
		apps []*models.InstructorApplication
		err  error
	)
	if actor.IsStaff() {
		apps, err = s.apps.List(ctx)
	} else {
		apps, err = s.apps.ListByApplicant(ctx, actor.UserID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list applications")
	}
	return apps, nil
}

// Templates returns the requirement template catalog in display order.
func (s *Service) Templates(ctx context.Context) ([]models.RequirementTemplate, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load requirement templates")
	}
	return templates, nil
}

// ProfileCheck reports whether the actor's member profile is complete enough
// to apply. Without a configured checker the profile is assumed complete.
func (s *Service) ProfileCheck(ctx context.Context, actor *principal.AuthPrincipal) (*models.ProfileCheckResult, error) {
	if s.profile == nil {
		return &models.ProfileCheckResult{Complete: true}, nil
	}
	result, err := s.profile.Check(ctx, actor.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "profile check failed")
	}
	return result, nil
}

// AddAttachment registers a file against one requirement template slot and
// returns the attachment plus a one-time upload URL for the binary. Only the
// owning applicant may attach, and only while the application is editable.
func (s *Service) AddAttachment(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID, req *models.AddAttachmentRequest) (*models.Attachment, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, "", err
	}
	if !app.IsOwnedBy(actor.UserID) {
		return nil, "", dErrors.New(dErrors.CodeForbidden, "only the owning applicant may modify attachments")
	}
	if !app.IsEditable() {
		return nil, "", dErrors.New(dErrors.CodeInvariantViolation, "application content can no longer be edited in status "+string(app.Status))
	}

	if _, err := s.templates.FindByID(ctx, req.ParsedTemplateID()); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", dErrors.New(dErrors.CodeNotFound, "requirement template not found")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not resolve requirement template")
	}

	objectKey, err := storage.NewObjectKey()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not allocate storage for attachment")
	}

	now := requestcontext.Now(ctx)
	att, err := models.NewAttachment(id.NewAttachmentID(), app.ID, req.ParsedTemplateID(), req.FileName, req.ContentType, objectKey, now)
	if err != nil {
		return nil, "", err
	}

	if err := s.apps.AddAttachment(ctx, att); err != nil {
		return nil, "", s.translateAttachmentWriteError(err)
	}

	uploadURL, err := s.objects.UploadURL(ctx, att.ObjectKey, att.ContentType)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "could not issue upload URL")
	}

	s.emitAudit(ctx, actor, app, audit.EventAttachmentAdded, att.FileName)
	return att, uploadURL, nil
}

// RemoveAttachment deletes an attachment. Same gate as AddAttachment: owner
// only, editable statuses only.
func (s *Service) RemoveAttachment(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID, attachmentID id.AttachmentID) error {
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return err
	}
	if !app.IsOwnedBy(actor.UserID) {
		return dErrors.New(dErrors.CodeForbidden, "only the owning applicant may modify attachments")
	}
	if !app.IsEditable() {
		return dErrors.New(dErrors.CodeInvariantViolation, "application content can no longer be edited in status "+string(app.Status))
	}

	att, ok := app.FindAttachment(attachmentID)
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}

	if err := s.apps.RemoveAttachment(ctx, appID, attachmentID, requestcontext.Now(ctx)); err != nil {
		return s.translateAttachmentWriteError(err)
	}

	s.emitAudit(ctx, actor, app, audit.EventAttachmentRemoved, att.FileName)
	return nil
}

// AttachmentDownloadURL issues a time-limited download URL for one
// attachment. inline is honored only for content types on the preview
// allow-list; everything else is forced to attachment disposition.
func (s *Service) AttachmentDownloadURL(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID, attachmentID id.AttachmentID, inline bool) (string, error) {
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return "", err
	}
	if err := s.authorizeRead(actor, app); err != nil {
		return "", err
	}

	att, ok := app.FindAttachment(attachmentID)
	if !ok {
		return "", dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}

	inline = inline && preview.AllowsInlinePreview(att.ContentType)
	url, err := s.objects.DownloadURL(ctx, att.ObjectKey, att.FileName, inline, s.downloadTTL)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not issue download URL")
	}
	return url, nil
}

// ReviewAttachment records a staff verdict on one attachment. Verdicts are
// final per attachment; a rejected slot is refilled by a new upload once the
// application returns to an editable status.
func (s *Service) ReviewAttachment(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID, attachmentID id.AttachmentID, verdict models.ReviewStatus) (*models.Attachment, error) {
	if !actor.Role.IsHigherThanUser() {
		return nil, dErrors.New(dErrors.CodeForbidden, "attachment review requires a staff role")
	}

	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusSubmitted && app.Status != models.StatusUnderReview {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "attachment verdicts are only recorded during review")
	}

	att, ok := app.FindAttachment(attachmentID)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "attachment not found")
	}
	if err := att.CanReview(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.apps.SetAttachmentVerdict(ctx, appID, attachmentID, verdict, actor.UserID, now); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "attachment already carries a verdict")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attachment not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record attachment verdict")
	}
	att.ApplyVerdict(verdict, actor.UserID, now)

	s.emitAudit(ctx, actor, app, audit.EventAttachmentReviewed, att.FileName+": "+string(verdict))
	return att, nil
}

// Submit moves the actor's application from an editable status to SUBMITTED,
// enforcing the fulfillment gate.
func (s *Service) Submit(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID) (*models.InstructorApplication, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSubmit(start)
		}
	}()

	app, err := s.Transition(ctx, actor, appID, models.StatusSubmitted)
	if err != nil {
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodeSubmissionIncomplete) {
			s.metrics.SubmissionsIncomplete.Inc()
		}
		return nil, err
	}
	return app, nil
}

// Transition drives the application to the target status through the state
// machine and commits the result conditioned on the observed status. A lost
// race surfaces as CONFLICT so the caller can re-read and retry.
func (s *Service) Transition(ctx context.Context, actor *principal.AuthPrincipal, appID id.ApplicationID, target models.Status) (*models.InstructorApplication, error) {
	app, err := s.loadApplication(ctx, appID)
	if err != nil {
		return nil, err
	}

	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load requirement templates")
	}

	decision, err := statemachine.Decide(app, target, actor, templates)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	if err := s.apps.UpdateStatus(ctx, appID, decision.Previous, decision.Next, now); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			if s.metrics != nil {
				s.metrics.TransitionConflicts.Inc()
			}
			return nil, dErrors.New(dErrors.CodeConflict, "application changed concurrently, re-read and retry")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not commit status transition")
	}

	app.Status = decision.Next
	app.UpdatedAt = now

	if s.metrics != nil {
		s.metrics.IncrementTransition(string(decision.Next))
	}
	s.emitAudit(ctx, actor, app, actionForTransition(decision.Next), string(decision.Previous)+" -> "+string(decision.Next))
	s.logger.InfoContext(ctx, "application status transition",
		"application_id", app.ID.String(),
		"from", string(decision.Previous),
		"to", string(decision.Next),
		"actor_role", string(actor.Role),
	)

	if decision.NotifyReviewerPool {
		s.logger.InfoContext(ctx, "notifying reviewer pool of new submission",
			"application_id", app.ID.String(),
		)
	}
	return app, nil
}

func (s *Service) loadApplication(ctx context.Context, appID id.ApplicationID) (*models.InstructorApplication, error) {
	app, err := s.apps.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load application")
	}
	return app, nil
}

// authorizeRead gates read access: owners and staff only.
func (s *Service) authorizeRead(actor *principal.AuthPrincipal, app *models.InstructorApplication) error {
	if app.IsOwnedBy(actor.UserID) || actor.IsStaff() {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, "application belongs to another applicant")
}

// translateAttachmentWriteError maps store sentinels from attachment writes.
// A conflict here means the application left an editable status between the
// service's read and the store's conditional write.
func (s *Service) translateAttachmentWriteError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "application changed concurrently, re-read and retry")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not persist attachment change")
	}
}

func (s *Service) emitAudit(ctx context.Context, actor *principal.AuthPrincipal, app *models.InstructorApplication, action, detail string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Timestamp:     requestcontext.Now(ctx),
		UserID:        app.ApplicantID,
		ActorID:       actor.UserID,
		ActorRole:     string(actor.Role),
		ApplicationID: app.ID,
		Action:        action,
		Detail:        detail,
		RequestID:     requestcontext.RequestID(ctx),
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
			"application_id", app.ID.String(),
		)
		return
	}
	s.logger.InfoContext(ctx, action,
		"log_type", "audit",
		"application_id", app.ID.String(),
		"actor_id", actor.UserID.String(),
		"actor_role", string(actor.Role),
	)
}

func actionForTransition(target models.Status) string {
	switch target {
	case models.StatusSubmitted:
		return audit.EventApplicationSubmitted
	case models.StatusUnderReview:
		return audit.EventReviewStarted
	case models.StatusApproved:
		return audit.EventApplicationApproved
	case models.StatusRejected:
		return audit.EventApplicationRejected
	case models.StatusToFix:
		return audit.EventReturnedForFix
	default:
		return "application_status_changed"
	}
}
