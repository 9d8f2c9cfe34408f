package service_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"scouthub/internal/application/models"
	"scouthub/internal/application/service"
	appstore "scouthub/internal/application/store/application"
	templatestore "scouthub/internal/application/store/template"
	"scouthub/internal/audit"
	"scouthub/internal/principal"
	"scouthub/internal/storage"
	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

type ServiceSuite struct {
	suite.Suite

	apps      *appstore.InMemory
	auditLog  *audit.Publisher
	svc       *service.Service
	applicant *principal.AuthPrincipal
	reviewer  *principal.AuthPrincipal
	catalog   []models.RequirementTemplate
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.apps = appstore.NewInMemory()
	s.auditLog = audit.NewPublisher(audit.NewInMemoryStore())
	s.catalog = templatestore.SeedCatalog()

	s.svc = service.New(
		s.apps,
		templatestore.NewInMemory(s.catalog...),
		storage.NewHMACSigner("http://objects.local", "test-signing-key"),
		service.WithAuditPublisher(s.auditLog),
	)

	s.applicant = &principal.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleUser, Username: "applicant"}
	s.reviewer = &principal.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleCommissionMember, Username: "reviewer"}
}

func (s *ServiceSuite) mandatoryTemplates() []models.RequirementTemplate {
	var out []models.RequirementTemplate
	for _, tpl := range s.catalog {
		if tpl.Mandatory {
			out = append(out, tpl)
		}
	}
	return out
}

func (s *ServiceSuite) createApplication() *models.InstructorApplication {
	app, err := s.svc.Create(context.Background(), s.applicant)
	s.Require().NoError(err)
	return app
}

// fulfillMandatory uploads one attachment per mandatory template.
func (s *ServiceSuite) fulfillMandatory(appID id.ApplicationID) {
	for _, tpl := range s.mandatoryTemplates() {
		req := &models.AddAttachmentRequest{
			TemplateID:  tpl.ID.String(),
			FileName:    tpl.Name + ".pdf",
			ContentType: "application/pdf",
		}
		_, _, err := s.svc.AddAttachment(context.Background(), s.applicant, appID, req)
		s.Require().NoError(err)
	}
}

func (s *ServiceSuite) TestCreate() {
	s.Run("creates a draft owned by the applicant", func() {
		app := s.createApplication()
		s.Equal(models.StatusDraft, app.Status)
		s.Equal(s.applicant.UserID, app.ApplicantID)
		s.Empty(app.Attachments)

		events, err := s.auditLog.List(context.Background(), s.applicant.UserID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.EventApplicationCreated, events[0].Action)
	})

	s.Run("second open application conflicts", func() {
		_, err := s.svc.Create(context.Background(), s.applicant)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *ServiceSuite) TestGetAuthorization() {
	app := s.createApplication()

	s.Run("owner reads own application", func() {
		got, err := s.svc.Get(context.Background(), s.applicant, app.ID)
		s.Require().NoError(err)
		s.Equal(app.ID, got.ID)
	})

	s.Run("staff reads any application", func() {
		_, err := s.svc.Get(context.Background(), s.reviewer, app.ID)
		s.NoError(err)
	})

	s.Run("other plain users are forbidden", func() {
		stranger := &principal.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleUser}
		_, err := s.svc.Get(context.Background(), stranger, app.ID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing application", func() {
		_, err := s.svc.Get(context.Background(), s.applicant, id.NewApplicationID())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAddAttachment() {
	app := s.createApplication()
	tpl := s.mandatoryTemplates()[0]

	s.Run("returns the attachment and an upload URL", func() {
		req := &models.AddAttachmentRequest{
			TemplateID:  tpl.ID.String(),
			FileName:    "medical.pdf",
			ContentType: "application/pdf",
		}
		att, uploadURL, err := s.svc.AddAttachment(context.Background(), s.applicant, app.ID, req)
		s.Require().NoError(err)
		s.Equal(models.ReviewPending, att.ReviewStatus)
		s.Equal(tpl.ID, att.TemplateID)
		s.Contains(uploadURL, "http://objects.local/upload/")
		s.Contains(uploadURL, "signature=")
	})

	s.Run("reports every invalid field at once", func() {
		_, _, err := s.svc.AddAttachment(context.Background(), s.applicant, app.ID, &models.AddAttachmentRequest{TemplateID: "nope"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		fields := dErrors.FieldsOf(err)
		s.Contains(fields, "template_id")
		s.Contains(fields, "file_name")
		s.Contains(fields, "content_type")
	})

	s.Run("unknown template", func() {
		req := &models.AddAttachmentRequest{
			TemplateID:  id.NewTemplateID().String(),
			FileName:    "x.pdf",
			ContentType: "application/pdf",
		}
		_, _, err := s.svc.AddAttachment(context.Background(), s.applicant, app.ID, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("non-owner is forbidden even with staff rank", func() {
		req := &models.AddAttachmentRequest{
			TemplateID:  tpl.ID.String(),
			FileName:    "x.pdf",
			ContentType: "application/pdf",
		}
		_, _, err := s.svc.AddAttachment(context.Background(), s.reviewer, app.ID, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ServiceSuite) TestAttachmentEditsBlockedAfterSubmission() {
	app := s.createApplication()
	s.fulfillMandatory(app.ID)
	_, err := s.svc.Submit(context.Background(), s.applicant, app.ID)
	s.Require().NoError(err)

	tpl := s.mandatoryTemplates()[0]
	req := &models.AddAttachmentRequest{
		TemplateID:  tpl.ID.String(),
		FileName:    "late.pdf",
		ContentType: "application/pdf",
	}
	_, _, err = s.svc.AddAttachment(context.Background(), s.applicant, app.ID, req)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	submitted, err := s.svc.Get(context.Background(), s.applicant, app.ID)
	s.Require().NoError(err)
	err = s.svc.RemoveAttachment(context.Background(), s.applicant, app.ID, submitted.Attachments[0].ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *ServiceSuite) TestSubmitIncomplete() {
	app := s.createApplication()

	_, err := s.svc.Submit(context.Background(), s.applicant, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionIncomplete))

	missing := dErrors.FieldsOf(err)["missing_templates"]
	s.Require().Len(missing, len(s.mandatoryTemplates()))
	// Missing list follows catalog position order.
	for i, tpl := range s.mandatoryTemplates() {
		s.Equal(tpl.Name, missing[i])
	}

	// Still in DRAFT after the failed submit.
	got, err := s.svc.Get(context.Background(), s.applicant, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusDraft, got.Status)
}

func (s *ServiceSuite) TestConcurrentSubmitsOneWins() {
	app := s.createApplication()
	s.fulfillMandatory(app.ID)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Submit(context.Background(), s.applicant, app.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case dErrors.HasCode(err, dErrors.CodeConflict) || dErrors.HasCode(err, dErrors.CodeIllegalTransition):
			// Losers either failed the conditional write or re-read the
			// already-submitted status before deciding.
			conflicts++
		default:
			s.Failf("unexpected error", "got %v", err)
		}
	}
	s.Equal(1, wins)
	s.Equal(attempts-1, conflicts)

	got, err := s.svc.Get(context.Background(), s.applicant, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, got.Status)
}

func (s *ServiceSuite) TestReviewAttachment() {
	app := s.createApplication()
	s.fulfillMandatory(app.ID)

	attachmentID := func() id.AttachmentID {
		got, err := s.svc.Get(context.Background(), s.applicant, app.ID)
		s.Require().NoError(err)
		return got.Attachments[0].ID
	}()

	s.Run("rejected outside review statuses", func() {
		_, err := s.svc.ReviewAttachment(context.Background(), s.reviewer, app.ID, attachmentID, models.ReviewAccepted)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	_, err := s.svc.Submit(context.Background(), s.applicant, app.ID)
	s.Require().NoError(err)

	s.Run("plain users may not review", func() {
		_, err := s.svc.ReviewAttachment(context.Background(), s.applicant, app.ID, attachmentID, models.ReviewAccepted)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("staff verdict is recorded once", func() {
		att, err := s.svc.ReviewAttachment(context.Background(), s.reviewer, app.ID, attachmentID, models.ReviewAccepted)
		s.Require().NoError(err)
		s.Equal(models.ReviewAccepted, att.ReviewStatus)
		s.Equal(s.reviewer.UserID, att.ReviewedBy)

		_, err = s.svc.ReviewAttachment(context.Background(), s.reviewer, app.ID, attachmentID, models.ReviewRejected)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ServiceSuite) TestDownloadURLDispositions() {
	app := s.createApplication()
	tpl := s.mandatoryTemplates()[0]

	pdf, _, err := s.svc.AddAttachment(context.Background(), s.applicant, app.ID, &models.AddAttachmentRequest{
		TemplateID:  tpl.ID.String(),
		FileName:    "scan.pdf",
		ContentType: "application/pdf",
	})
	s.Require().NoError(err)

	archive, _, err := s.svc.AddAttachment(context.Background(), s.applicant, app.ID, &models.AddAttachmentRequest{
		TemplateID:  tpl.ID.String(),
		FileName:    "bundle.zip",
		ContentType: "application/zip",
	})
	s.Require().NoError(err)

	s.Run("inline honored for previewable types", func() {
		url, err := s.svc.AttachmentDownloadURL(context.Background(), s.applicant, app.ID, pdf.ID, true)
		s.Require().NoError(err)
		s.Contains(url, "disposition=inline")
	})

	s.Run("inline forced to attachment for everything else", func() {
		url, err := s.svc.AttachmentDownloadURL(context.Background(), s.applicant, app.ID, archive.ID, true)
		s.Require().NoError(err)
		s.Contains(url, "disposition=attachment")
		s.False(strings.Contains(url, "disposition=inline"))
	})

	s.Run("without inline everything downloads", func() {
		url, err := s.svc.AttachmentDownloadURL(context.Background(), s.applicant, app.ID, pdf.ID, false)
		s.Require().NoError(err)
		s.Contains(url, "disposition=attachment")
	})
}

// TestFullLifecycle walks one application through the complete review loop:
// draft, submit, review, back for fixes, resubmit, approve.
func (s *ServiceSuite) TestFullLifecycle() {
	ctx := context.Background()
	app := s.createApplication()
	s.fulfillMandatory(app.ID)

	submitted, err := s.svc.Submit(ctx, s.applicant, app.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusSubmitted, submitted.Status)

	underReview, err := s.svc.Transition(ctx, s.reviewer, app.ID, models.StatusUnderReview)
	s.Require().NoError(err)
	s.Equal(models.StatusUnderReview, underReview.Status)

	// Reviewer rejects one attachment and sends the application back.
	rejectedID := underReview.Attachments[0].ID
	_, err = s.svc.ReviewAttachment(ctx, s.reviewer, app.ID, rejectedID, models.ReviewRejected)
	s.Require().NoError(err)

	toFix, err := s.svc.Transition(ctx, s.reviewer, app.ID, models.StatusToFix)
	s.Require().NoError(err)
	s.Equal(models.StatusToFix, toFix.Status)

	// Attachments and their verdicts survive the round trip.
	got, err := s.svc.Get(ctx, s.applicant, app.ID)
	s.Require().NoError(err)
	s.Len(got.Attachments, len(s.mandatoryTemplates()))
	rejected, ok := got.FindAttachment(rejectedID)
	s.Require().True(ok)
	s.Equal(models.ReviewRejected, rejected.ReviewStatus)
	s.True(got.IsEditable())

	// The rejected slot blocks resubmission until a fresh upload fills it.
	_, err = s.svc.Submit(ctx, s.applicant, app.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSubmissionIncomplete))

	replacement := &models.AddAttachmentRequest{
		TemplateID:  rejected.TemplateID.String(),
		FileName:    "replacement.pdf",
		ContentType: "application/pdf",
	}
	_, _, err = s.svc.AddAttachment(ctx, s.applicant, app.ID, replacement)
	s.Require().NoError(err)

	_, err = s.svc.Submit(ctx, s.applicant, app.ID)
	s.Require().NoError(err)
	_, err = s.svc.Transition(ctx, s.reviewer, app.ID, models.StatusUnderReview)
	s.Require().NoError(err)

	approved, err := s.svc.Transition(ctx, s.reviewer, app.ID, models.StatusApproved)
	s.Require().NoError(err)
	s.Equal(models.StatusApproved, approved.Status)

	// Terminal: nothing moves an approved application.
	_, err = s.svc.Transition(ctx, s.reviewer, app.ID, models.StatusToFix)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeIllegalTransition))

	// The audit trail recorded the whole journey for the applicant.
	events, err := s.auditLog.List(ctx, s.applicant.UserID)
	s.Require().NoError(err)
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, audit.EventApplicationCreated)
	s.Contains(actions, audit.EventApplicationSubmitted)
	s.Contains(actions, audit.EventReviewStarted)
	s.Contains(actions, audit.EventReturnedForFix)
	s.Contains(actions, audit.EventApplicationApproved)
	s.Contains(actions, audit.EventAttachmentReviewed)
}

func (s *ServiceSuite) TestListVisibility() {
	app := s.createApplication()

	other := &principal.AuthPrincipal{UserID: id.NewUserID(), Role: id.RoleUser}
	otherApp, err := s.svc.Create(context.Background(), other)
	s.Require().NoError(err)

	mine, err := s.svc.List(context.Background(), s.applicant)
	s.Require().NoError(err)
	s.Require().Len(mine, 1)
	s.Equal(app.ID, mine[0].ID)

	all, err := s.svc.List(context.Background(), s.reviewer)
	s.Require().NoError(err)
	s.Len(all, 2)

	theirs, err := s.svc.List(context.Background(), other)
	s.Require().NoError(err)
	s.Require().Len(theirs, 1)
	s.Equal(otherApp.ID, theirs[0].ID)
}

func (s *ServiceSuite) TestProfileCheckDefaultsToComplete() {
	result, err := s.svc.ProfileCheck(context.Background(), s.applicant)
	s.Require().NoError(err)
	s.True(result.Complete)
	s.Empty(result.Missing)
}

func (s *ServiceSuite) TestTemplatesOrderedByPosition() {
	templates, err := s.svc.Templates(context.Background())
	s.Require().NoError(err)
	s.Require().Len(templates, len(s.catalog))
	for i := 1; i < len(templates); i++ {
		s.Less(templates[i-1].Position, templates[i].Position)
	}
}
