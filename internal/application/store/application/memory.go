package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
	"scouthub/pkg/platform/sentinel"
)

// InMemory implements the application store for unit tests and dev mode.
// All mutations run under one mutex, so the optimistic status precondition
// behaves exactly like the conditional UPDATE in the postgres store: at most
// one of two racing transition attempts can observe its expected status.
type InMemory struct {
	mu   sync.RWMutex
	apps map[id.ApplicationID]*models.InstructorApplication
}

func NewInMemory() *InMemory {
	return &InMemory{apps: make(map[id.ApplicationID]*models.InstructorApplication)}
}

// Create stores a new application. Returns sentinel.ErrAlreadyExists when
// the applicant already has an open (non-terminal) application.
func (s *InMemory) Create(_ context.Context, app *models.InstructorApplication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.apps {
		if existing.ApplicantID == app.ApplicantID && !existing.Status.IsTerminal() {
			return sentinel.ErrAlreadyExists
		}
	}
	s.apps[app.ID] = cloneApp(app)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, appID id.ApplicationID) (*models.InstructorApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.apps[appID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneApp(app), nil
}

func (s *InMemory) ListByApplicant(_ context.Context, applicantID id.UserID) ([]*models.InstructorApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.InstructorApplication
	for _, app := range s.apps {
		if app.ApplicantID == applicantID {
			out = append(out, cloneApp(app))
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.InstructorApplication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.InstructorApplication, 0, len(s.apps))
	for _, app := range s.apps {
		out = append(out, cloneApp(app))
	}
	sortByCreation(out)
	return out, nil
}

// UpdateStatus applies a transition conditioned on the status the caller
// last observed. Returns sentinel.ErrConflict when the precondition fails so
// the caller can re-read and retry the whole decision.
func (s *InMemory) UpdateStatus(_ context.Context, appID id.ApplicationID, expected, next models.Status, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if app.Status != expected {
		return sentinel.ErrConflict
	}
	app.Status = next
	app.UpdatedAt = now
	return nil
}

// AddAttachment appends an attachment, conditioned on the parent still being
// editable at write time.
func (s *InMemory) AddAttachment(_ context.Context, att *models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[att.ApplicationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !app.IsEditable() {
		return sentinel.ErrConflict
	}
	app.Attachments = append(app.Attachments, *att)
	app.UpdatedAt = att.CreatedAt
	return nil
}

// RemoveAttachment deletes an attachment, conditioned on the parent still
// being editable at write time.
func (s *InMemory) RemoveAttachment(_ context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !app.IsEditable() {
		return sentinel.ErrConflict
	}
	for i := range app.Attachments {
		if app.Attachments[i].ID == attachmentID {
			app.Attachments = append(app.Attachments[:i], app.Attachments[i+1:]...)
			app.UpdatedAt = now
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// SetAttachmentVerdict records a reviewer decision, conditioned on the
// attachment still being pending.
func (s *InMemory) SetAttachmentVerdict(_ context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, verdict models.ReviewStatus, reviewer id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[appID]
	if !ok {
		return sentinel.ErrNotFound
	}
	for i := range app.Attachments {
		if app.Attachments[i].ID == attachmentID {
			if app.Attachments[i].ReviewStatus != models.ReviewPending {
				return sentinel.ErrConflict
			}
			app.Attachments[i].ReviewStatus = verdict
			app.Attachments[i].ReviewedBy = reviewer
			app.Attachments[i].UpdatedAt = now
			app.UpdatedAt = now
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// cloneApp copies the aggregate so callers never alias store-owned state.
func cloneApp(app *models.InstructorApplication) *models.InstructorApplication {
	copied := *app
	copied.Attachments = append([]models.Attachment(nil), app.Attachments...)
	return &copied
}

func sortByCreation(apps []*models.InstructorApplication) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].CreatedAt.Before(apps[j].CreatedAt)
	})
}
