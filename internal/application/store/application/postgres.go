package application

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
	"scouthub/pkg/platform/sentinel"
)

// Schema is the store's table layout, applied by integration tests and dev
// bootstrap. Production schema management is external.
const Schema = `
CREATE TABLE IF NOT EXISTS instructor_applications (
	id           UUID PRIMARY KEY,
	applicant_id UUID NOT NULL,
	status       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS instructor_applications_open_per_applicant
	ON instructor_applications (applicant_id)
	WHERE status NOT IN ('APPROVED', 'REJECTED');

CREATE TABLE IF NOT EXISTS application_attachments (
	id             UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES instructor_applications (id) ON DELETE CASCADE,
	template_id    UUID NOT NULL,
	file_name      TEXT NOT NULL,
	content_type   TEXT NOT NULL,
	object_key     TEXT NOT NULL,
	review_status  TEXT NOT NULL,
	reviewed_by    UUID,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS application_attachments_application_id
	ON application_attachments (application_id);
`

const pqUniqueViolation = "23505"

// PostgresStore persists instructor applications in PostgreSQL. Status
// writes are conditional UPDATEs so two racing transition attempts resolve
// to exactly one winner without row locks held across the decision.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *models.InstructorApplication) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO instructor_applications (id, applicant_id, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(app.ID), uuid.UUID(app.ApplicantID), string(app.Status), app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return sentinel.ErrAlreadyExists
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, appID id.ApplicationID) (*models.InstructorApplication, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, applicant_id, status, created_at, updated_at
		 FROM instructor_applications WHERE id = $1`,
		uuid.UUID(appID),
	)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadAttachments(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *PostgresStore) ListByApplicant(ctx context.Context, applicantID id.UserID) ([]*models.InstructorApplication, error) {
	return s.list(ctx,
		`SELECT id, applicant_id, status, created_at, updated_at
		 FROM instructor_applications WHERE applicant_id = $1 ORDER BY created_at`,
		uuid.UUID(applicantID),
	)
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.InstructorApplication, error) {
	return s.list(ctx,
		`SELECT id, applicant_id, status, created_at, updated_at
		 FROM instructor_applications ORDER BY created_at`,
	)
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, appID id.ApplicationID, expected, next models.Status, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE instructor_applications SET status = $1, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		string(next), now, uuid.UUID(appID), string(expected),
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if affected == 1 {
		return nil
	}
	// Distinguish a stale precondition from a missing row.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM instructor_applications WHERE id = $1)`,
		uuid.UUID(appID),
	).Scan(&exists); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *PostgresStore) AddAttachment(ctx context.Context, att *models.Attachment) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO application_attachments
			(id, application_id, template_id, file_name, content_type, object_key, review_status, reviewed_by, created_at, updated_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, NULL, $8, $8
		 WHERE EXISTS (
			SELECT 1 FROM instructor_applications
			WHERE id = $2 AND status IN ('DRAFT', 'TO_FIX')
		 )`,
		uuid.UUID(att.ID), uuid.UUID(att.ApplicationID), uuid.UUID(att.TemplateID),
		att.FileName, att.ContentType, att.ObjectKey, string(att.ReviewStatus), att.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("add attachment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add attachment: %w", err)
	}
	if affected == 0 {
		return s.attachmentWritePreconditionError(ctx, att.ApplicationID)
	}
	return nil
}

func (s *PostgresStore) RemoveAttachment(ctx context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM application_attachments
		 WHERE id = $1 AND application_id = $2
		 AND EXISTS (
			SELECT 1 FROM instructor_applications
			WHERE id = $2 AND status IN ('DRAFT', 'TO_FIX')
		 )`,
		uuid.UUID(attachmentID), uuid.UUID(appID),
	)
	if err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	if affected == 0 {
		return s.attachmentWritePreconditionError(ctx, appID)
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE instructor_applications SET updated_at = $1 WHERE id = $2`,
		now, uuid.UUID(appID),
	)
	if err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetAttachmentVerdict(ctx context.Context, appID id.ApplicationID, attachmentID id.AttachmentID, verdict models.ReviewStatus, reviewer id.UserID, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE application_attachments
		 SET review_status = $1, reviewed_by = $2, updated_at = $3
		 WHERE id = $4 AND application_id = $5 AND review_status = 'pending'`,
		string(verdict), uuid.UUID(reviewer), now, uuid.UUID(attachmentID), uuid.UUID(appID),
	)
	if err != nil {
		return fmt.Errorf("set attachment verdict: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set attachment verdict: %w", err)
	}
	if affected == 1 {
		return nil
	}
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM application_attachments WHERE id = $1 AND application_id = $2)`,
		uuid.UUID(attachmentID), uuid.UUID(appID),
	).Scan(&exists); err != nil {
		return fmt.Errorf("set attachment verdict: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]*models.InstructorApplication, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var out []*models.InstructorApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	for _, app := range out {
		if err := s.loadAttachments(ctx, app); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresStore) loadAttachments(ctx context.Context, app *models.InstructorApplication) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, application_id, template_id, file_name, content_type, object_key, review_status, reviewed_by, created_at, updated_at
		 FROM application_attachments WHERE application_id = $1 ORDER BY created_at`,
		uuid.UUID(app.ID),
	)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			att                         models.Attachment
			attID, parentID, templateID uuid.UUID
			reviewStatus                string
			reviewedBy                  sql.NullString
		)
		if err := rows.Scan(&attID, &parentID, &templateID, &att.FileName, &att.ContentType,
			&att.ObjectKey, &reviewStatus, &reviewedBy, &att.CreatedAt, &att.UpdatedAt); err != nil {
			return fmt.Errorf("load attachments: %w", err)
		}
		att.ID = id.AttachmentID(attID)
		att.ApplicationID = id.ApplicationID(parentID)
		att.TemplateID = id.TemplateID(templateID)
		att.ReviewStatus = models.ReviewStatus(reviewStatus)
		if reviewedBy.Valid {
			parsed, err := uuid.Parse(reviewedBy.String)
			if err != nil {
				return fmt.Errorf("load attachments: %w", err)
			}
			att.ReviewedBy = id.UserID(parsed)
		}
		app.Attachments = append(app.Attachments, att)
	}
	return rows.Err()
}

// attachmentWritePreconditionError classifies a zero-row attachment write:
// either the parent is gone or it has left an editable status.
func (s *PostgresStore) attachmentWritePreconditionError(ctx context.Context, appID id.ApplicationID) error {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT status FROM instructor_applications WHERE id = $1`,
		uuid.UUID(appID),
	).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("inspect application: %w", err)
	}
	if !models.IsEditable(models.Status(status)) {
		return sentinel.ErrConflict
	}
	return sentinel.ErrNotFound
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.InstructorApplication, error) {
	var (
		app              models.InstructorApplication
		appID, applicant uuid.UUID
		status           string
	)
	err := row.Scan(&appID, &applicant, &status, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.ID = id.ApplicationID(appID)
	app.ApplicantID = id.UserID(applicant)
	app.Status = models.Status(status)
	return &app, nil
}
