package models

import (
	"strings"

	"github.com/google/uuid"

	id "scouthub/pkg/domain"
	dErrors "scouthub/pkg/domain-errors"
)

// AddAttachmentRequest is the payload for attaching a file to one
// requirement template slot.
type AddAttachmentRequest struct {
	TemplateID  string `json:"template_id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`

	parsedTemplateID id.TemplateID
}

func (r *AddAttachmentRequest) Normalize() {
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	r.FileName = strings.TrimSpace(r.FileName)
	r.ContentType = strings.TrimSpace(strings.ToLower(r.ContentType))
}

// Validate reports every violated field at once, mirroring the principal
// validator's flattened report shape.
func (r *AddAttachmentRequest) Validate() error {
	report := make(map[string][]string)

	if r.TemplateID == "" {
		report["template_id"] = append(report["template_id"], "template_id is required")
	} else if parsed, err := uuid.Parse(r.TemplateID); err != nil || parsed == uuid.Nil {
		report["template_id"] = append(report["template_id"], "template_id must be a valid UUID")
	} else {
		r.parsedTemplateID = id.TemplateID(parsed)
	}

	if r.FileName == "" {
		report["file_name"] = append(report["file_name"], "file_name is required")
	}
	if r.ContentType == "" {
		report["content_type"] = append(report["content_type"], "content_type is required")
	}

	if len(report) > 0 {
		return dErrors.New(dErrors.CodeValidation, "invalid attachment request").WithFields(report)
	}
	return nil
}

// ParsedTemplateID returns the typed template ID. Valid only after a
// successful Validate.
func (r *AddAttachmentRequest) ParsedTemplateID() id.TemplateID {
	return r.parsedTemplateID
}

// ReviewAttachmentRequest carries a reviewer verdict for one attachment.
type ReviewAttachmentRequest struct {
	Verdict string `json:"verdict"`
}

func (r *ReviewAttachmentRequest) Validate() (ReviewStatus, error) {
	verdict, err := ParseReviewStatus(strings.TrimSpace(strings.ToLower(r.Verdict)))
	if err != nil || !verdict.IsVerdict() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid review request").
			AddFieldViolation("verdict", "verdict must be accepted or rejected")
	}
	return verdict, nil
}

// ProfileCheckResult reports whether the applicant's member profile is
// complete enough to start an application.
type ProfileCheckResult struct {
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing,omitempty"`
}
