// Package fulfillment computes whether an application satisfies its
// mandatory requirement templates. Pure functions over in-memory snapshots;
// callers are responsible for passing a consistent view of the attachments
// (no mid-upload snapshot may be used to approve a submission).
package fulfillment

import (
	"sort"

	"scouthub/internal/application/models"
)

// IsFulfilled reports whether every mandatory template has at least one
// non-rejected attachment. A pending attachment fulfills its slot; a
// rejected one never does, even when other attachments share the slot.
// Optional templates never block fulfillment.
func IsFulfilled(app *models.InstructorApplication, templates []models.RequirementTemplate) bool {
	return len(Missing(app, templates)) == 0
}

// Missing returns the mandatory templates without a non-rejected attachment,
// ordered by the catalog's declared position (not attachment upload order)
// so the same missing set always renders identically.
func Missing(app *models.InstructorApplication, templates []models.RequirementTemplate) []models.RequirementTemplate {
	missing := make([]models.RequirementTemplate, 0)
	for _, tpl := range templates {
		if !tpl.Mandatory {
			continue
		}
		if !slotFulfilled(app, tpl) {
			missing = append(missing, tpl)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].Position < missing[j].Position
	})
	return missing
}

func slotFulfilled(app *models.InstructorApplication, tpl models.RequirementTemplate) bool {
	for _, att := range app.Attachments {
		if att.TemplateID == tpl.ID && att.ReviewStatus != models.ReviewRejected {
			return true
		}
	}
	return false
}
