package template

import (
	"github.com/google/uuid"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
)

// Fixed catalog IDs so re-seeding is idempotent across restarts.
var (
	seedCriminalRecordID = id.TemplateID(uuid.MustParse("6f1a1c2e-0001-4000-8000-000000000001"))
	seedMedicalID        = id.TemplateID(uuid.MustParse("6f1a1c2e-0002-4000-8000-000000000002"))
	seedFirstAidID       = id.TemplateID(uuid.MustParse("6f1a1c2e-0003-4000-8000-000000000003"))
	seedRecommendationID = id.TemplateID(uuid.MustParse("6f1a1c2e-0004-4000-8000-000000000004"))
)

// SeedCatalog returns the default requirement catalog for dev mode and
// tests. Production catalogs come from the template service.
func SeedCatalog() []models.RequirementTemplate {
	return []models.RequirementTemplate{
		{
			ID:          seedCriminalRecordID,
			Name:        "Criminal-record certificate",
			Description: "Current extract from the national criminal register.",
			Version:     1,
			Mandatory:   true,
			Position:    1,
		},
		{
			ID:          seedMedicalID,
			Name:        "Medical clearance",
			Description: "Physician statement of fitness for youth work.",
			Version:     1,
			Mandatory:   true,
			Position:    2,
		},
		{
			ID:          seedFirstAidID,
			Name:        "First-aid certificate",
			Description: "Completed first-aid course, no older than three years.",
			Version:     2,
			Mandatory:   true,
			Position:    3,
		},
		{
			ID:          seedRecommendationID,
			Name:        "Troop-leader recommendation",
			Description: "Optional recommendation letter from a current troop leader.",
			Version:     1,
			Mandatory:   false,
			Position:    4,
		},
	}
}
