package fulfillment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scouthub/internal/application/models"
	id "scouthub/pkg/domain"
)

func buildApp(t *testing.T) *models.InstructorApplication {
	t.Helper()
	app, err := models.NewInstructorApplication(id.NewApplicationID(), id.NewUserID(), time.Now())
	require.NoError(t, err)
	return app
}

func attach(t *testing.T, app *models.InstructorApplication, tplID id.TemplateID, status models.ReviewStatus) {
	t.Helper()
	att, err := models.NewAttachment(id.NewAttachmentID(), app.ID, tplID, "file.pdf", "application/pdf", "key", time.Now())
	require.NoError(t, err)
	att.ReviewStatus = status
	app.Attachments = append(app.Attachments, *att)
}

func catalog() (mandatoryA, mandatoryB, optional models.RequirementTemplate) {
	mandatoryA = models.RequirementTemplate{ID: id.NewTemplateID(), Name: "Criminal-record certificate", Version: 1, Mandatory: true, Position: 1}
	mandatoryB = models.RequirementTemplate{ID: id.NewTemplateID(), Name: "Medical clearance", Version: 1, Mandatory: true, Position: 2}
	optional = models.RequirementTemplate{ID: id.NewTemplateID(), Name: "Recommendation", Version: 1, Mandatory: false, Position: 3}
	return
}

func TestMissingEmptyApplication(t *testing.T) {
	a, b, opt := catalog()
	app := buildApp(t)

	missing := Missing(app, []models.RequirementTemplate{opt, b, a})
	require.Len(t, missing, 2)
	// Ordered by catalog position, not input order.
	assert.Equal(t, a.Name, missing[0].Name)
	assert.Equal(t, b.Name, missing[1].Name)
	assert.False(t, IsFulfilled(app, []models.RequirementTemplate{a, b, opt}))
}

func TestPendingAttachmentFulfillsSlot(t *testing.T) {
	a, b, opt := catalog()
	app := buildApp(t)
	attach(t, app, a.ID, models.ReviewPending)
	attach(t, app, b.ID, models.ReviewAccepted)

	assert.True(t, IsFulfilled(app, []models.RequirementTemplate{a, b, opt}))
}

func TestRejectedAttachmentDoesNotFulfill(t *testing.T) {
	a, b, _ := catalog()
	app := buildApp(t)
	attach(t, app, a.ID, models.ReviewRejected)
	attach(t, app, b.ID, models.ReviewAccepted)

	missing := Missing(app, []models.RequirementTemplate{a, b})
	require.Len(t, missing, 1)
	assert.Equal(t, a.Name, missing[0].Name)
}

func TestRejectedSlotRefilledByNewUpload(t *testing.T) {
	a, _, _ := catalog()
	app := buildApp(t)
	attach(t, app, a.ID, models.ReviewRejected)
	attach(t, app, a.ID, models.ReviewPending)

	assert.True(t, IsFulfilled(app, []models.RequirementTemplate{a}))
}

func TestOptionalTemplatesNeverBlock(t *testing.T) {
	_, _, opt := catalog()
	app := buildApp(t)

	assert.True(t, IsFulfilled(app, []models.RequirementTemplate{opt}))
	assert.Empty(t, Missing(app, []models.RequirementTemplate{opt}))
}

func TestNoTemplatesMeansFulfilled(t *testing.T) {
	app := buildApp(t)
	assert.True(t, IsFulfilled(app, nil))
}
