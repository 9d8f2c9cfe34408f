package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	t.Run("round-trips a generated id", func(t *testing.T) {
		original := NewUserID()
		parsed, err := ParseUserID(original.String())
		require.NoError(t, err)
		assert.Equal(t, original, parsed)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := ParseUserID("")
		assert.Error(t, err)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseUserID("not-a-uuid")
		assert.Error(t, err)
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		assert.Error(t, err)
	})
}

func TestIDJSONEncoding(t *testing.T) {
	t.Run("encodes as the canonical UUID string", func(t *testing.T) {
		appID := NewApplicationID()
		payload, err := json.Marshal(struct {
			ID ApplicationID `json:"id"`
		}{appID})
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"id":%q}`, appID.String()), string(payload))
	})

	t.Run("round-trips through JSON", func(t *testing.T) {
		original := struct {
			UserID       UserID       `json:"user_id"`
			AttachmentID AttachmentID `json:"attachment_id"`
			TemplateID   TemplateID   `json:"template_id"`
		}{NewUserID(), NewAttachmentID(), NewTemplateID()}

		payload, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded struct {
			UserID       UserID       `json:"user_id"`
			AttachmentID AttachmentID `json:"attachment_id"`
			TemplateID   TemplateID   `json:"template_id"`
		}
		require.NoError(t, json.Unmarshal(payload, &decoded))
		assert.Equal(t, original, decoded)
	})

	t.Run("encoded form feeds straight back into the path parser", func(t *testing.T) {
		appID := NewApplicationID()
		payload, err := json.Marshal(struct {
			ID ApplicationID `json:"id"`
		}{appID})
		require.NoError(t, err)

		// Clients read the id as a plain string and use it in URL paths.
		var raw struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(payload, &raw))

		parsed, err := ParseApplicationID(raw.ID)
		require.NoError(t, err)
		assert.Equal(t, appID, parsed)
	})
}

func TestIsZero(t *testing.T) {
	assert.True(t, UserID{}.IsZero())
	assert.True(t, ApplicationID{}.IsZero())
	assert.False(t, NewApplicationID().IsZero())
	assert.False(t, NewAttachmentID().IsZero())
	assert.False(t, NewTemplateID().IsZero())
}
