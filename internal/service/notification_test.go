package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipehub/backend/internal/apperror"
	"github.com/pageza/recipehub/backend/internal/models"
)

func likedNotification(t *testing.T, f *fixture) (owner, fan uuid.UUID, note models.Notification) {
	t.Helper()
	owner = f.user(t, "chef")
	fan = f.user(t, "fan")
	recipeID := f.recipe(t, owner, "Pancakes")
	_, err := f.recipes.ToggleFavorite(ctx, fan, recipeID.String())
	require.NoError(t, err)
	notes := f.notificationsOf(t, owner)
	require.Len(t, notes, 1)
	return owner, fan, notes[0]
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newFixture(t)
	owner, _, note := likedNotification(t, f)
	payload := map[string]any{"read": true}

	first, err := f.notifications.MarkRead(ctx, &owner, note.ID.String(), payload)
	require.NoError(t, err)
	assert.True(t, first.Read)
	assert.False(t, first.AlreadyRead)

	second, err := f.notifications.MarkRead(ctx, &owner, note.ID.String(), payload)
	require.NoError(t, err)
	assert.True(t, second.Read)
	assert.True(t, second.AlreadyRead)

	var stored models.Notification
	require.NoError(t, f.db.First(&stored, "id = ?", note.ID).Error)
	assert.True(t, stored.Read)
}

func TestMarkReadRejectsOtherChanges(t *testing.T) {
	f := newFixture(t)
	owner, _, note := likedNotification(t, f)

	for _, payload := range []map[string]any{
		{"read": false},
		{"read": "yes"},
		{"message": "hacked"},
		{"read": true, "message": "hacked"},
	} {
		_, err := f.notifications.MarkRead(ctx, &owner, note.ID.String(), payload)
		assert.ErrorIs(t, err, apperror.ErrBadRequest, "payload %v", payload)
	}
}

func TestMarkReadOnlyByRecipient(t *testing.T) {
	f := newFixture(t)
	_, fan, note := likedNotification(t, f)

	_, err := f.notifications.MarkRead(ctx, &fan, note.ID.String(), map[string]any{"read": true})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = f.notifications.MarkRead(ctx, nil, note.ID.String(), map[string]any{"read": true})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestMarkAllRead(t *testing.T) {
	f := newFixture(t)
	owner, _, _ := likedNotification(t, f)
	other := f.user(t, "other")
	second := f.recipe(t, owner, "Waffles")
	_, err := f.recipes.ToggleFavorite(ctx, other, second.String())
	require.NoError(t, err)

	changed, err := f.notifications.MarkAllRead(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	for _, n := range f.notificationsOf(t, owner) {
		assert.True(t, n.Read)
	}
}

func TestNotificationsListedOnlyForRecipient(t *testing.T) {
	f := newFixture(t)
	owner, fan, _ := likedNotification(t, f)

	mine, err := f.notifications.Engine().ListMine(ctx, &owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.notifications.Engine().ListMine(ctx, &fan)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
