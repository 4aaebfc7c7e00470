package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront_back_end/internal/models"
)

func newCommentService(env *testEnv, repo *fakeComments, now time.Time) *CommentService {
	svc := NewCommentService(repo, env.catalog)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCommentService_RequiresIdentity(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeComments{}
	svc := newCommentService(env, repo, time.Now())

	_, err := svc.Create(context.Background(), nil, "1", "great")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, repo.comments)
}

func TestCommentService_RejectsBlankText(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeComments{}
	svc := newCommentService(env, repo, time.Now())

	_, err := svc.Create(context.Background(), buyer, "1", "   \n")
	assert.ErrorIs(t, err, ErrEmptyComment)
	assert.Empty(t, repo.comments)
}

func TestCommentService_UnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	svc := newCommentService(env, &fakeComments{}, time.Now())

	_, err := svc.Create(context.Background(), buyer, "404", "hello")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCommentService_CreateStoresWhatItReturns(t *testing.T) {
	env := newTestEnv(t)
	repo := &fakeComments{}
	local := time.FixedZone("CET", 3600)
	now := time.Date(2024, 5, 1, 12, 30, 0, 123456789, local)
	svc := newCommentService(env, repo, now)

	comment, err := svc.Create(context.Background(), buyer, "1", "  Love it  ")
	require.NoError(t, err)

	assert.Equal(t, "Love it", comment.Text)
	assert.Equal(t, "Ada", comment.UserName)
	assert.Equal(t, "ada@example.com", comment.Email)
	assert.Equal(t, time.UTC, comment.CreatedAt.Location())
	assert.Equal(t, 123000000, comment.CreatedAt.Nanosecond())

	stored, err := svc.List(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, *comment, stored[0])
}

func TestDisplayNameFallbacks(t *testing.T) {
	assert.Equal(t, "Ada", displayName(&models.Identity{DisplayName: "Ada", Email: "a@x.io"}))
	assert.Equal(t, "a@x.io", displayName(&models.Identity{DisplayName: " ", Email: "a@x.io"}))
	assert.Equal(t, "Anonymous", displayName(&models.Identity{UserID: "u1"}))
}
