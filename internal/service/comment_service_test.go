package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) publishPost(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()
	post, err := e.posts.CreatePost(context.Background(), CreatePostInput{
		Author:  author,
		Title:   title,
		Content: validContent,
		Status:  models.StatusPublished,
	})
	require.NoError(t, err)
	return post
}

func TestCreateCommentAndThreading(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "cmt_author", models.RoleUser)
	reader := env.createUser(t, "cmt_reader", models.RoleUser)
	ctx := context.Background()

	post := env.publishPost(t, author, "a post worth commenting on")

	root, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author:  reader,
		PostID:  post.ID,
		Content: "first!",
	})
	require.NoError(t, err)
	assert.Nil(t, root.ParentID)

	reply, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author:   author,
		PostID:   post.ID,
		ParentID: &root.ID,
		Content:  "thanks for reading",
	})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)

	tree, err := env.comments.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, root.ID, tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, reply.ID, tree[0].Replies[0].ID)
	assert.True(t, tree[0].Replies[0].IsReply)
}

func TestCreateCommentParentMustShareThePost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "xpost_author", models.RoleUser)
	ctx := context.Background()

	postA := env.publishPost(t, author, "the first post of two")
	postB := env.publishPost(t, author, "the second post of two")

	parent, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author: author, PostID: postA.ID, Content: "on post A",
	})
	require.NoError(t, err)

	_, err = env.comments.CreateComment(ctx, CreateCommentInput{
		Author: author, PostID: postB.ID, ParentID: &parent.ID, Content: "cross-post reply",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeValidation, appErr.Code)
}

func TestCreateCommentOnMissingPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "nopost_author", models.RoleUser)

	_, err := env.comments.CreateComment(context.Background(), CreateCommentInput{
		Author: author, PostID: 12345, Content: "into the void",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCommentOnDraftPost(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "draft_cmt_author", models.RoleUser)
	reader := env.createUser(t, "draft_cmt_reader", models.RoleUser)
	ctx := context.Background()

	draft, err := env.posts.CreatePost(ctx, CreatePostInput{
		Author:  author,
		Title:   "a draft with early feedback",
		Content: validContent,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusDraft, draft.Status)

	// The post only has to exist; its status never gates commenting.
	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author: reader, PostID: draft.ID, Content: "feedback before publishing",
	})
	require.NoError(t, err)

	tree, err := env.comments.ListForPost(ctx, draft.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, comment.ID, tree[0].ID)
}

func TestCommentApprovalFlag(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "appr_author", models.RoleUser)
	manager := env.createUser(t, "appr_manager", models.RoleManager)
	ctx := context.Background()

	post := env.publishPost(t, author, "a post with a bad comment")
	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author: author, PostID: post.ID, Content: "something objectionable",
	})
	require.NoError(t, err)

	// The author cannot flip the approval flag, even on their own comment.
	unapprove := false
	_, err = env.comments.UpdateComment(ctx, UpdateCommentInput{
		Actor: author, CommentID: comment.ID, IsApproved: &unapprove,
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodePermissionDenied, appErr.Code)

	// A manager unapproves it and it drops out of the public thread.
	moderated, err := env.comments.UpdateComment(ctx, UpdateCommentInput{
		Actor: manager, CommentID: comment.ID, IsApproved: &unapprove,
	})
	require.NoError(t, err)
	assert.False(t, moderated.IsApproved)

	tree, err := env.comments.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)

	// Reapproval brings it back.
	approve := true
	_, err = env.comments.UpdateComment(ctx, UpdateCommentInput{
		Actor: manager, CommentID: comment.ID, IsApproved: &approve,
	})
	require.NoError(t, err)

	tree, err = env.comments.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, tree, 1)
}

func TestCommentModeration(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "mod_author", models.RoleUser)
	stranger := env.createUser(t, "mod_stranger", models.RoleUser)
	manager := env.createUser(t, "mod_manager", models.RoleManager)
	ctx := context.Background()

	post := env.publishPost(t, author, "a post under moderation")
	comment, err := env.comments.CreateComment(ctx, CreateCommentInput{
		Author: author, PostID: post.ID, Content: "original text",
	})
	require.NoError(t, err)

	// A stranger cannot reach someone else's comment through the scope.
	vandalized := "vandalized"
	_, err = env.comments.UpdateComment(ctx, UpdateCommentInput{
		Actor: stranger, CommentID: comment.ID, Content: &vandalized,
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	// The author edits their own comment.
	edited := "edited text"
	updated, err := env.comments.UpdateComment(ctx, UpdateCommentInput{
		Actor: author, CommentID: comment.ID, Content: &edited,
	})
	require.NoError(t, err)
	assert.Equal(t, "edited text", updated.Content)

	// A manager deletes it along with its replies.
	_, err = env.comments.CreateComment(ctx, CreateCommentInput{
		Author: stranger, PostID: post.ID, ParentID: &comment.ID, Content: "a reply",
	})
	require.NoError(t, err)
	require.NoError(t, env.comments.DeleteComment(ctx, manager, comment.ID))

	tree, err := env.comments.ListForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, tree)
}
