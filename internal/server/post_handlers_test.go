package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postBody = "This body text is comfortably past the fifty character content minimum."

type postListBody struct {
	Posts []models.Post `json:"posts"`
	Count int           `json:"count"`
}

func TestCreatePostEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "cp_author", models.RoleUser)
	tok := accessTokenFor(t, srv, author)

	t.Run("requires auth", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", "", map[string]string{
			"title": "an unauthenticated post", "content": postBody,
		})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("short title rejected", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", tok, map[string]string{
			"title": "short", "content": postBody,
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("created as draft by default", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", tok, map[string]string{
			"title": "a perfectly good title", "content": postBody,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var post models.Post
		decodeBody(t, resp, &post)
		assert.Equal(t, models.StatusDraft, post.Status)
		assert.Equal(t, author.ID, post.UserID)
	})
}

func TestPublicFeedShowsOnlyPublished(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "feed_author", models.RoleUser)
	tok := accessTokenFor(t, srv, author)

	for _, status := range []string{"draft", "published", "archived"} {
		resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", tok, map[string]string{
			"title":   fmt.Sprintf("the %s post title", status),
			"content": postBody,
			"status":  status,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	t.Run("anonymous feed", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodGet, "/api/posts/", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		require.Equal(t, 1, body.Count)
		assert.Equal(t, models.StatusPublished, body.Posts[0].Status)
	})

	t.Run("feed is identical for the author", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodGet, "/api/posts/", tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		assert.Equal(t, 1, body.Count)
	})

	t.Run("draft detail is hidden on the public path", func(t *testing.T) {
		var draft models.Post
		require.NoError(t, srv.db.Where("status = ?", models.StatusDraft).First(&draft).Error)

		resp := jsonRequest(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", draft.ID), tok, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		// The management path still reaches it.
		resp = jsonRequest(t, app, http.MethodGet, fmt.Sprintf("/api/posts/manage/%d", draft.ID), tok, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("own posts listing shows every status", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodGet, "/api/posts/mine", tok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body postListBody
		decodeBody(t, resp, &body)
		assert.Equal(t, 3, body.Count)
	})
}

func TestChangeStatusEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "st_author", models.RoleUser)
	manager := createTestUser(t, srv, "st_manager", models.RoleManager)
	tok := accessTokenFor(t, srv, author)

	resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", tok, map[string]string{
		"title": "a draft awaiting approval", "content": postBody,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	type statusBody struct {
		Message string      `json:"message"`
		Post    models.Post `json:"post"`
	}

	t.Run("manager approval message", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPatch,
			fmt.Sprintf("/api/posts/%d/status", post.ID), accessTokenFor(t, srv, manager),
			map[string]string{"status": "published"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body statusBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "Post approved!", body.Message)
		assert.NotNil(t, body.Post.PublishedAt)
	})

	t.Run("back to draft message", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPatch,
			fmt.Sprintf("/api/posts/%d/status", post.ID), tok,
			map[string]string{"status": "draft"})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body statusBody
		decodeBody(t, resp, &body)
		assert.Equal(t, "Post set to draft!", body.Message)
		assert.NotNil(t, body.Post.PublishedAt, "publication time survives unpublishing")
	})

	t.Run("non-owner is forbidden, not hidden", func(t *testing.T) {
		stranger := createTestUser(t, srv, "st_stranger", models.RoleUser)
		resp := jsonRequest(t, app, http.MethodPatch,
			fmt.Sprintf("/api/posts/%d/status", post.ID), accessTokenFor(t, srv, stranger),
			map[string]string{"status": "published"})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.ReasonNotOwner, body.Reason)
	})

	t.Run("invalid status is a bad request", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPatch,
			fmt.Sprintf("/api/posts/%d/status", post.ID), tok,
			map[string]string{"status": "pending"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body models.ErrorResponse
		decodeBody(t, resp, &body)
		assert.Equal(t, models.CodeInvalidStatus, body.Code)
	})
}

func TestVoteEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "vt_author", models.RoleUser)
	voter := createTestUser(t, srv, "vt_voter", models.RoleUser)
	authorTok := accessTokenFor(t, srv, author)
	voterTok := accessTokenFor(t, srv, voter)

	resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", authorTok, map[string]string{
		"title": "a post to be voted on", "content": postBody, "status": "published",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	t.Run("vote then switch keeps a single row", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/vote", post.ID), voterTok, map[string]bool{"is_like": true})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got struct {
			Message string      `json:"message"`
			Post    models.Post `json:"post"`
		}
		decodeBody(t, resp, &got)
		assert.Equal(t, "Post liked successfully", got.Message)
		assert.Equal(t, 1, got.Post.LikeCount)

		resp = jsonRequest(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/vote", post.ID), voterTok, map[string]bool{"is_like": false})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		decodeBody(t, resp, &got)
		assert.Equal(t, "Post disliked successfully", got.Message)
		assert.Equal(t, 0, got.Post.LikeCount)
		assert.Equal(t, 1, got.Post.DislikeCount)
	})

	t.Run("missing is_like is a bad request", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/vote", post.ID), voterTok, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unvote clears the tally", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodDelete,
			fmt.Sprintf("/api/posts/%d/vote", post.ID), voterTok, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got models.Post
		decodeBody(t, resp, &got)
		assert.Equal(t, 0, got.DislikeCount)
	})
}

func TestUpdatePostOwnership(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "own_author", models.RoleUser)
	stranger := createTestUser(t, srv, "own_stranger", models.RoleUser)

	resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", accessTokenFor(t, srv, author), map[string]string{
		"title": "a post owned by its author", "content": postBody, "status": "published",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	// The stranger's management scope only covers their own posts, so the
	// edit surfaces as a not-found rather than a forbidden.
	resp = jsonRequest(t, app, http.MethodPut,
		fmt.Sprintf("/api/posts/%d", post.ID), accessTokenFor(t, srv, stranger),
		map[string]string{"title": "a hostile rewrite attempt"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentEndpoints(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "ch_author", models.RoleUser)
	reader := createTestUser(t, srv, "ch_reader", models.RoleUser)
	authorTok := accessTokenFor(t, srv, author)
	readerTok := accessTokenFor(t, srv, reader)

	resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", authorTok, map[string]string{
		"title": "a post with a comment thread", "content": postBody, "status": "published",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", post.ID), readerTok,
		map[string]string{"content": "nice post"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var root models.Comment
	decodeBody(t, resp, &root)

	resp = jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", post.ID), authorTok,
		map[string]any{"content": "thanks", "parent_id": root.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("listing returns the thread", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodGet,
			fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Comments []models.Comment `json:"comments"`
			Count    int              `json:"count"`
		}
		decodeBody(t, resp, &body)
		require.Equal(t, 1, body.Count, "one root comment")
		require.Len(t, body.Comments[0].Replies, 1)
		assert.Equal(t, "thanks", body.Comments[0].Replies[0].Content)
	})

	t.Run("comments work on drafts too", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", authorTok, map[string]string{
			"title": "a draft collecting feedback", "content": postBody,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var draft models.Post
		decodeBody(t, resp, &draft)

		resp = jsonRequest(t, app, http.MethodPost,
			fmt.Sprintf("/api/posts/%d/comments", draft.ID), readerTok,
			map[string]string{"content": "early feedback"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})
}

func TestCommentModerationEndpoint(t *testing.T) {
	srv, app := newTestServer(t)
	author := createTestUser(t, srv, "cm_author", models.RoleUser)
	manager := createTestUser(t, srv, "cm_manager", models.RoleManager)
	authorTok := accessTokenFor(t, srv, author)

	resp := jsonRequest(t, app, http.MethodPost, "/api/posts/", authorTok, map[string]string{
		"title": "a post that attracts spam", "content": postBody, "status": "published",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decodeBody(t, resp, &post)

	resp = jsonRequest(t, app, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/comments", post.ID), authorTok,
		map[string]string{"content": "buy cheap widgets"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeBody(t, resp, &comment)

	t.Run("the author cannot unapprove", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPut,
			fmt.Sprintf("/api/comments/%d", comment.ID), authorTok,
			map[string]any{"is_approved": false})
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("a manager pulls it from the thread", func(t *testing.T) {
		resp := jsonRequest(t, app, http.MethodPut,
			fmt.Sprintf("/api/comments/%d", comment.ID), accessTokenFor(t, srv, manager),
			map[string]any{"is_approved": false})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = jsonRequest(t, app, http.MethodGet,
			fmt.Sprintf("/api/posts/%d/comments", post.ID), "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Count int `json:"count"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 0, body.Count)
	})
}
