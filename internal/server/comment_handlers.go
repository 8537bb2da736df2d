package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parent_id"`
}

type updateCommentRequest struct {
	Content    *string `json:"content"`
	IsApproved *bool   `json:"is_approved"`
}

// ListPostComments returns the post's approved comments as a reply tree.
func (s *Server) ListPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comments, err := s.commentService.ListForPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "count": len(comments)})
}

// CreateComment adds a comment to a post, optionally as a reply to another
// comment on the same post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req createCommentRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		Author:   currentActor(c),
		PostID:   postID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment fetches a comment through the actor's management scope.
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.GetComment(c.Context(), currentActor(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment edits a comment's content; admins and managers can also
// set is_approved to pull a comment out of the public thread.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	comment, err := s.commentService.UpdateComment(c.Context(), service.UpdateCommentInput{
		Actor:      currentActor(c),
		CommentID:  id,
		Content:    req.Content,
		IsApproved: req.IsApproved,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment removes a comment and its reply subtree.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.commentService.DeleteComment(c.Context(), currentActor(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
