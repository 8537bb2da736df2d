package server

import (
	"github.com/gofiber/fiber/v2"

	"inkwell/internal/models"
	"inkwell/internal/service"
)

type createPostRequest struct {
	Title           string            `json:"title"`
	Content         string            `json:"content"`
	Status          models.PostStatus `json:"status"`
	FeaturedImage   string            `json:"featured_image"`
	MetaDescription string            `json:"meta_description"`
	Tags            string            `json:"tags"`
}

type updatePostRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	FeaturedImage   *string `json:"featured_image"`
	MetaDescription *string `json:"meta_description"`
	Tags            *string `json:"tags"`
}

type changeStatusRequest struct {
	Status models.PostStatus `json:"status"`
}

type voteRequest struct {
	IsLike *bool `json:"is_like"`
}

// ListPublishedPosts is the public feed: published posts only, newest first,
// the same for everyone including admins.
func (s *Server) ListPublishedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListPublished(c.Context(), service.ListPublishedInput{
		AuthorID:      uint(c.QueryInt("author", 0)),
		Tag:           c.Query("tag"),
		Limit:         p.Limit,
		Offset:        p.Offset,
		CurrentUserID: currentActorID(c),
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "count": len(posts)})
}

// GetPublishedPost returns a single published post with its derived
// counters. Drafts are invisible here even to their author.
func (s *Server) GetPublishedPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.GetPublished(c.Context(), id, currentActorID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// CreatePost stores a new post authored by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req createPostRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Author:          currentActor(c),
		Title:           req.Title,
		Content:         req.Content,
		Status:          req.Status,
		FeaturedImage:   req.FeaturedImage,
		MetaDescription: req.MetaDescription,
		Tags:            req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// ListMyPosts returns the actor's own posts in every status.
func (s *Server) ListMyPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListMine(c.Context(), currentActor(c),
		models.PostStatus(c.Query("status")), p.Limit, p.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "count": len(posts)})
}

// ListManagedPosts is the admin console listing. Admins and managers see
// every post in every status; a plain user gets an empty list.
func (s *Server) ListManagedPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	posts, err := s.postService.ListManaged(c.Context(), service.ListManagedInput{
		Actor:  currentActor(c),
		Status: models.PostStatus(c.Query("status")),
		Limit:  p.Limit,
		Offset: p.Offset,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "count": len(posts)})
}

// GetManagedPost fetches a post in any status through the management scope.
func (s *Server) GetManagedPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.GetManaged(c.Context(), currentActor(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost applies partial edits. Status does not change on this path.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req updatePostRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.UpdatePost(c.Context(), service.UpdatePostInput{
		Actor:           currentActor(c),
		PostID:          id,
		Title:           req.Title,
		Content:         req.Content,
		FeaturedImage:   req.FeaturedImage,
		MetaDescription: req.MetaDescription,
		Tags:            req.Tags,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// DeletePost removes a post with its comments and likes.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	if err := s.postService.DeletePost(c.Context(), currentActor(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

// ChangePostStatus moves a post between draft, published, and archived and
// returns a confirmation message for the transition.
func (s *Server) ChangePostStatus(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req changeStatusRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.postService.ChangeStatus(c.Context(), currentActor(c), id, req.Status)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": result.Message,
		"post":    result.Post,
	})
}

// VotePost records or replaces the actor's like/dislike on a post.
func (s *Server) VotePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req voteRequest
	if err := parseBody(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}
	if req.IsLike == nil {
		return models.RespondWithError(c, models.NewValidationError("is_like is required"))
	}

	post, err := s.postService.Vote(c.Context(), currentActor(c), id, *req.IsLike)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	message := "Post disliked successfully"
	if *req.IsLike {
		message = "Post liked successfully"
	}
	return c.JSON(fiber.Map{
		"message": message,
		"post":    post,
	})
}

// UnvotePost removes the actor's vote, if any.
func (s *Server) UnvotePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	post, err := s.postService.Unvote(c.Context(), currentActor(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(post)
}

// GetVoteCounts returns the cached like/dislike tally for a post.
func (s *Server) GetVoteCounts(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	counts, err := s.postService.VoteCounts(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(counts)
}
