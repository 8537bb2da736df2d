package service

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
}

type CreatePostInput struct {
	Author          *models.User
	Title           string
	Content         string
	Status          models.PostStatus
	FeaturedImage   string
	MetaDescription string
	Tags            string
}

type UpdatePostInput struct {
	Actor           *models.User
	PostID          uint
	Title           *string
	Content         *string
	FeaturedImage   *string
	MetaDescription *string
	Tags            *string
}

type ListPublishedInput struct {
	AuthorID      uint
	Tag           string
	Limit         int
	Offset        int
	CurrentUserID uint
}

type ListManagedInput struct {
	Actor  *models.User
	Status models.PostStatus
	Limit  int
	Offset int
}

// StatusChangeResult carries the updated post and the human-readable
// confirmation message for the transition.
type StatusChangeResult struct {
	Post    *models.Post
	Message string
}

func NewPostService(postRepo repository.PostRepository, likeRepo repository.LikeRepository) *PostService {
	return &PostService{postRepo: postRepo, likeRepo: likeRepo}
}

// CreatePost validates and stores a new post. The author is taken from the
// authenticated actor and cannot be supplied by the client.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidPostStatus(status) {
		return nil, models.NewInvalidStatusError(string(status))
	}

	post := &models.Post{
		Title:           in.Title,
		Content:         in.Content,
		Status:          status,
		FeaturedImage:   in.FeaturedImage,
		MetaDescription: in.MetaDescription,
		Tags:            in.Tags,
		UserID:          in.Author.ID,
	}
	if status == models.StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.Author.ID)
}

// ListPublished is the public feed: only published posts, newest first,
// regardless of who asks.
func (s *PostService) ListPublished(ctx context.Context, in ListPublishedInput) ([]*models.Post, error) {
	f := repository.PostFilter{
		Status:   models.StatusPublished,
		AuthorID: in.AuthorID,
		Tag:      in.Tag,
		Limit:    normalizeLimit(in.Limit),
		Offset:   in.Offset,
	}
	return s.postRepo.List(ctx, f, authz.ScopeAll, 0)
}

// GetPublished returns a single published post. Drafts and archived posts
// surface as NotFound on this path even for their author.
func (s *PostService) GetPublished(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetPublishedByID(ctx, id, currentUserID)
}

// GetManaged fetches a post through the actor's management scope: admins and
// managers reach any post, authors reach their own in any status.
func (s *PostService) GetManaged(ctx context.Context, actor *models.User, id uint) (*models.Post, error) {
	return s.postRepo.GetScoped(ctx, id, authz.PostManageScope(actor), actorID(actor))
}

// ListMine returns the actor's own posts in every status.
func (s *PostService) ListMine(ctx context.Context, actor *models.User, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	if status != "" && !models.ValidPostStatus(status) {
		return nil, models.NewInvalidStatusError(string(status))
	}
	f := repository.PostFilter{
		Status: status,
		Limit:  normalizeLimit(limit),
		Offset: offset,
	}
	return s.postRepo.List(ctx, f, authz.ScopeOwn, actorID(actor))
}

// ListManaged is the admin console listing: admins and managers see posts in
// every status, a plain user gets an empty list.
func (s *PostService) ListManaged(ctx context.Context, in ListManagedInput) ([]*models.Post, error) {
	if in.Status != "" && !models.ValidPostStatus(in.Status) {
		return nil, models.NewInvalidStatusError(string(in.Status))
	}
	f := repository.PostFilter{
		Status: in.Status,
		Limit:  normalizeLimit(in.Limit),
		Offset: in.Offset,
	}
	return s.postRepo.List(ctx, f, authz.AdminPostListScope(in.Actor), actorID(in.Actor))
}

// UpdatePost applies partial edits. Status is not editable here; it only
// changes through ChangeStatus. The author never changes.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetScoped(ctx, in.PostID, authz.PostManageScope(in.Actor), actorID(in.Actor))
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyPost(in.Actor, post); err != nil {
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		if err := validation.ValidateContent(*in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		post.Content = *in.Content
	}
	if in.FeaturedImage != nil {
		post.FeaturedImage = *in.FeaturedImage
	}
	if in.MetaDescription != nil {
		post.MetaDescription = *in.MetaDescription
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post and its comments and likes.
func (s *PostService) DeletePost(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.postRepo.GetScoped(ctx, id, authz.PostManageScope(actor), actorID(actor))
	if err != nil {
		return err
	}
	if err := authz.CanModifyPost(actor, post); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, id)
}

// ChangeStatus moves a post between draft, published, and archived.
// PublishedAt is stamped on the first transition into published and kept
// untouched on every later transition, including back to draft. The post is
// resolved unscoped so a non-owner gets the permission denial, not NotFound.
func (s *PostService) ChangeStatus(ctx context.Context, actor *models.User, id uint, status models.PostStatus) (*StatusChangeResult, error) {
	if !models.ValidPostStatus(status) {
		return nil, models.NewInvalidStatusError(string(status))
	}

	post, err := s.postRepo.GetByID(ctx, id, actorID(actor))
	if err != nil {
		return nil, err
	}
	if err := authz.CanChangePostStatus(actor, post); err != nil {
		return nil, err
	}

	post.Status = status
	if status == models.StatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}

	return &StatusChangeResult{Post: post, Message: statusChangeMessage(status)}, nil
}

// Vote records or replaces the actor's like/dislike on a post and returns
// the post with refreshed counters. The post only has to exist; drafts can
// be voted on by anyone who knows the id, matching the comment surface.
func (s *PostService) Vote(ctx context.Context, actor *models.User, postID uint, isLike bool) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}

	like := &models.Like{PostID: postID, UserID: actor.ID, IsLike: isLike}
	if err := s.likeRepo.Upsert(ctx, like); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, actor.ID)
}

// Unvote removes the actor's vote, if any.
func (s *PostService) Unvote(ctx context.Context, actor *models.User, postID uint) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	if err := s.likeRepo.Delete(ctx, postID, actor.ID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, actor.ID)
}

// VoteCounts returns the cached like/dislike tally for a post.
func (s *PostService) VoteCounts(ctx context.Context, postID uint) (repository.VoteCounts, error) {
	return s.likeRepo.Counts(ctx, postID)
}

func statusChangeMessage(status models.PostStatus) string {
	switch status {
	case models.StatusPublished:
		return "Post approved!"
	case models.StatusDraft:
		return "Post set to draft!"
	case models.StatusArchived:
		return "Post archived!"
	default:
		return fmt.Sprintf("Post status updated to %s", status)
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
