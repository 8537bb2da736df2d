package service

import (
	"context"

	"inkwell/internal/authz"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

type CreateCommentInput struct {
	Author   *models.User
	PostID   uint
	ParentID *uint
	Content  string
}

type UpdateCommentInput struct {
	Actor      *models.User
	CommentID  uint
	Content    *string
	IsApproved *bool
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// ListForPost returns the post's approved comments as a reply tree, roots
// oldest first. The post only has to exist; drafts keep their threads.
func (s *CommentService) ListForPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return repository.BuildCommentTree(comments), nil
}

// CreateComment adds a comment, optionally as a reply. The parent must be an
// existing comment on the same post.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if err := validation.ValidateCommentContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, 0); err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:    in.Content,
		UserID:     in.Author.ID,
		PostID:     in.PostID,
		ParentID:   in.ParentID,
		IsApproved: true,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetComment fetches a comment through the actor's management scope.
func (s *CommentService) GetComment(ctx context.Context, actor *models.User, id uint) (*models.Comment, error) {
	return s.commentRepo.GetScoped(ctx, id, authz.CommentManageScope(actor), actorID(actor))
}

// UpdateComment edits a comment's content and, for admins and managers,
// its approval flag. An unapproved comment stays in the store but drops out
// of the public thread.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetScoped(ctx, in.CommentID, authz.CommentManageScope(in.Actor), actorID(in.Actor))
	if err != nil {
		return nil, err
	}
	if err := authz.CanModifyComment(in.Actor, comment); err != nil {
		return nil, err
	}

	if in.Content != nil {
		if err := validation.ValidateCommentContent(*in.Content); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		comment.Content = *in.Content
	}
	if in.IsApproved != nil {
		if err := authz.CanModerateComment(in.Actor); err != nil {
			return nil, err
		}
		comment.IsApproved = *in.IsApproved
	}

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment and its whole reply subtree.
func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, id uint) error {
	comment, err := s.commentRepo.GetScoped(ctx, id, authz.CommentManageScope(actor), actorID(actor))
	if err != nil {
		return err
	}
	if err := authz.CanModifyComment(actor, comment); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, id)
}
