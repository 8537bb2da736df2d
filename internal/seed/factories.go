// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser persists a user with fake profile data. The password for every
// seeded account is "password123".
func (f *Factory) CreateUser(role models.Role, overrides ...func(*models.User)) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", f.rand.Intn(10000)),
		Email:     gofakeit.Email(),
		Password:  string(hashed),
		Role:      role,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Bio:       gofakeit.Sentence(12),
		AvatarURL: fmt.Sprintf("https://i.pravatar.cc/300?u=%s", gofakeit.UUID()),
		IsActive:  true,
		CreatedAt: f.pastTime(180),
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post for the given author. Published posts get a
// PublishedAt shortly after their creation time.
func (f *Factory) CreatePost(author *models.User, status models.PostStatus, overrides ...func(*models.Post)) (*models.Post, error) {
	created := f.pastTime(90)
	post := &models.Post{
		Title:           gofakeit.Sentence(6) + " " + gofakeit.Word(),
		Content:         gofakeit.Paragraph(3, 5, 12, "\n\n"),
		Status:          status,
		MetaDescription: gofakeit.Sentence(10),
		Tags:            strings.Join([]string{gofakeit.Word(), gofakeit.Word(), gofakeit.Word()}, ","),
		FeaturedImage:   fmt.Sprintf("https://picsum.photos/seed/%s/1200/630", gofakeit.UUID()),
		UserID:          author.ID,
		CreatedAt:       created,
	}
	if status == models.StatusPublished {
		publishedAt := created.Add(time.Duration(f.rand.Intn(48)) * time.Hour)
		post.PublishedAt = &publishedAt
	}
	for _, override := range overrides {
		override(post)
	}

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment, optionally as a reply.
func (f *Factory) CreateComment(author *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Content:    gofakeit.Sentence(f.rand.Intn(15) + 5),
		UserID:     author.ID,
		PostID:     post.ID,
		IsApproved: true,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateVote persists a like or dislike.
func (f *Factory) CreateVote(user *models.User, post *models.Post, isLike bool) (*models.Like, error) {
	like := &models.Like{
		PostID: post.ID,
		UserID: user.ID,
		IsLike: isLike,
	}
	if err := f.db.Create(like).Error; err != nil {
		return nil, err
	}
	return like, nil
}

func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)
}
