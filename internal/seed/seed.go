package seed

import (
	"fmt"

	"inkwell/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options controls how much demo data Run generates.
type Options struct {
	Users           int
	PostsPerUser    int
	CommentsPerPost int
	VotersPerPost   int
}

// DefaultOptions is a medium-sized demo dataset.
var DefaultOptions = Options{
	Users:           10,
	PostsPerUser:    3,
	CommentsPerPost: 4,
	VotersPerPost:   6,
}

// Run populates the database with demo data: one admin and one manager with
// known credentials, a population of regular users, and posts with comment
// threads and votes.
func Run(db *gorm.DB, opts Options) error {
	f := NewFactory(db)

	if _, err := ensureAccount(db, f, "admin", "admin@example.com", models.RoleAdmin); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if _, err := ensureAccount(db, f, "manager", "manager@example.com", models.RoleManager); err != nil {
		return fmt.Errorf("seeding manager: %w", err)
	}

	var users []*models.User
	for i := 0; i < opts.Users; i++ {
		user, err := f.CreateUser(models.RoleUser)
		if err != nil {
			return fmt.Errorf("seeding user %d: %w", i, err)
		}
		users = append(users, user)
	}
	if len(users) == 0 {
		return nil
	}

	statuses := []models.PostStatus{
		models.StatusPublished,
		models.StatusPublished,
		models.StatusDraft,
		models.StatusArchived,
	}

	for _, author := range users {
		for p := 0; p < opts.PostsPerUser; p++ {
			post, err := f.CreatePost(author, statuses[p%len(statuses)])
			if err != nil {
				return fmt.Errorf("seeding post: %w", err)
			}
			if post.Status != models.StatusPublished {
				continue
			}

			var thread *models.Comment
			for ci := 0; ci < opts.CommentsPerPost; ci++ {
				commenter := users[(ci*7+int(post.ID))%len(users)]
				// Every other comment replies to the previous one so seeded
				// posts carry real threads.
				parent := thread
				if ci%2 == 0 {
					parent = nil
				}
				comment, err := f.CreateComment(commenter, post, parent)
				if err != nil {
					return fmt.Errorf("seeding comment: %w", err)
				}
				thread = comment
			}

			for vi := 0; vi < opts.VotersPerPost && vi < len(users); vi++ {
				voter := users[(vi*3+int(post.ID))%len(users)]
				if voter.ID == author.ID {
					continue
				}
				if _, err := f.CreateVote(voter, post, vi%4 != 0); err != nil {
					// (post_id, user_id) is unique; collisions from the
					// index arithmetic are fine to skip.
					continue
				}
			}
		}
	}

	return nil
}

// ensureAccount creates a well-known account if it does not already exist.
func ensureAccount(db *gorm.DB, f *Factory, username, email string, role models.Role) (*models.User, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}
