// Package users provides database operations for user management.
//
// This package implements the UserStore interface defined in internal/auth.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByLogin(ctx, "alice")
package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/quna/internal/entities"
)

var ErrNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new user. The id is generated when empty.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = entities.UserRoleMember
	}
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByLogin retrieves a user by username or email.
func (r *Repository) GetByLogin(ctx context.Context, login string) (*entities.User, error) {
	return r.first(ctx, "username = ? OR email = ?", login, login)
}

// GetByTokenHash retrieves a user by the hash of their API token.
func (r *Repository) GetByTokenHash(ctx context.Context, hash string) (*entities.User, error) {
	if hash == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "token_hash = ?", hash)
}

// Exists reports whether a user with the username or email is present.
func (r *Repository) Exists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// Update applies column updates to the user and reports whether it existed.
func (r *Repository) Update(ctx context.Context, id string, updates map[string]any) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of users.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	return count, err
}

func (r *Repository) first(ctx context.Context, query string, args ...any) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
