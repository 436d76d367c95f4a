// Package users provides database operations for account management.
package users

import (
	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new account. The password hash must already be set.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves an account by primary key.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves an account by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns accounts, optionally filtered by role.
func (r *Repository) ListUsers(role entities.UserRole) ([]entities.User, error) {
	var users []entities.User
	query := r.db.Order("created_at ASC, id ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Find(&users).Error
	return users, err
}

// UpdateRole changes an account's role. Returns the number of rows changed.
func (r *Repository) UpdateRole(userID uint, role entities.UserRole) (int64, error) {
	result := r.db.Model(&entities.User{}).
		Where("id = ?", userID).
		Update("role", role)
	return result.RowsAffected, result.Error
}

// DeactivateUser soft-deletes an account so its loans and fines survive.
func (r *Repository) DeactivateUser(userID uint) error {
	return r.db.Delete(&entities.User{}, userID).Error
}

// CountUsers returns the number of active accounts.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// ListMemberEmails returns the address of every active member account,
// used by the announcement broadcast task.
func (r *Repository) ListMemberEmails() ([]string, error) {
	var emails []string
	err := r.db.Model(&entities.User{}).
		Where("role = ?", entities.UserRoleMember).
		Order("id ASC").
		Pluck("email", &emails).Error
	return emails, err
}
