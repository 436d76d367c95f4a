// Package announcements provides database operations for admin announcements.
package announcements

import (
	"gorm.io/gorm"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

// Repository handles all announcement database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new announcements repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateAnnouncement inserts a new draft announcement.
func (r *Repository) CreateAnnouncement(a *entities.Announcement) error {
	return r.db.Create(a).Error
}

// GetAnnouncementByID retrieves a single announcement.
func (r *Repository) GetAnnouncementByID(id uint) (*entities.Announcement, error) {
	var a entities.Announcement
	err := r.db.First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateAnnouncement saves title and body changes.
func (r *Repository) UpdateAnnouncement(a *entities.Announcement) error {
	return r.db.Model(&entities.Announcement{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{"title": a.Title, "body": a.Body}).Error
}

// SetPublished flips the published flag. The update is conditional on the
// flag actually changing, so the returned row count distinguishes a real
// transition from a repeat request.
func (r *Repository) SetPublished(id uint, published bool) (int64, error) {
	result := r.db.Model(&entities.Announcement{}).
		Where("id = ? AND published = ?", id, !published).
		Update("published", published)
	return result.RowsAffected, result.Error
}

// DeleteAnnouncement removes an announcement.
func (r *Repository) DeleteAnnouncement(id uint) error {
	return r.db.Delete(&entities.Announcement{}, id).Error
}

// ListPublished returns published announcements, newest first.
func (r *Repository) ListPublished(limit int) ([]entities.Announcement, error) {
	var out []entities.Announcement
	query := r.db.Where("published = ?", true).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&out).Error
	return out, err
}

// ListAll returns every announcement for the admin view.
func (r *Repository) ListAll() ([]entities.Announcement, error) {
	var out []entities.Announcement
	err := r.db.Order("created_at DESC").Find(&out).Error
	return out, err
}
