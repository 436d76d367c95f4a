// Package settings provides database operations for admin-editable settings.
//
// # Usage
//
//	repo := settings.NewRepository(db)
//	days := repo.GetInt(entities.SettingKeyLoanPeriodDays, 14)
package settings

import (
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/masonr9/CSC400Project-sub000/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves one setting row. Absent keys return
// gorm.ErrRecordNotFound; the typed getters below turn that into a
// fallback.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	if err := r.db.Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetValue returns the stored value for key, or fallback when absent.
func (r *Repository) GetValue(key, fallback string) string {
	setting, err := r.GetSetting(key)
	if err != nil {
		return fallback
	}
	return setting.Value
}

// GetInt is GetValue parsed as an int. Unparseable values also fall back.
func (r *Repository) GetInt(key string, fallback int) int {
	if n, err := strconv.Atoi(r.GetValue(key, "")); err == nil {
		return n
	}
	return fallback
}

// GetBool is GetValue parsed as a bool. Unparseable values also fall back.
func (r *Repository) GetBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(r.GetValue(key, "")); err == nil {
		return b
	}
	return fallback
}

// SetSetting upserts one key. The unique index on key makes the conflict
// target.
func (r *Repository) SetSetting(key, value string) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entities.Setting{Key: key, Value: value}).Error
}

// DeleteSetting removes a key, reverting it to the config default.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}
