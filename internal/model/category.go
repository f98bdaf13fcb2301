package model

import (
	"errors"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

type Category struct {
	Model
	CategoryID uint   `json:"category_id" gorm:"column:category_id;primaryKey;autoIncrement"`
	Name       string `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Title      string `json:"title" gorm:"column:title;type:varchar(255)"`
	URL        string `json:"url" gorm:"column:url;type:varchar(512);not null;uniqueIndex"`
}

func NewCategory(config *cfg.Config, logger log.Logger, database *db.Database) (*Category, error) {
	category := &Category{
		Model: Model{
			Config:   config,
			Logger:   logger,
			Database: database,
		},
	}
	return category, nil
}

func (c *Category) TableName() string {
	return "categories"
}

// List trả về tất cả thể loại theo category_id tăng dần
func (c *Category) List(tx *gorm.DB) ([]Category, error) {
	var categories []Category
	if err := tx.Order("category_id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// UpsertByURL thêm mới hoặc cập nhật name/title theo url. Trả về true nếu là bản ghi mới.
func (c *Category) UpsertByURL(tx *gorm.DB, row *Category) (bool, error) {
	var existing Category
	err := tx.Select("category_id").Where("url = ?", row.URL).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Create(row).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	row.CategoryID = existing.CategoryID
	return false, tx.Model(&Category{}).
		Where("url = ?", row.URL).
		Updates(map[string]interface{}{
			"name":  row.Name,
			"title": row.Title,
		}).Error
}
