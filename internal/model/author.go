package model

import (
	"errors"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

type Author struct {
	Model
	AuthorID uint   `json:"author_id" gorm:"column:author_id;primaryKey;autoIncrement"`
	Name     string `json:"name" gorm:"column:name;type:varchar(255);not null;uniqueIndex"`
}

func NewAuthor(config *cfg.Config, logger log.Logger, database *db.Database) (*Author, error) {
	author := &Author{
		Model: Model{
			Config:   config,
			Logger:   logger,
			Database: database,
		},
	}
	return author, nil
}

func (a *Author) TableName() string {
	return "authors"
}

// FirstOrCreate tìm tác giả theo tên chính xác, chưa có thì thêm mới.
// Trả về author_id và true nếu vừa tạo.
func (a *Author) FirstOrCreate(tx *gorm.DB, name string) (uint, bool, error) {
	var existing Author
	err := tx.Select("author_id").Where("name = ?", name).Take(&existing).Error
	if err == nil {
		return existing.AuthorID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	row := &Author{Name: name}
	if err := tx.Create(row).Error; err != nil {
		return 0, false, err
	}
	return row.AuthorID, true, nil
}
