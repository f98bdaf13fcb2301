package model

import (
	"errors"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
)

// ErrNoCategories được trả về khi bảng categories rỗng, không thể gán category_id cho sách
var ErrNoCategories = errors.New("no categories in database")

type Model struct {
	Config   *cfg.Config  `gorm:"-" json:"-"`
	Logger   log.Logger   `gorm:"-" json:"-"`
	Database *db.Database `gorm:"-" json:"-"`
}

// All trả về danh sách model theo thứ tự cần migrate
func All(config *cfg.Config, logger log.Logger, database *db.Database) []interface{} {
	category, _ := NewCategory(config, logger, database)
	author, _ := NewAuthor(config, logger, database)
	book, _ := NewBook(config, logger, database)
	chapter, _ := NewChapter(config, logger, database)
	return []interface{}{category, author, book, chapter}
}
