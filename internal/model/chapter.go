package model

import (
	"errors"
	"time"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

type Chapter struct {
	Model
	ChapterID      uint      `json:"chapter_id" gorm:"column:chapter_id;primaryKey;autoIncrement"`
	BookID         uint      `json:"book_id" gorm:"column:book_id;not null;index"`
	Title          string    `json:"title" gorm:"column:title;type:varchar(500);not null"`
	URL            string    `json:"url" gorm:"column:url;type:varchar(512);not null;uniqueIndex"`
	Content        string    `json:"content" gorm:"column:content;type:text"`
	NextChapterURL *string   `json:"next_chapter_url" gorm:"column:next_chapter_url;type:varchar(1024)"`
	PrevChapterURL *string   `json:"prev_chapter_url" gorm:"column:prev_chapter_url;type:varchar(1024)"`
	ChapterOrder   int       `json:"chapter_order" gorm:"column:chapter_order;not null;default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at"`

	Book *Book `json:"-" gorm:"foreignKey:BookID;references:BookID"`
}

func NewChapter(config *cfg.Config, logger log.Logger, database *db.Database) (*Chapter, error) {
	chapter := &Chapter{
		Model: Model{
			Config:   config,
			Logger:   logger,
			Database: database,
		},
	}
	return chapter, nil
}

func (c *Chapter) TableName() string {
	return "chapters"
}

// UpsertByURL cập nhật title, content, next/prev của chương đã có theo url,
// chưa có thì thêm mới với book_id và chapter_order của row. Trả về true nếu là bản ghi mới.
// Chương đã tồn tại giữ nguyên book_id và chapter_order.
func (c *Chapter) UpsertByURL(tx *gorm.DB, row *Chapter) (bool, error) {
	var existing Chapter
	err := tx.Select("chapter_id").Where("url = ?", row.URL).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Omit("Book").Create(row).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	row.ChapterID = existing.ChapterID
	return false, tx.Model(&Chapter{}).
		Where("chapter_id = ?", existing.ChapterID).
		Updates(map[string]interface{}{
			"title":            row.Title,
			"content":          row.Content,
			"next_chapter_url": row.NextChapterURL,
			"prev_chapter_url": row.PrevChapterURL,
			"updated_at":       time.Now(),
		}).Error
}

// ListByBook trả về các chương của một sách theo chapter_order
func (c *Chapter) ListByBook(tx *gorm.DB, bookID uint) ([]Chapter, error) {
	var chapters []Chapter
	err := tx.Where("book_id = ?", bookID).Order("chapter_order ASC, chapter_id ASC").Find(&chapters).Error
	if err != nil {
		return nil, err
	}
	return chapters, nil
}

func (c *Chapter) Count(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&Chapter{}).Count(&n).Error
	return n, err
}
