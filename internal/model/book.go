package model

import (
	"errors"
	"time"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

type Book struct {
	Model
	BookID     uint       `json:"book_id" gorm:"column:book_id;primaryKey;autoIncrement"`
	Title      string     `json:"title" gorm:"column:title;type:varchar(500);not null"`
	URL        string     `json:"url" gorm:"column:url;type:varchar(512);not null;uniqueIndex"`
	ImageURL   *string    `json:"image_url" gorm:"column:image_url;type:varchar(1024)"`
	AuthorID   uint       `json:"author_id" gorm:"column:author_id;not null;index"`
	Excerpt    *string    `json:"excerpt" gorm:"column:excerpt;type:text"`
	Views      int        `json:"views" gorm:"column:views;not null;default:0"`
	Status     BookStatus `json:"status" gorm:"column:status;type:varchar(16);not null;default:Pending"`
	Rating     *string    `json:"rating" gorm:"column:rating;type:varchar(64)"`
	CategoryID uint       `json:"category_id" gorm:"column:category_id;not null;index"`
	CreatedAt  time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt  time.Time  `json:"updated_at" gorm:"column:updated_at"`

	Author   *Author   `json:"-" gorm:"foreignKey:AuthorID;references:AuthorID"`
	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:CategoryID"`
}

func NewBook(config *cfg.Config, logger log.Logger, database *db.Database) (*Book, error) {
	book := &Book{
		Model: Model{
			Config:   config,
			Logger:   logger,
			Database: database,
		},
	}
	return book, nil
}

func (b *Book) TableName() string {
	return "books"
}

// UpsertByURL thêm sách mới hoặc ghi đè các trường có thể thay đổi của sách đã có cùng url.
// Trả về true nếu là bản ghi mới.
func (b *Book) UpsertByURL(tx *gorm.DB, row *Book) (bool, error) {
	var existing Book
	err := tx.Select("book_id").Where("url = ?", row.URL).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := tx.Omit("Author", "Category").Create(row).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	row.BookID = existing.BookID
	return false, tx.Model(&Book{}).
		Where("book_id = ?", existing.BookID).
		Updates(map[string]interface{}{
			"title":       row.Title,
			"image_url":   row.ImageURL,
			"author_id":   row.AuthorID,
			"excerpt":     row.Excerpt,
			"views":       row.Views,
			"status":      row.Status,
			"rating":      row.Rating,
			"category_id": row.CategoryID,
			"updated_at":  time.Now(),
		}).Error
}

// List trả về toàn bộ sách theo book_id tăng dần
func (b *Book) List(tx *gorm.DB) ([]Book, error) {
	var books []Book
	if err := tx.Order("book_id ASC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// WithoutChapters trả về các sách chưa có chương nào
func (b *Book) WithoutChapters(tx *gorm.DB) ([]Book, error) {
	var books []Book
	err := tx.Table("books").
		Select("books.book_id, books.title, books.url").
		Joins("LEFT JOIN chapters ON chapters.book_id = books.book_id").
		Where("chapters.chapter_id IS NULL").
		Order("books.book_id ASC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Delete xoá sách cùng các chương của nó (nếu có)
func (b *Book) Delete(tx *gorm.DB, bookID uint) error {
	if err := tx.Where("book_id = ?", bookID).Delete(&Chapter{}).Error; err != nil {
		return err
	}
	return tx.Where("book_id = ?", bookID).Delete(&Book{}).Error
}

func (b *Book) UpdateExcerpt(tx *gorm.DB, bookID uint, excerpt *string) error {
	return tx.Model(&Book{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{"excerpt": excerpt, "updated_at": time.Now()}).Error
}

func (b *Book) UpdateImage(tx *gorm.DB, bookID uint, imageURL *string) error {
	return tx.Model(&Book{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{"image_url": imageURL, "updated_at": time.Now()}).Error
}

func (b *Book) Count(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Model(&Book{}).Count(&n).Error
	return n, err
}
