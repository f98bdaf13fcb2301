package importer

import (
	"errors"
	"fmt"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

// ErrInputMissing được trả về khi thư mục hoặc file đầu vào không tồn tại
var ErrInputMissing = errors.New("import input missing")

// Importer đưa dữ liệu snapshot trên đĩa vào DB. Mỗi bản ghi chạy trong transaction riêng,
// lỗi của một bản ghi không làm dừng cả lần chạy.
type Importer struct {
	Logger     log.Logger
	Config     *cfg.Config
	Database   *db.Database
	Store      *snapshot.Store
	CategoryMd *model.Category
	AuthorMd   *model.Author
	BookMd     *model.Book
	ChapterMd  *model.Chapter
}

func NewImporter(logger log.Logger, config *cfg.Config, database *db.Database, store *snapshot.Store) (*Importer, error) {
	categoryMd, err := model.NewCategory(config, logger, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create category model: %w", err)
	}
	authorMd, err := model.NewAuthor(config, logger, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create author model: %w", err)
	}
	bookMd, err := model.NewBook(config, logger, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create book model: %w", err)
	}
	chapterMd, err := model.NewChapter(config, logger, database)
	if err != nil {
		return nil, fmt.Errorf("failed to create chapter model: %w", err)
	}

	return &Importer{
		Logger:     logger,
		Config:     config,
		Database:   database,
		Store:      store,
		CategoryMd: categoryMd,
		AuthorMd:   authorMd,
		BookMd:     bookMd,
		ChapterMd:  chapterMd,
	}, nil
}

// withTx chạy fn trong một transaction. Outcome bỏ qua hoặc lỗi thì rollback, còn lại commit.
func withTx(gdb *gorm.DB, fn func(tx *gorm.DB) (Outcome, error)) (outcome Outcome, err error) {
	tx := gdb.Begin()
	if tx.Error != nil {
		return Failed, tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			outcome, err = Failed, fmt.Errorf("panic: %v", r)
		}
	}()

	outcome, err = fn(tx)
	if err != nil {
		tx.Rollback()
		return Failed, err
	}
	if outcome != Inserted && outcome != Updated {
		tx.Rollback()
		return outcome, nil
	}

	if err := tx.Commit().Error; err != nil {
		return Failed, err
	}
	return outcome, nil
}

func upsertOutcome(created bool) Outcome {
	if created {
		return Inserted
	}
	return Updated
}
