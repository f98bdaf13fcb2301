package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/extractor"
	"github.com/thep200/sach-crawler/internal/fetcher"
	"github.com/thep200/sach-crawler/internal/limiter"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
)

const imageCheckTimeout = 5 * time.Second

// PageFetcher tải trang chi tiết sách
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// ImageChecker gửi HEAD tới url ảnh
type ImageChecker interface {
	Head(ctx context.Context, rawURL string) (int, string, error)
}

// Maintainer gom các tác vụ bảo trì dữ liệu đã import: backup/restore,
// dọn sách không có chương, làm mới excerpt và ảnh bìa, kiểm tra url ảnh
type Maintainer struct {
	Logger     log.Logger
	Config     *cfg.Config
	Database   *db.Database
	Fetcher    PageFetcher
	Checker    ImageChecker
	Extractor  *extractor.Extractor
	Pacer      *limiter.Pacer
	BookMd     *model.Book
	ChapterMd  *model.Chapter
	AuthorMd   *model.Author
	CategoryMd *model.Category
}

func NewMaintainer(logger log.Logger, config *cfg.Config, database *db.Database, f *fetcher.Fetcher) (*Maintainer, error) {
	ex, err := extractor.NewExtractor(config.Site.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}
	bookMd, _ := model.NewBook(config, logger, database)
	chapterMd, _ := model.NewChapter(config, logger, database)
	authorMd, _ := model.NewAuthor(config, logger, database)
	categoryMd, _ := model.NewCategory(config, logger, database)

	m := &Maintainer{
		Logger:     logger,
		Config:     config,
		Database:   database,
		Extractor:  ex,
		Pacer:      limiter.NewPacer(),
		BookMd:     bookMd,
		ChapterMd:  chapterMd,
		AuthorMd:   authorMd,
		CategoryMd: categoryMd,
	}
	if f != nil {
		m.Fetcher = f
		m.Checker = f.WithTimeout(imageCheckTimeout)
	}
	return m, nil
}

// Result đếm kết quả của một tác vụ làm mới dữ liệu
type Result struct {
	Started    time.Time
	Total      int
	Success    int
	Default    int
	Unchanged  int
	Failed     int
	BackupFile string
}

func newResult() Result {
	return Result{Started: time.Now()}
}

func (r Result) Log(ctx context.Context, logger log.Logger, title string) {
	endTime := time.Now()

	logger.Info(ctx, "==== KẾT QUẢ %s ====", title)
	logger.Info(ctx, "Thời gian bắt đầu: %s", r.Started.Format(time.RFC3339))
	logger.Info(ctx, "Thời gian kết thúc: %s", endTime.Format(time.RFC3339))
	logger.Info(ctx, "Tổng thời gian thực hiện: %v", endTime.Sub(r.Started))
	logger.Info(ctx, "Tổng số sách: %d", r.Total)
	logger.Success(ctx, "Thành công: %d", r.Success)
	if r.Default > 0 {
		logger.Warn(ctx, "Dùng giá trị mặc định: %d", r.Default)
	}
	if r.Unchanged > 0 {
		logger.Info(ctx, "Không thay đổi: %d", r.Unchanged)
	}
	logger.Error(ctx, "Lỗi: %d", r.Failed)
	if r.BackupFile != "" {
		logger.Info(ctx, "File backup: %s", r.BackupFile)
	}
}
