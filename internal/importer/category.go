package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/thep200/sach-crawler/internal/model"
	"gorm.io/gorm"
)

// ImportCategories đọc all_categories.json và upsert từng thể loại theo url
func (im *Importer) ImportCategories(ctx context.Context) (Stats, error) {
	stats := newStats()
	im.Logger.Info(ctx, "Bắt đầu import dữ liệu thể loại")

	categories, err := im.Store.ReadCategories()
	if errors.Is(err, fs.ErrNotExist) {
		return stats, fmt.Errorf("%w: %s", ErrInputMissing, im.Store.CategoriesPath())
	}
	if err != nil {
		return stats, err
	}

	gdb, err := im.Database.Db()
	if err != nil {
		return stats, fmt.Errorf("open database: %w", err)
	}

	for i, c := range categories {
		outcome, err := withTx(gdb, func(tx *gorm.DB) (Outcome, error) {
			if c.URL == "" {
				return SkippedMissingKey, nil
			}
			row := &model.Category{
				Name:  model.TruncateString(c.Name, 255),
				Title: model.TruncateString(c.Title, 255),
				URL:   c.URL,
			}
			created, err := im.CategoryMd.UpsertByURL(tx, row)
			if err != nil {
				return Failed, err
			}
			return upsertOutcome(created), nil
		})
		stats.Add(outcome)

		switch outcome {
		case Inserted:
			im.Logger.Success(ctx, "[%d/%d] Đã thêm mới thể loại \"%s\"", i+1, len(categories), c.Name)
		case Updated:
			im.Logger.Info(ctx, "[%d/%d] Đã cập nhật thể loại \"%s\"", i+1, len(categories), c.Name)
		case SkippedMissingKey:
			im.Logger.Warn(ctx, "[%d/%d] Thể loại \"%s\" thiếu url, bỏ qua", i+1, len(categories), c.Name)
		default:
			im.Logger.Error(ctx, "[%d/%d] Lỗi khi xử lý thể loại \"%s\": %v", i+1, len(categories), c.Name, err)
		}
	}

	stats.Log(ctx, im.Logger, "THỂ LOẠI")
	return stats, nil
}
