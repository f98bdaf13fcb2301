package maintenance

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownTable = errors.New("unknown table")

const backupSuffix = "_backup_"

// Các bảng có thể backup. Restore ghi lại theo khoá tự nhiên của bảng.
var tables = map[string]tableSpec{
	"categories": {
		naturalKey: "url",
		columns:    []string{"name", "title"},
		dump:       dump[model.Category],
		restore: func(tx *gorm.DB, path string, spec tableSpec) (int, error) {
			return replay(tx, path, spec, func(c *model.Category) { c.CategoryID = 0 })
		},
	},
	"authors": {
		naturalKey: "name",
		dump:       dump[model.Author],
		restore: func(tx *gorm.DB, path string, spec tableSpec) (int, error) {
			return replay(tx, path, spec, func(a *model.Author) { a.AuthorID = 0 })
		},
	},
	"books": {
		naturalKey: "url",
		columns:    []string{"title", "image_url", "author_id", "excerpt", "views", "status", "rating", "category_id", "updated_at"},
		dump:       dump[model.Book],
		restore: func(tx *gorm.DB, path string, spec tableSpec) (int, error) {
			return replay(tx, path, spec, func(b *model.Book) { b.BookID = 0 })
		},
	},
	"chapters": {
		naturalKey: "url",
		columns:    []string{"title", "content", "next_chapter_url", "prev_chapter_url", "chapter_order", "updated_at"},
		dump:       dump[model.Chapter],
		restore: func(tx *gorm.DB, path string, spec tableSpec) (int, error) {
			return replay(tx, path, spec, func(c *model.Chapter) { c.ChapterID = 0 })
		},
	},
}

type tableSpec struct {
	naturalKey string
	// Cột được ghi đè khi bản ghi đã tồn tại. Rỗng thì giữ nguyên bản ghi cũ.
	columns []string
	dump    func(gdb *gorm.DB) (interface{}, int, error)
	restore func(tx *gorm.DB, path string, spec tableSpec) (int, error)
}

func dump[T any](gdb *gorm.DB) (interface{}, int, error) {
	var rows []T
	if err := gdb.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, len(rows), nil
}

// replay đọc file backup và upsert từng dòng theo khoá tự nhiên
func replay[T any](tx *gorm.DB, path string, spec tableSpec, resetID func(*T)) (int, error) {
	var rows []T
	if err := snapshot.ReadJSON(path, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	for i := range rows {
		resetID(&rows[i])
	}

	conflict := clause.OnConflict{Columns: []clause.Column{{Name: spec.naturalKey}}}
	if len(spec.columns) == 0 {
		conflict.DoNothing = true
	} else {
		conflict.DoUpdates = clause.AssignmentColumns(spec.columns)
	}
	if err := tx.Omit(clause.Associations).Clauses(conflict).CreateInBatches(&rows, 100).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

// BackupName là tên file backup của một bảng tại thời điểm at
func BackupName(table string, at time.Time) string {
	return table + backupSuffix + strings.ReplaceAll(at.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-") + ".json"
}

// TableOf đọc tên bảng từ tên file backup
func TableOf(path string) (string, error) {
	table, _, ok := strings.Cut(filepath.Base(path), backupSuffix)
	if !ok {
		return "", fmt.Errorf("%w: cannot read table from %s", ErrUnknownTable, filepath.Base(path))
	}
	if _, ok := tables[table]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	return table, nil
}

// Backup ghi toàn bộ bảng ra <backup_dir>/<table>_backup_<timestamp>.json
func (m *Maintainer) Backup(ctx context.Context, table string) (string, error) {
	spec, ok := tables[table]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	gdb, err := m.Database.Db()
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}

	rows, n, err := spec.dump(gdb)
	if err != nil {
		return "", fmt.Errorf("dump %s: %w", table, err)
	}
	path := filepath.Join(m.Config.Storage.BackupDir, BackupName(table, time.Now()))
	if err := snapshot.WriteJSON(path, rows); err != nil {
		return "", err
	}
	m.Logger.Info(ctx, "Đã sao lưu %d bản ghi của bảng %s vào: %s", n, table, path)
	return path, nil
}

// Restore ghi lại file backup trong một transaction, lỗi ở bất kỳ dòng nào thì rollback toàn bộ
func (m *Maintainer) Restore(ctx context.Context, path string) (int, error) {
	table, err := TableOf(path)
	if err != nil {
		return 0, err
	}
	gdb, err := m.Database.Db()
	if err != nil {
		return 0, fmt.Errorf("open database: %w", err)
	}

	m.Logger.Info(ctx, "Đang phục hồi bảng %s từ file backup: %s", table, path)
	spec := tables[table]
	var restored int
	err = gdb.Transaction(func(tx *gorm.DB) error {
		n, err := spec.restore(tx, path, spec)
		restored = n
		return err
	})
	if err != nil {
		m.Logger.Error(ctx, "Lỗi phục hồi dữ liệu: %v", err)
		return 0, fmt.Errorf("restore %s: %w", table, err)
	}
	m.Logger.Success(ctx, "Đã phục hồi %d bản ghi vào bảng %s", restored, table)
	return restored, nil
}
