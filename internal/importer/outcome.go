package importer

import (
	"context"
	"time"

	"github.com/thep200/sach-crawler/pkg/log"
)

// Outcome là kết quả xử lý một bản ghi (một thể loại, một sách hoặc một file chương)
type Outcome int

const (
	Inserted Outcome = iota
	Updated
	SkippedMissingKey
	SkippedNoMatch
	SkippedSummary
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	case SkippedMissingKey:
		return "skipped_missing_key"
	case SkippedNoMatch:
		return "skipped_no_match"
	case SkippedSummary:
		return "skipped_summary"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Stats struct {
	Started           time.Time
	Total             int
	Inserted          int
	Updated           int
	SkippedMissingKey int
	SkippedNoMatch    int
	SkippedSummary    int
	Failed            int
	// Số thư mục sách bị bỏ qua (không khớp sách nào hoặc rỗng)
	SkippedBooks int
}

func newStats() Stats {
	return Stats{Started: time.Now()}
}

func (s *Stats) Add(o Outcome) {
	s.Total++
	switch o {
	case Inserted:
		s.Inserted++
	case Updated:
		s.Updated++
	case SkippedMissingKey:
		s.SkippedMissingKey++
	case SkippedNoMatch:
		s.SkippedNoMatch++
	case SkippedSummary:
		s.SkippedSummary++
	case Failed:
		s.Failed++
	}
}

func (s *Stats) Merge(other Stats) {
	s.Total += other.Total
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.SkippedMissingKey += other.SkippedMissingKey
	s.SkippedNoMatch += other.SkippedNoMatch
	s.SkippedSummary += other.SkippedSummary
	s.Failed += other.Failed
	s.SkippedBooks += other.SkippedBooks
}

func (s Stats) Skipped() int {
	return s.SkippedMissingKey + s.SkippedNoMatch + s.SkippedSummary
}

// Log in khối tổng kết của một lần import
func (s Stats) Log(ctx context.Context, logger log.Logger, title string) {
	endTime := time.Now()

	logger.Info(ctx, "==== KẾT QUẢ IMPORT %s ====", title)
	if !s.Started.IsZero() {
		logger.Info(ctx, "Thời gian bắt đầu: %s", s.Started.Format(time.RFC3339))
		logger.Info(ctx, "Thời gian kết thúc: %s", endTime.Format(time.RFC3339))
		logger.Info(ctx, "Tổng thời gian thực hiện: %v", endTime.Sub(s.Started))
	}
	logger.Info(ctx, "Tổng số bản ghi đã xử lý: %d", s.Total)
	logger.Success(ctx, "Thêm mới: %d", s.Inserted)
	logger.Info(ctx, "Cập nhật: %d", s.Updated)
	logger.Error(ctx, "Lỗi: %d", s.Failed)
	logger.Warn(ctx, "Bỏ qua (thiếu url): %d", s.SkippedMissingKey)
	logger.Warn(ctx, "Bỏ qua (không khớp sách): %d", s.SkippedNoMatch)
	logger.Warn(ctx, "Bỏ qua (file giới thiệu sách): %d", s.SkippedSummary)
	logger.Warn(ctx, "Số thư mục sách bị bỏ qua: %d", s.SkippedBooks)
}
