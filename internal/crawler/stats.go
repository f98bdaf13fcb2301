package crawler

import (
	"context"
	"time"

	"github.com/thep200/sach-crawler/pkg/log"
)

// RunStats đếm kết quả của một lần crawl
type RunStats struct {
	RunID   string
	Started time.Time

	Requests      int
	FetchFailed   int
	ParseFailed   int
	SaveFailed    int
	Written       int
	PublishFailed int

	Categories int
	Pages      int
	Books      int
	Chapters   int

	Interrupted bool
}

func newRunStats(runID string) *RunStats {
	return &RunStats{RunID: runID, Started: time.Now()}
}

// Failed là tổng số mục bị bỏ qua do lỗi
func (s *RunStats) Failed() int {
	return s.FetchFailed + s.ParseFailed + s.SaveFailed
}

func (s *RunStats) Log(ctx context.Context, logger log.Logger, title string) {
	endTime := time.Now()

	logger.Info(ctx, "==== KẾT QUẢ CRAWL %s ====", title)
	logger.Info(ctx, "Run id: %s", s.RunID)
	logger.Info(ctx, "Thời gian bắt đầu: %s", s.Started.Format(time.RFC3339))
	logger.Info(ctx, "Thời gian kết thúc: %s", endTime.Format(time.RFC3339))
	logger.Info(ctx, "Tổng thời gian thực hiện: %v", endTime.Sub(s.Started))
	logger.Info(ctx, "Tổng số request: %d", s.Requests)
	if s.Categories > 0 {
		logger.Info(ctx, "Số thể loại: %d", s.Categories)
	}
	if s.Pages > 0 {
		logger.Info(ctx, "Số trang danh mục: %d", s.Pages)
	}
	logger.Info(ctx, "Số sách: %d", s.Books)
	logger.Info(ctx, "Số chương: %d", s.Chapters)
	logger.Success(ctx, "Số file đã ghi: %d", s.Written)
	logger.Error(ctx, "Lỗi tải trang: %d, lỗi bóc tách: %d, lỗi ghi file: %d", s.FetchFailed, s.ParseFailed, s.SaveFailed)
	if s.PublishFailed > 0 {
		logger.Warn(ctx, "Số sự kiện gửi thất bại: %d", s.PublishFailed)
	}
	if s.Interrupted {
		logger.Warn(ctx, "Lần chạy bị dừng giữa chừng")
	}
}
