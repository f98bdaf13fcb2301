package crawler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/extractor"
	"github.com/thep200/sach-crawler/internal/limiter"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/kafka"
	"github.com/thep200/sach-crawler/pkg/log"
)

// PageFetcher tải một trang theo url
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
	Absolute(ref string) string
}

// Publisher nhận sự kiện mỗi khi một snapshot được ghi
type Publisher interface {
	PublishSnapshot(ctx context.Context, ev kafka.SnapshotEvent) error
}

type Crawler struct {
	Logger    log.Logger
	Config    *cfg.Config
	Options   Options
	Fetcher   PageFetcher
	Extractor *extractor.Extractor
	Store     *snapshot.Store
	Pacer     *limiter.Pacer
	Publisher Publisher
}

// NewCrawler dựng crawler. publisher có thể nil.
func NewCrawler(logger log.Logger, config *cfg.Config, fetcher PageFetcher, store *snapshot.Store, publisher Publisher) (*Crawler, error) {
	ex, err := extractor.NewExtractor(config.Site.BaseUrl, extractor.WithContentFormat(config.Crawler.ContentFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	return &Crawler{
		Logger:    logger,
		Config:    config,
		Options:   NewOptions(config),
		Fetcher:   fetcher,
		Extractor: ex,
		Store:     store,
		Pacer:     limiter.NewPacer(),
		Publisher: publisher,
	}, nil
}

func (c *Crawler) newRun(ctx context.Context, name string) *RunStats {
	stats := newRunStats(uuid.NewString())
	c.Logger.Info(ctx, "Bắt đầu %s (run id: %s) vào %s", name, stats.RunID, stats.Started.Format("2006-01-02 15:04:05"))
	return stats
}

// fetch tải trang, lỗi được log và đếm
func (c *Crawler) fetch(ctx context.Context, stats *RunStats, rawURL string) ([]byte, bool) {
	body, err := c.Fetcher.Fetch(ctx, c.Fetcher.Absolute(rawURL))
	stats.Requests++
	if err != nil {
		stats.FetchFailed++
		c.Logger.Error(ctx, "Không thể tải trang %s: %v", rawURL, err)
		return nil, false
	}
	return body, true
}

func (c *Crawler) publish(ctx context.Context, stats *RunStats, kind, path, rawURL string) {
	stats.Written++
	if c.Publisher == nil {
		return
	}

	ev := kafka.NewSnapshotEvent(kind, path, rawURL)
	if kind == kafka.KeyChapter || kind == kafka.KeyBook {
		ev.BookDir = filepath.Base(filepath.Dir(path))
		ev.FileName = filepath.Base(path)
	}
	if err := c.Publisher.PublishSnapshot(ctx, ev); err != nil {
		stats.PublishFailed++
		c.Logger.Warn(ctx, "Không thể gửi sự kiện cho file %s: %v", path, err)
	}
}

// wait nghỉ giữa hai mục, trả về false khi context bị huỷ
func (c *Crawler) wait(ctx context.Context, stats *RunStats, d time.Duration) bool {
	if err := c.Pacer.Wait(ctx, d); err != nil {
		stats.Interrupted = true
		c.Logger.Warn(ctx, "Dừng crawl: %v", err)
		return false
	}
	return true
}

func (c *Crawler) stopped(ctx context.Context, stats *RunStats) bool {
	if ctx.Err() != nil {
		stats.Interrupted = true
		c.Logger.Warn(ctx, "Dừng crawl: %v", ctx.Err())
		return true
	}
	return false
}
