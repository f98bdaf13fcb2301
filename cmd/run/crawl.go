package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thep200/sach-crawler/internal/crawler"
	"github.com/thep200/sach-crawler/internal/fetcher"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/kafka"
)

var publishEvents bool

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl dữ liệu từ gacsach ra các file JSON",
}

var crawlCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Lấy danh sách thể loại từ trang chủ",
	RunE: run(func(ctx context.Context, a *app) error {
		return withCrawler(ctx, a, func(c *crawler.Crawler) (*crawler.RunStats, error) {
			stats, _, err := c.CrawlCategories(ctx)
			return stats, err
		})
	}),
}

var crawlBooksCmd = &cobra.Command{
	Use:   "books",
	Short: "Lấy danh sách sách của từng thể loại",
	RunE: run(func(ctx context.Context, a *app) error {
		return withCrawler(ctx, a, func(c *crawler.Crawler) (*crawler.RunStats, error) {
			return c.CrawlCategoryBooks(ctx)
		})
	}),
}

var crawlContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Lấy chi tiết và nội dung chương của các sách đã crawl",
	RunE: run(func(ctx context.Context, a *app) error {
		return withCrawler(ctx, a, func(c *crawler.Crawler) (*crawler.RunStats, error) {
			return c.CrawlContent(ctx)
		})
	}),
}

var crawlBookCmd = &cobra.Command{
	Use:   "book <url>",
	Short: "Lấy chi tiết và nội dung chương của một sách",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, a *app) error {
			return withCrawler(ctx, a, func(c *crawler.Crawler) (*crawler.RunStats, error) {
				return c.CrawlBook(ctx, args[0])
			})
		})(cmd, args)
	},
}

func init() {
	crawlCmd.PersistentFlags().BoolVar(&publishEvents, "publish", false, "gửi sự kiện snapshot lên kafka (ghi đè crawler.publish_events)")
	crawlCmd.AddCommand(crawlCategoriesCmd, crawlBooksCmd, crawlContentCmd, crawlBookCmd)
}

func withCrawler(ctx context.Context, a *app, fn func(c *crawler.Crawler) (*crawler.RunStats, error)) error {
	f, err := fetcher.NewFetcher(a.Config, a.Logger)
	if err != nil {
		return err
	}
	store, _ := snapshot.NewStore(a.Config, a.Logger)

	var publisher crawler.Publisher
	if publishEvents || a.Config.Crawler.PublishEvents {
		producer, err := kafka.NewProducer(a.Config, a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close()
		publisher = producer
	}

	c, err := crawler.NewCrawler(a.Logger, a.Config, f, store, publisher)
	if err != nil {
		return err
	}
	stats, err := fn(c)
	if err != nil {
		return err
	}
	if stats.Interrupted {
		a.Logger.Warn(ctx, "Crawl bị dừng giữa chừng, có thể chạy lại để tiếp tục")
	}
	return nil
}
