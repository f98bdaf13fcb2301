package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"

	"github.com/thep200/sach-crawler/internal/extractor"
	"github.com/thep200/sach-crawler/pkg/kafka"
)

var ErrInputMissing = errors.New("crawl input missing")

// CrawlCategories lấy danh sách thể loại từ trang chủ và ghi all_categories.json
func (c *Crawler) CrawlCategories(ctx context.Context) (*RunStats, []extractor.Category, error) {
	stats := c.newRun(ctx, "lấy danh sách thể loại")
	defer stats.Log(ctx, c.Logger, "THỂ LOẠI")

	body, ok := c.fetch(ctx, stats, c.Config.Site.BaseUrl)
	if !ok {
		return stats, nil, fmt.Errorf("fetch home page %s failed", c.Config.Site.BaseUrl)
	}

	record, err := c.Extractor.ParseCategoryList(body)
	if err != nil || !record.Valid() {
		stats.ParseFailed++
		return stats, nil, fmt.Errorf("no categories found on %s", c.Config.Site.BaseUrl)
	}
	stats.Categories = len(record.Categories)
	c.Logger.Info(ctx, "Đã tìm thấy %d thể loại sách", len(record.Categories))

	path, err := c.Store.SaveCategories(ctx, record.Categories)
	if err != nil {
		stats.SaveFailed++
		return stats, nil, fmt.Errorf("save categories: %w", err)
	}
	c.publish(ctx, stats, kafka.KeyCategories, path, c.Config.Site.BaseUrl)
	return stats, record.Categories, nil
}

// CrawlCategoryBooks đọc all_categories.json và lấy danh sách sách của từng thể loại
func (c *Crawler) CrawlCategoryBooks(ctx context.Context) (*RunStats, error) {
	categories, err := c.Store.ReadCategories()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputMissing, c.Store.CategoriesPath())
	}
	if err != nil {
		return nil, fmt.Errorf("read categories: %w", err)
	}

	stats := c.newRun(ctx, "lấy sách theo thể loại")
	defer stats.Log(ctx, c.Logger, "SÁCH THEO THỂ LOẠI")

	for i, category := range categories {
		if c.stopped(ctx, stats) {
			break
		}
		if i > 0 && !c.wait(ctx, stats, c.Options.DelayBetweenPages) {
			break
		}

		c.Logger.Info(ctx, "[%d/%d] Đang lấy sách từ danh mục: %s", i+1, len(categories), category.Name)
		books := c.crawlCategory(ctx, stats, category)
		stats.Categories++
		stats.Books += len(books)

		path, err := c.Store.SaveCategoryBooks(ctx, category.Name, books)
		if err != nil {
			stats.SaveFailed++
			c.Logger.Error(ctx, "Không thể lưu sách của danh mục %s: %v", category.Name, err)
			continue
		}
		c.publish(ctx, stats, kafka.KeyBooks, path, category.URL)
	}
	return stats, nil
}

// pageURL: trang 0 là url gốc, các trang sau thêm ?page=N
func pageURL(categoryURL string, page int) string {
	if page == 0 {
		return categoryURL
	}
	u, err := url.Parse(categoryURL)
	if err != nil {
		return categoryURL + "?page=" + strconv.Itoa(page)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Crawler) crawlCategory(ctx context.Context, stats *RunStats, category extractor.Category) []extractor.BookStub {
	books := []extractor.BookStub{}
	limit := c.Options.PageLimit

	for page := 0; limit <= 0 || page < limit; page++ {
		if page > 0 && !c.wait(ctx, stats, c.Options.DelayBetweenPages) {
			break
		}

		body, ok := c.fetch(ctx, stats, pageURL(category.URL, page))
		if !ok {
			break
		}
		stats.Pages++

		record, err := c.Extractor.ParseCategoryPage(body, category.Name)
		if err != nil {
			stats.ParseFailed++
			c.Logger.Error(ctx, "Không thể bóc tách trang %d của danh mục %s: %v", page+1, category.Name, err)
			break
		}
		if !record.Valid() {
			c.Logger.Info(ctx, "Không còn sách ở trang %d", page+1)
			break
		}

		c.Logger.Info(ctx, "Đã tìm thấy %d sách ở trang %d", len(record.Books), page+1)
		books = append(books, record.Books...)

		if !record.HasNext {
			c.Logger.Info(ctx, "Đã hết trang")
			break
		}
	}

	c.Logger.Info(ctx, "Tổng cộng đã lấy được %d sách từ danh mục %s", len(books), category.Name)
	return books
}
