package fetcher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/pkg/log"
)

// FetchError mô tả một lần tải trang thất bại: lỗi mạng, timeout hoặc status ngoài 2xx
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher tải từng trang một bằng GET, header cố định, không retry
type Fetcher struct {
	Config    *cfg.Config
	Logger    log.Logger
	base      *url.URL
	timeout   time.Duration
	collector *colly.Collector
}

func NewFetcher(config *cfg.Config, logger log.Logger) (*Fetcher, error) {
	base, err := url.Parse(config.Site.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	f := &Fetcher{
		Config:  config,
		Logger:  logger,
		base:    base,
		timeout: config.Site.Timeout,
	}
	f.collector = f.newCollector()
	return f, nil
}

// WithTimeout trả về một Fetcher mới dùng timeout khác, Fetcher gốc không đổi
func (f *Fetcher) WithTimeout(timeout time.Duration) *Fetcher {
	clone := &Fetcher{
		Config:  f.Config,
		Logger:  f.Logger,
		base:    f.base,
		timeout: timeout,
	}
	clone.collector = clone.newCollector()
	return clone
}

func (f *Fetcher) newCollector() *colly.Collector {
	userAgent := f.Config.Site.UserAgent
	if userAgent == "" {
		userAgent = cfg.DefaultUserAgent
	}
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	if f.timeout > 0 {
		c.SetRequestTimeout(f.timeout)
	}
	return c
}

// Absolute resolve một đường dẫn tương đối theo base url của site
func (f *Fetcher) Absolute(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return f.base.ResolveReference(u).String()
}

// session tạo collector dùng riêng cho một request, callback không bị cộng dồn giữa các lần gọi.
// Request bị huỷ ngay khi ctx bị huỷ.
func (f *Fetcher) session(ctx context.Context) *colly.Collector {
	c := f.collector.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		if lang := f.Config.Site.AcceptLanguage; lang != "" {
			r.Headers.Set("Accept-Language", lang)
		}
	})
	return c
}

// Fetch tải nội dung một trang
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target := f.Absolute(rawURL)
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: target, Err: err}
	}

	var (
		body     []byte
		fetchErr *FetchError
	)
	c := f.session(ctx)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &FetchError{URL: target, Status: r.StatusCode, Err: err}
	})

	f.Logger.Debug(ctx, "Đang tải trang: %s", target)
	if err := c.Visit(target); err != nil && fetchErr == nil {
		fetchErr = &FetchError{URL: target, Err: err}
	}
	if fetchErr != nil {
		return nil, fetchErr
	}
	return body, nil
}

// Head gửi HEAD request, trả về status và content-type.
// Chỉ trả lỗi khi không nhận được response (lỗi mạng, timeout).
func (f *Fetcher) Head(ctx context.Context, rawURL string) (int, string, error) {
	target := f.Absolute(rawURL)
	if err := ctx.Err(); err != nil {
		return 0, "", &FetchError{URL: target, Err: err}
	}

	var (
		status      int
		contentType string
		fetchErr    *FetchError
	)
	c := f.session(ctx)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
	})
	c.OnError(func(r *colly.Response, err error) {
		if r.StatusCode > 0 {
			status = r.StatusCode
			if r.Headers != nil {
				contentType = r.Headers.Get("Content-Type")
			}
			return
		}
		fetchErr = &FetchError{URL: target, Err: err}
	})

	if err := c.Head(target); err != nil && status == 0 && fetchErr == nil {
		fetchErr = &FetchError{URL: target, Err: err}
	}
	if fetchErr != nil {
		return 0, "", fetchErr
	}
	return status, contentType, nil
}
