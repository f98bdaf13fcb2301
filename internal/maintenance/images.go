package maintenance

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/thep200/sach-crawler/internal/snapshot"
)

type ImageStats struct {
	Total            int `json:"total"`
	Valid            int `json:"valid"`
	Invalid          int `json:"invalid"`
	Null             int `json:"null"`
	TotalProblematic int `json:"total_problematic"`
}

type ImageIssue struct {
	BookID   uint   `json:"book_id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	BookURL  string `json:"book_url"`
	ImageURL string `json:"image_url,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type ImageReport struct {
	Timestamp   time.Time    `json:"timestamp"`
	Stats       ImageStats   `json:"stats"`
	NullURLs    []ImageIssue `json:"null_urls"`
	InvalidURLs []ImageIssue `json:"invalid_urls"`
}

type imageRow struct {
	BookID     uint
	Title      string
	ImageURL   *string
	BookURL    string
	AuthorName *string
}

// checkImage trả về "" nếu url là ảnh hợp lệ, ngược lại là lý do
func (m *Maintainer) checkImage(ctx context.Context, rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "Invalid URL format"
	}

	status, contentType, err := m.Checker.Head(ctx, rawURL)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	if status != http.StatusOK {
		return fmt.Sprintf("HTTP status code: %d", status)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Sprintf("Not an image. Content-Type: %s", contentType)
	}
	return ""
}

// CheckImages gửi HEAD tới ảnh bìa của mọi sách và ghi báo cáo vào report dir
func (m *Maintainer) CheckImages(ctx context.Context) (*ImageReport, string, error) {
	gdb, err := m.Database.Db()
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}

	var rows []imageRow
	err = gdb.Table("books AS b").
		Select("b.book_id, b.title, b.image_url, b.url AS book_url, a.name AS author_name").
		Joins("LEFT JOIN authors AS a ON b.author_id = a.author_id").
		Order("b.book_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, "", fmt.Errorf("list books: %w", err)
	}
	m.Logger.Info(ctx, "Bắt đầu kiểm tra url ảnh của %d sách", len(rows))

	report := &ImageReport{
		Timestamp:   time.Now(),
		Stats:       ImageStats{Total: len(rows)},
		NullURLs:    []ImageIssue{},
		InvalidURLs: []ImageIssue{},
	}
	for i, row := range rows {
		if ctx.Err() != nil {
			m.Logger.Warn(ctx, "Dừng kiểm tra ảnh: %v", ctx.Err())
			break
		}
		if (i+1)%10 == 0 || i+1 == len(rows) {
			m.Logger.Info(ctx, "Đã kiểm tra %d/%d sách", i+1, len(rows))
		}

		issue := ImageIssue{BookID: row.BookID, Title: row.Title, BookURL: row.BookURL}
		if row.AuthorName != nil {
			issue.Author = *row.AuthorName
		}
		if row.ImageURL == nil || *row.ImageURL == "" {
			report.Stats.Null++
			report.NullURLs = append(report.NullURLs, issue)
			continue
		}

		if reason := m.checkImage(ctx, *row.ImageURL); reason != "" {
			issue.ImageURL = *row.ImageURL
			issue.Reason = reason
			report.Stats.Invalid++
			report.InvalidURLs = append(report.InvalidURLs, issue)
		} else {
			report.Stats.Valid++
		}

		if err := m.Pacer.Wait(ctx, m.Config.Maintenance.ImageCheckDelay); err != nil {
			break
		}
	}
	report.Stats.TotalProblematic = report.Stats.Invalid + report.Stats.Null

	name := "image_url_report_" + strings.ReplaceAll(report.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-") + ".json"
	path := filepath.Join(m.Config.Storage.ReportDir, name)
	if err := snapshot.WriteJSON(path, report); err != nil {
		return report, "", err
	}

	m.Logger.Info(ctx, "==== KẾT QUẢ KIỂM TRA ẢNH ====")
	m.Logger.Info(ctx, "Tổng số sách: %d", report.Stats.Total)
	m.Logger.Success(ctx, "Url hợp lệ: %d", report.Stats.Valid)
	m.Logger.Error(ctx, "Url không hợp lệ: %d", report.Stats.Invalid)
	m.Logger.Warn(ctx, "Không có url: %d", report.Stats.Null)
	m.Logger.Info(ctx, "Báo cáo đã được lưu vào: %s", path)
	return report, path, nil
}
