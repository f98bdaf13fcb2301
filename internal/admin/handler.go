package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thep200/sach-crawler/internal/maintenance"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
	"gorm.io/gorm"
)

type Handler struct {
	Logger     log.Logger
	Maintainer *maintenance.Maintainer
	db         *gorm.DB
}

func NewHandler(logger log.Logger, database *db.Database, maintainer *maintenance.Maintainer) (*Handler, error) {
	gdb, err := database.Db()
	if err != nil {
		return nil, err
	}
	return &Handler{
		Logger:     logger,
		Maintainer: maintainer,
		db:         gdb,
	}, nil
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.stats)
	rg.GET("/books/without-chapters", h.booksWithoutChapters)
	rg.DELETE("/books/cleanup", h.cleanup)
	rg.DELETE("/books/:id", h.deleteBook)
}

func failure(c *gin.Context, status int, message string, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   err.Error(),
	})
}

// Stats đếm số bản ghi của từng bảng
type Stats struct {
	Categories int64 `json:"categories"`
	Authors    int64 `json:"authors"`
	Books      int64 `json:"books"`
	Chapters   int64 `json:"chapters"`
}

func (h *Handler) stats(c *gin.Context) {
	var stats Stats
	tx := h.db.WithContext(c.Request.Context())
	counts := []struct {
		table interface{}
		dst   *int64
	}{
		{&model.Category{}, &stats.Categories},
		{&model.Author{}, &stats.Authors},
		{&model.Book{}, &stats.Books},
		{&model.Chapter{}, &stats.Chapters},
	}
	for _, item := range counts {
		if err := tx.Model(item.table).Count(item.dst).Error; err != nil {
			h.Logger.Error(c.Request.Context(), "Lỗi khi đếm bản ghi: %v", err)
			failure(c, http.StatusInternalServerError, "Đã xảy ra lỗi khi thống kê", err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *Handler) booksWithoutChapters(c *gin.Context) {
	books, err := h.Maintainer.FindBooksWithoutChapters(c.Request.Context())
	if err != nil {
		failure(c, http.StatusInternalServerError, "Đã xảy ra lỗi khi tìm sách", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(books),
		"books":   books,
	})
}

func (h *Handler) cleanup(c *gin.Context) {
	result, err := h.Maintainer.Cleanup(c.Request.Context())
	if err != nil {
		failure(c, http.StatusInternalServerError, "Đã xảy ra lỗi khi xóa sách", err)
		return
	}
	if result.Found == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Không có sách nào cần xóa",
			"deleted": 0,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Đã xóa %d sách không có chapters", len(result.Deleted)),
		"deleted": len(result.Deleted),
		"books":   result.Deleted,
		"failed":  len(result.Failed),
	})
}

func (h *Handler) deleteBook(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		failure(c, http.StatusBadRequest, "book id không hợp lệ", err)
		return
	}
	title, err := h.Maintainer.DeleteBook(c.Request.Context(), uint(id))
	if errors.Is(err, maintenance.ErrBookNotFound) {
		failure(c, http.StatusNotFound, "Không tìm thấy sách", err)
		return
	}
	if err != nil {
		failure(c, http.StatusInternalServerError, "Đã xảy ra lỗi khi xóa sách", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Đã xóa sách: %s", title),
		"book":    maintenance.BookRef{BookID: uint(id), Title: title},
	})
}
