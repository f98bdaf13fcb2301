package admin

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/maintenance"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
)

// Server là HTTP server quản trị dữ liệu sách
type Server struct {
	Logger   log.Logger
	Config   *cfg.Config
	Database *db.Database
	server   *http.Server
	port     int
}

func NewServer(logger log.Logger, config *cfg.Config, database *db.Database) (*Server, error) {
	port := config.Admin.Port
	if port <= 0 {
		port = 3000
	}
	return &Server{
		Logger:   logger,
		Config:   config,
		Database: database,
		port:     port,
	}, nil
}

// Router dựng gin engine với toàn bộ route của admin
func (s *Server) Router() (*gin.Engine, error) {
	maintainer, err := maintenance.NewMaintainer(s.Logger, s.Config, s.Database, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create maintainer: %w", err)
	}
	handler, err := NewHandler(s.Logger, s.Database, maintainer)
	if err != nil {
		return nil, fmt.Errorf("failed to create admin handler: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/health", s.health)
	handler.RegisterRoutes(router.Group("/api"))
	return router, nil
}

// health trả 503 khi không kết nối được database
func (s *Server) health(c *gin.Context) {
	if err := s.Database.Ping(); err != nil {
		s.Logger.Error(c.Request.Context(), "Không kết nối được database: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Start chạy server tới khi Stop được gọi
func (s *Server) Start() error {
	router, err := s.Router()
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Admin server đang chạy tại cổng %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Đang tắt admin server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
