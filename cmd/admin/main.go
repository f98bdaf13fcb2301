package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/admin"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/pkg/db"
	applog "github.com/thep200/sach-crawler/pkg/log"
)

func main() {
	port := flag.Int("port", 0, "Cổng cho admin server (mặc định lấy từ admin.port)")
	flag.Parse()

	ctx := context.Background()
	logger, _ := applog.NewCslLogger()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		logger.Error(ctx, "Failed to load config: %v", err)
		os.Exit(1)
	}
	if *port > 0 {
		config.Admin.Port = *port
	}
	database, err := db.NewDatabase(config)
	if err != nil {
		logger.Error(ctx, "Failed to create database: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(model.All(config, logger, database)...); err != nil {
		logger.Error(ctx, "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	gin.SetMode(gin.ReleaseMode)
	server, err := admin.NewServer(logger, config, database)
	if err != nil {
		logger.Error(ctx, "Failed to create server: %v", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(ctx, "Server failed to start: %v", err)
			os.Exit(1)
		}
		return
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error(ctx, "Error during server shutdown: %v", err)
	}
	logger.Info(ctx, "Server shut down gracefully")
}
