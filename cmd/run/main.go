package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/log"
)

var (
	configPath string
	configName string
)

// app gom các phụ thuộc dùng chung của mọi lệnh
type app struct {
	Config   *cfg.Config
	Logger   log.Logger
	Database *db.Database
}

func newApp() (*app, error) {
	loader, _ := cfg.NewViperLoaderFrom(configPath, configName)
	config, err := loader.Load()
	if err != nil {
		return nil, err
	}
	logger, _ := log.NewCslLogger()
	database, err := db.NewDatabase(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	if err := database.Migrate(model.All(config, logger, database)...); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &app{Config: config, Logger: logger, Database: database}, nil
}

func (a *app) Close() {
	if err := a.Database.Close(); err != nil {
		a.Logger.Error(context.Background(), "Lỗi khi đóng kết nối database: %v", err)
	}
}

// run dựng app, chạy fn với context bị huỷ khi nhận SIGINT/SIGTERM
func run(fn func(ctx context.Context, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := fn(ctx, a); err != nil {
			a.Logger.Error(ctx, "Failed! %v", err)
			return err
		}
		a.Logger.Success(ctx, "Successfully!")
		return nil
	}
}

var rootCmd = &cobra.Command{
	Use:           "sach-crawler",
	Short:         "Crawl, import và bảo trì dữ liệu sách từ gacsach",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Tạo hoặc cập nhật các bảng trong database",
	RunE: run(func(ctx context.Context, a *app) error {
		a.Logger.Info(ctx, "Đã migrate database (%s)", a.Config.Database.Driver)
		return nil
	}),
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "cfg/yaml", "thư mục chứa file cấu hình")
	rootCmd.PersistentFlags().StringVar(&configName, "config-name", "mode", "tên file cấu hình (không có đuôi .yaml)")
	rootCmd.AddCommand(migrateCmd, crawlCmd, importCmd, maintenanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
