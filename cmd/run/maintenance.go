package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/thep200/sach-crawler/internal/fetcher"
	"github.com/thep200/sach-crawler/internal/maintenance"
)

var restorePrompt bool

var maintenanceCmd = &cobra.Command{
	Use:   "maintenance",
	Short: "Các tác vụ bảo trì dữ liệu đã import",
}

var backupCmd = &cobra.Command{
	Use:       "backup <table>",
	Short:     "Sao lưu một bảng ra file JSON",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"categories", "authors", "books", "chapters"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, a *app) error {
			m, err := newMaintainer(a)
			if err != nil {
				return err
			}
			_, err = m.Backup(ctx, args[0])
			return err
		})(cmd, args)
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <backup-file>",
	Short: "Phục hồi một bảng từ file backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(func(ctx context.Context, a *app) error {
			m, err := newMaintainer(a)
			if err != nil {
				return err
			}
			_, err = m.Restore(ctx, args[0])
			return err
		})(cmd, args)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Xóa các sách không có chương nào",
	RunE: run(func(ctx context.Context, a *app) error {
		m, err := newMaintainer(a)
		if err != nil {
			return err
		}
		_, err = m.Cleanup(ctx)
		return err
	}),
}

var excerptsCmd = &cobra.Command{
	Use:   "excerpts",
	Short: "Crawl lại excerpt của toàn bộ sách",
	RunE: run(func(ctx context.Context, a *app) error {
		m, err := newMaintainer(a)
		if err != nil {
			return err
		}
		result, err := m.RefreshExcerpts(ctx)
		if err != nil {
			return err
		}
		return offerRestore(ctx, m, result.BackupFile)
	}),
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Crawl lại ảnh bìa của toàn bộ sách",
	RunE: run(func(ctx context.Context, a *app) error {
		m, err := newMaintainer(a)
		if err != nil {
			return err
		}
		result, err := m.RefreshImages(ctx)
		if err != nil {
			return err
		}
		return offerRestore(ctx, m, result.BackupFile)
	}),
}

var checkImagesCmd = &cobra.Command{
	Use:   "check-images",
	Short: "Kiểm tra url ảnh bìa và ghi báo cáo",
	RunE: run(func(ctx context.Context, a *app) error {
		m, err := newMaintainer(a)
		if err != nil {
			return err
		}
		_, _, err = m.CheckImages(ctx)
		return err
	}),
}

func init() {
	maintenanceCmd.PersistentFlags().BoolVar(&restorePrompt, "restore-prompt", false, "hỏi có phục hồi từ file backup sau khi chạy xong không")
	maintenanceCmd.AddCommand(backupCmd, restoreCmd, cleanupCmd, excerptsCmd, imagesCmd, checkImagesCmd)
}

func newMaintainer(a *app) (*maintenance.Maintainer, error) {
	f, err := fetcher.NewFetcher(a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	return maintenance.NewMaintainer(a.Logger, a.Config, a.Database, f)
}

func offerRestore(ctx context.Context, m *maintenance.Maintainer, backupFile string) error {
	if !restorePrompt {
		return nil
	}
	_, err := m.PromptRestore(ctx, os.Stdin, os.Stdout, backupFile)
	return err
}
