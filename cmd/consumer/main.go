package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thep200/sach-crawler/cfg"
	"github.com/thep200/sach-crawler/internal/importer"
	"github.com/thep200/sach-crawler/internal/model"
	"github.com/thep200/sach-crawler/internal/snapshot"
	"github.com/thep200/sach-crawler/pkg/db"
	"github.com/thep200/sach-crawler/pkg/kafka"
	"github.com/thep200/sach-crawler/pkg/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	consumerType := flag.String("type", "", "Loại consumer cần chạy (snapshot)")
	flag.Parse()

	if *consumerType != "snapshot" {
		fmt.Println("Please specify a consumer type: -type=snapshot")
		os.Exit(1)
	}

	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	database, err := db.NewDatabase(config)
	if err != nil {
		logger.Error(context.Background(), "Failed to create database: %v", err)
		os.Exit(1)
	}
	defer database.Close()
	if err := database.Migrate(model.All(config, logger, database)...); err != nil {
		logger.Error(context.Background(), "Failed to migrate database: %v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := runSnapshotConsumer(ctx, config, logger, database); err != nil {
		logger.Error(ctx, "Snapshot consumer error: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Snapshot consumer đã dừng")
}

func runSnapshotConsumer(ctx context.Context, config *cfg.Config, logger log.Logger, database *db.Database) error {
	store, _ := snapshot.NewStore(config, logger)
	im, err := importer.NewImporter(logger, config, database, store)
	if err != nil {
		return err
	}

	consumer, err := kafka.NewConsumer(config, logger)
	if err != nil {
		return err
	}
	registerSnapshotHandlers(consumer, im, logger)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return consumer.Start(gctx)
	})
	group.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Received shutdown signal, gracefully shutting down...")
		return consumer.Close()
	})
	logger.Info(ctx, "Snapshot consumer started successfully")
	return group.Wait()
}

// registerSnapshotHandlers nối mỗi loại snapshot với bước import tương ứng
func registerSnapshotHandlers(consumer *kafka.Consumer, im *importer.Importer, logger log.Logger) {
	consumer.RegisterHandler(kafka.KeyCategories, func(ctx context.Context, value []byte) error {
		if _, err := kafka.DecodeSnapshotEvent(value); err != nil {
			return err
		}
		_, err := im.ImportCategories(ctx)
		return err
	})

	consumer.RegisterHandler(kafka.KeyBooks, func(ctx context.Context, value []byte) error {
		ev, err := kafka.DecodeSnapshotEvent(value)
		if err != nil {
			return err
		}
		_, err = im.ImportBookFile(ctx, ev.Path)
		return err
	})

	consumer.RegisterHandler(kafka.KeyChapter, func(ctx context.Context, value []byte) error {
		ev, err := kafka.DecodeSnapshotEvent(value)
		if err != nil {
			return err
		}
		if ev.BookDir == "" || ev.FileName == "" {
			return fmt.Errorf("chapter event %s has no book dir or file name", ev.ID)
		}
		outcome, err := im.ImportChapterFile(ctx, ev.BookDir, ev.FileName)
		if err != nil {
			return err
		}
		logger.Info(ctx, "Chương %s/%s: %s", ev.BookDir, ev.FileName, outcome)
		return nil
	})

	// Chi tiết sách không có bảng riêng, chỉ ghi log
	consumer.RegisterHandler(kafka.KeyBook, func(ctx context.Context, value []byte) error {
		ev, err := kafka.DecodeSnapshotEvent(value)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "Bỏ qua snapshot chi tiết sách: %s", ev.Path)
		return nil
	})
}
