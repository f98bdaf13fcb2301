package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/thep200/sach-crawler/internal/importer"
	"github.com/thep200/sach-crawler/internal/snapshot"
)

var (
	specificFile    string
	specificBookDir string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Đưa dữ liệu JSON đã crawl vào database",
}

var importCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Import all_categories.json vào bảng categories",
	RunE: run(func(ctx context.Context, a *app) error {
		im, err := newImporter(a)
		if err != nil {
			return err
		}
		_, err = im.ImportCategories(ctx)
		return err
	}),
}

var importBooksCmd = &cobra.Command{
	Use:   "books",
	Short: "Import các file sách theo thể loại vào bảng books",
	RunE: run(func(ctx context.Context, a *app) error {
		if specificFile != "" {
			a.Config.Importer.SpecificFile = specificFile
		}
		im, err := newImporter(a)
		if err != nil {
			return err
		}
		_, err = im.ImportBooks(ctx)
		return err
	}),
}

var importChaptersCmd = &cobra.Command{
	Use:   "chapters",
	Short: "Import các thư mục chương vào bảng chapters",
	RunE: run(func(ctx context.Context, a *app) error {
		if specificBookDir != "" {
			a.Config.Importer.SpecificBookDir = specificBookDir
		}
		im, err := newImporter(a)
		if err != nil {
			return err
		}
		_, err = im.ImportChapters(ctx)
		return err
	}),
}

func init() {
	importBooksCmd.Flags().StringVar(&specificFile, "file", "", "chỉ import một file sách trong thư mục categories")
	importChaptersCmd.Flags().StringVar(&specificBookDir, "book-dir", "", "chỉ import một thư mục sách trong thư mục book_content")
	importCmd.AddCommand(importCategoriesCmd, importBooksCmd, importChaptersCmd)
}

func newImporter(a *app) (*importer.Importer, error) {
	store, _ := snapshot.NewStore(a.Config, a.Logger)
	return importer.NewImporter(a.Logger, a.Config, a.Database, store)
}
