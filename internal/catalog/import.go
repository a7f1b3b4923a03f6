package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"github.com/parquet-go/parquet-go"
)

// ImportStats summarizes a seed import.
type ImportStats struct {
	Read       int
	Added      int
	Duplicates int
	Invalid    int
}

// LoadParquet reads every book row from a Parquet file.
func LoadParquet(path string) ([]models.Book, error) {
	slog.Debug("Opening Parquet file", "path", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[models.Book](pf)
	defer reader.Close()

	var books []models.Book
	rows := make([]models.Book, 128)
	for {
		n, err := reader.Read(rows)
		books = append(books, rows[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet rows: %w", err)
		}
	}

	slog.Debug("Finished reading Parquet file", "total_records", len(books))
	return books, nil
}

// ImportParquet seeds store from a Parquet file. Invalid rows and ISBNs that
// are already cataloged are skipped.
func ImportParquet(ctx context.Context, store Store, path string) (ImportStats, error) {
	books, err := LoadParquet(path)
	if err != nil {
		return ImportStats{}, err
	}

	stats := ImportStats{Read: len(books)}
	for _, b := range books {
		b.ISBN = NormalizeISBN(b.ISBN)
		if errs := Validate(b); len(errs) > 0 {
			slog.Warn("Skipping invalid catalog row", "isbn", b.ISBN, "errors", errs)
			stats.Invalid++
			continue
		}
		err := store.Add(ctx, b)
		switch {
		case errors.Is(err, ErrDuplicate):
			stats.Duplicates++
		case err != nil:
			return stats, err
		default:
			stats.Added++
		}
	}

	slog.Info("Imported catalog seed", "path", path, "read", stats.Read, "added", stats.Added, "duplicates", stats.Duplicates, "invalid", stats.Invalid)
	return stats, nil
}

// WriteParquet writes books to a Parquet file, e.g. to produce a seed.
func WriteParquet(path string, books []models.Book) error {
	if err := parquet.WriteFile(path, books); err != nil {
		return fmt.Errorf("failed to write parquet: %w", err)
	}
	return nil
}
