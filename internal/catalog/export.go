package catalog

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/lehigh-university-libraries/bookcatalog/internal/models"
	"gopkg.in/yaml.v3"
)

// Export is the YAML document written by ExportYAML.
type Export struct {
	ExportedAt string        `yaml:"exported_at"`
	Count      int           `yaml:"count"`
	Books      []models.Book `yaml:"books"`
}

// ExportYAML writes the whole catalog to w.
func ExportYAML(ctx context.Context, store Store, w io.Writer) error {
	books, err := store.List(ctx)
	if err != nil {
		return err
	}

	doc := Export{
		ExportedAt: time.Now().Format(time.RFC3339),
		Count:      len(books),
		Books:      books,
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return nil
}
