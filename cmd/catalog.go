package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/bookcatalog/internal/catalog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCatalogCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import and export catalog contents",
	}
	cmd.AddCommand(newCatalogImportCmd(v))
	cmd.AddCommand(newCatalogExportCmd(v))
	return cmd
}

func newCatalogImportCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.parquet>",
		Short: "Add the books in a Parquet file to the catalog",
		Long: `Reads book rows (isbn, name, author, category) from a Parquet file and adds
them to the configured catalog. Rows with invalid fields and ISBNs that are
already cataloged are skipped.`,
		Example: `  BOOKCATALOG_CATALOG_DRIVER=sqlite BOOKCATALOG_CATALOG_DSN=catalog.db bookcatalog catalog import books.parquet`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			store, err := catalog.Open(cmd.Context(), cfg.Catalog.Driver, cfg.Catalog.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := catalog.ImportParquet(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "read %d, added %d, duplicates %d, invalid %d\n",
				stats.Read, stats.Added, stats.Duplicates, stats.Invalid)
			return nil
		},
	}
}

func newCatalogExportCmd(v *viper.Viper) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as YAML or Parquet",
		Example: `  # Print the catalog as YAML
  bookcatalog catalog export

  # Write a Parquet seed file
  bookcatalog catalog export --format parquet -o books.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			store, err := catalog.Open(cmd.Context(), cfg.Catalog.Driver, cfg.Catalog.DSN)
			if err != nil {
				return err
			}
			defer store.Close()

			switch strings.ToLower(format) {
			case "yaml", "yml":
				var w io.Writer = cmd.OutOrStdout()
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating %s: %w", output, err)
					}
					defer f.Close()
					w = f
				}
				return catalog.ExportYAML(cmd.Context(), store, w)
			case "parquet":
				if output == "" || output == "-" {
					return fmt.Errorf("--output is required for parquet exports")
				}
				books, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				return catalog.WriteParquet(output, books)
			default:
				return fmt.Errorf("unsupported export format: %s", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "Output format (yaml, parquet)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout for yaml)")

	return cmd
}
