package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/bookcatalog/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "bookcatalog",
		Short: "Book catalog portlet server",
		Long: `Bookcatalog serves a book catalog as a portlet: users list, search, add
and remove books and upload a table of contents for each book.

Configuration is read from bookcatalog.yaml in the working directory (or the
file given with --config) and BOOKCATALOG_<SECTION>_<OPTION> environment
variables, e.g. BOOKCATALOG_UPLOAD_MAX_BYTES=2097152.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := config.Init(v, cfgFile); err != nil {
				return err
			}
			setupLogging(v.GetString("log.level"), v.GetString("log.format"))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bookcatalog.yaml)")
	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = v.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	cmd.AddCommand(newServeCmd(v))
	cmd.AddCommand(newCatalogCmd(v))
	cmd.AddCommand(newConfigCmd(v))

	return cmd
}

func setupLogging(level, format string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", level)
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig decodes the configuration prepared by the root command.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	return config.Load(v)
}
