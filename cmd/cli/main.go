package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/finsight/internal/investigation"
	"github.com/myrjola/finsight/internal/logging"
	"github.com/myrjola/finsight/internal/sqlite"
	"github.com/spf13/cobra"
)

func init() {
	// Missing .env is fine, the commands fall back to flags and defaults.
	_ = godotenv.Load()
	linkCmd.AddCommand(linkEncodeCmd, linkDecodeCmd)
	rootCmd.AddCommand(linkCmd, seedCmd)

	linkEncodeCmd.Flags().StringVar(&encodeKind, "kind", "monthly", "investigation kind")
	linkEncodeCmd.Flags().StringVar(&encodeCategory, "category", "", "category scope")
	linkEncodeCmd.Flags().StringVar(&encodeMonth, "month", "", "month scope (YYYY-MM)")
	linkEncodeCmd.Flags().IntVar(&encodeYear, "year", 0, "year scope")
	linkEncodeCmd.Flags().StringVar(&encodeFrom, "from", "", "date range start (YYYY-MM-DD)")
	linkEncodeCmd.Flags().StringVar(&encodeTo, "to", "", "date range end (YYYY-MM-DD)")
	linkEncodeCmd.Flags().StringVar(&encodeID, "id", "", "investigation ID to restore")

	seedCmd.Flags().StringVar(&seedSqliteURL, "sqlite-url", defaultSqliteURL(), "SQLite database URL")
}

var rootCmd = &cobra.Command{
	Use:  "finsight-cli",
	Long: `Command line utilities for Finsight https://github.com/myrjola/finsight`,
}

var linkCmd = &cobra.Command{
	Use:   "link",
	Short: "Work with shareable investigation links",
}

var (
	encodeKind     string
	encodeCategory string
	encodeMonth    string
	encodeYear     int
	encodeFrom     string
	encodeTo       string
	encodeID       string
)

var linkEncodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a shareable investigation link from scope flags",
	RunE: func(cmd *cobra.Command, _ []string) error {
		kind := investigation.Kind(encodeKind)
		if !kind.Valid() {
			return fmt.Errorf("unknown kind %q", encodeKind)
		}
		c := investigation.Context{
			ID:   encodeID,
			Kind: kind,
			Scope: investigation.Scope{
				Category: encodeCategory,
				Month:    encodeMonth,
				Year:     encodeYear,
			},
		}
		if encodeFrom != "" || encodeTo != "" {
			c.Scope.DateRange = &investigation.DateRange{From: encodeFrom, To: encodeTo}
		}
		cmd.Println(investigation.EncodeLocation(c))
		return nil
	},
}

var linkDecodeCmd = &cobra.Command{
	Use:   "decode <location>",
	Short: "Print the start configuration a link decodes to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := investigation.DecodeLocation(args[0])
		if cfg == nil {
			return fmt.Errorf("%q is not an investigation link", args[0])
		}
		cmd.Printf("kind:     %s\n", cfg.Kind)
		if cfg.ID != "" {
			cmd.Printf("id:       %s\n", cfg.ID)
		}
		if cfg.Scope.Category != "" {
			cmd.Printf("category: %s\n", cfg.Scope.Category)
		}
		if cfg.Scope.Month != "" {
			cmd.Printf("month:    %s\n", cfg.Scope.Month)
		}
		if cfg.Scope.Year != 0 {
			cmd.Printf("year:     %d\n", cfg.Scope.Year)
		}
		if cfg.Scope.DateRange != nil {
			cmd.Printf("range:    %s..%s\n", cfg.Scope.DateRange.From, cfg.Scope.DateRange.To)
		}
		return nil
	},
}

var seedSqliteURL string

func defaultSqliteURL() string {
	if url := os.Getenv("FINSIGHT_SQLITE_URL"); url != "" {
		return url
	}
	return "./finsight.sqlite"
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Initialize the database schema and load example data",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := slog.New(logging.NewContextHandler(
			slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelInfo})))
		db, err := sqlite.NewDatabase(cmd.Context(), seedSqliteURL, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = db.ReadWrite.Close()
			_ = db.ReadOnly.Close()
		}()
		if err := db.Seed(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("database seeded")
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
