package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/quna/internal/config"
	"github.com/mrlokans/quna/internal/database"
	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/database/settings"
	"github.com/mrlokans/quna/internal/entities"
	"github.com/mrlokans/quna/internal/tasks"
)

// ImportCuratedCommand loads a curated quotes file into the database
type ImportCuratedCommand struct {
	FilePath     string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

func NewImportCuratedCommand() *ImportCuratedCommand {
	return &ImportCuratedCommand{}
}

func (cmd *ImportCuratedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-curated", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to a curated quotes JSON file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every parsed quote")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Parse and validate the file without writing")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-curated -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Upsert curated quotes from a JSON array of records:\n")
		fmt.Fprintf(os.Stderr, "  [{\"id\": \"...\", \"category\": \"Stoic\", \"author\": \"...\", \"content_en\": \"...\", \"content_pl\": \"...\"}]\n\n")
		fmt.Fprintf(os.Stderr, "Records without an id get a stable id derived from their content,\n")
		fmt.Fprintf(os.Stderr, "so importing the same file twice updates instead of duplicating.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportCuratedCommand) Run() error {
	fmt.Println("Curated Import")
	fmt.Println("==============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open curated file: %w", err)
	}
	defer file.Close()

	fmt.Printf("File: %s\n", cmd.FilePath)

	if cmd.DryRun || cmd.Verbose {
		items, err := quotes.LoadCurated(file)
		if err != nil {
			return err
		}
		fmt.Printf("Found %d curated quotes\n", len(items))
		if cmd.Verbose {
			printCurated(items)
		}
		if cmd.DryRun {
			fmt.Println("\nDry run complete. Use without -dry-run to import.")
			return nil
		}
		if _, err := file.Seek(0, 0); err != nil {
			return fmt.Errorf("failed to rewind curated file: %w", err)
		}
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}
	cmd.DatabasePath = absDBPath

	fmt.Printf("\nSaving to database: %s\n", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	result, err := tasks.ImportCurated(context.Background(), file,
		quotes.NewRepository(db.DB, nil), settings.NewRepository(db.DB))
	if err != nil {
		return err
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Created: %d\n", result.Created)
	fmt.Printf("Updated: %d\n", result.Updated)
	fmt.Println("\nImport complete!")
	return nil
}

func printCurated(items []entities.Quote) {
	fmt.Println("\n=== Quotes Found ===")
	for i, q := range items {
		text := q.ContentEN
		if text == "" {
			text = q.ContentPL
		}
		if len([]rune(text)) > 60 {
			text = string([]rune(text)[:60]) + "..."
		}
		fmt.Printf("%d. [%s/%s] %s\n", i+1, q.Category, q.Language, text)
	}
}
