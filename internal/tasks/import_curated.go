package tasks

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/entities"
)

// CuratedImporter upserts curated quotes.
type CuratedImporter interface {
	UpsertCurated(ctx context.Context, items []entities.Quote) (created, updated int, err error)
}

// SettingsWriter records import bookkeeping.
type SettingsWriter interface {
	SetSetting(ctx context.Context, key, value string) error
}

// SeedSource opens the curated file used when a task names no path.
type SeedSource func() io.Reader

// ImportResult summarises one curated import.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportCurated parses a curated file and upserts its quotes. On success the
// time and size of the import are recorded when settings is not nil.
func ImportCurated(ctx context.Context, r io.Reader, importer CuratedImporter, settings SettingsWriter) (ImportResult, error) {
	items, err := quotes.LoadCurated(r)
	if err != nil {
		return ImportResult{}, err
	}

	created, updated, err := importer.UpsertCurated(ctx, items)
	if err != nil {
		return ImportResult{}, fmt.Errorf("upsert curated quotes: %w", err)
	}
	result := ImportResult{Created: created, Updated: updated}

	if settings != nil {
		if err := settings.SetSetting(ctx, entities.SettingKeyCuratedImportLastAt, time.Now().UTC().Format(time.RFC3339)); err != nil {
			log.Printf("[TASK] Failed to record curated import time: %v", err)
		}
		if err := settings.SetSetting(ctx, entities.SettingKeyCuratedImportLastCount, strconv.Itoa(created+updated)); err != nil {
			log.Printf("[TASK] Failed to record curated import count: %v", err)
		}
	}
	return result, nil
}

// ImportCuratedTask imports a curated quotes file. An empty Path imports the
// embedded seed.
type ImportCuratedTask struct {
	Path string `json:"path,omitempty"`
}

// Config returns the queue configuration for curated import tasks.
func (t ImportCuratedTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_curated",
		MaxAttempts: 2,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportCuratedProcessor creates a processor function for ImportCuratedTask.
func ImportCuratedProcessor(importer CuratedImporter, settings SettingsWriter, seed SeedSource) backlite.QueueProcessor[ImportCuratedTask] {
	return func(ctx context.Context, task ImportCuratedTask) error {
		if importer == nil {
			return fmt.Errorf("curated importer not configured")
		}

		var r io.Reader
		source := task.Path
		if source == "" {
			if seed == nil {
				return fmt.Errorf("no curated file given and no seed configured")
			}
			r = seed()
			source = "embedded seed"
		} else {
			f, err := os.Open(task.Path)
			if err != nil {
				return fmt.Errorf("open curated file: %w", err)
			}
			defer f.Close()
			r = f
		}

		result, err := ImportCurated(ctx, r, importer, settings)
		if err != nil {
			return fmt.Errorf("import curated from %s: %w", source, err)
		}

		log.Printf("[TASK] Imported curated quotes from %s: %d created, %d updated",
			source, result.Created, result.Updated)
		return nil
	}
}

// NewImportCuratedQueue creates a backlite queue for curated import tasks.
func NewImportCuratedQueue(importer CuratedImporter, settings SettingsWriter, seed SeedSource) backlite.Queue {
	return backlite.NewQueue(ImportCuratedProcessor(importer, settings, seed))
}
