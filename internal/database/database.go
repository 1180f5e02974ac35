package database

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/quna/internal/database/quotes"
	"github.com/mrlokans/quna/internal/entities"
)

//go:embed seed/curated.json
var defaultCuratedSeed []byte

// CuratedSeed returns the embedded curated content file.
func CuratedSeed() io.Reader {
	return bytes.NewReader(defaultCuratedSeed)
}

type Database struct {
	DB *gorm.DB
}

// Options tweak database initialisation.
type Options struct {
	// LogLevel for gorm. Zero value means logger.Info.
	LogLevel logger.LogLevel
	// SkipSeed disables seeding of the embedded curated content.
	SkipSeed bool
}

func NewDatabase(dbPath string) (*Database, error) {
	return NewDatabaseWithOptions(dbPath, Options{})
}

func NewDatabaseWithOptions(dbPath string, opts Options) (*Database, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.Quote{},
		&entities.Favourite{},
		&entities.Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if !opts.SkipSeed {
		if err := database.seedCurated(); err != nil {
			return nil, fmt.Errorf("failed to seed curated quotes: %w", err)
		}
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// seedCurated loads the embedded curated set into an empty database.
func (d *Database) seedCurated() error {
	var count int64
	if err := d.DB.Model(&entities.Quote{}).Where("origin = ?", entities.OriginCurated).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items, err := quotes.LoadCurated(CuratedSeed())
	if err != nil {
		return err
	}

	repo := quotes.NewRepository(d.DB, nil)
	created, _, err := repo.UpsertCurated(context.Background(), items)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d curated quotes", created)
	return nil
}
