package database

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/rpupo63/blog-admin-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db         *gorm.DB
	postRepo   *PostRepo
	tagRepo    *TagRepo
	transactor *Transactor
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:         db,
		postRepo:   NewPostRepo(db),
		tagRepo:    NewTagRepo(db),
		transactor: NewTransactor(db),
	}
}

// Accessor methods for each repository

func (d Database) PostRepo() *PostRepo {
	return d.postRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) Transactor() *Transactor {
	return d.transactor
}

// Ping checks that the underlying connection pool can reach the database.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Options configures Open.
type Options struct {
	DSN          string
	ReplicaDSNs  []string
	AutoMigrate  bool
	// ColumnReport logs the column mismatch report against the primary
	ColumnReport bool
	SlowQuery    time.Duration
}

// NewLogger builds the gorm logger used for every connection.
func NewLogger(slowQuery time.Duration) logger.Interface {
	return logger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		logger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// Open connects to postgres, prepares the schema and registers read replicas.
func Open(opts Options) (*gorm.DB, error) {
	if opts.DSN == "" {
		return nil, fmt.Errorf("database DSN is empty")
	}
	if opts.SlowQuery == 0 {
		opts.SlowQuery = 10 * time.Second
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  opts.DSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         NewLogger(opts.SlowQuery),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	replicas := make([]gorm.Dialector, 0, len(opts.ReplicaDSNs))
	for _, dsn := range opts.ReplicaDSNs {
		replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
	}

	if err := setup(db, opts, replicas); err != nil {
		return nil, err
	}

	return db, nil
}

// setup prepares the schema and only then registers the replicas, so the
// migrator never inspects a replica.
func setup(db *gorm.DB, opts Options, replicas []gorm.Dialector) error {
	if err := Prepare(db, opts.AutoMigrate); err != nil {
		return err
	}

	if opts.ColumnReport {
		if err := models.LogColumnMismatchReport(db); err != nil {
			return fmt.Errorf("column mismatch report: %w", err)
		}
	}

	if len(replicas) == 0 {
		return nil
	}
	if err := db.Use(dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	})); err != nil {
		return fmt.Errorf("register read replicas: %w", err)
	}
	return nil
}

// Prepare verifies the connection, registers the join table and optionally
// migrates the schema.
func Prepare(db *gorm.DB, autoMigrate bool) error {
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return fmt.Errorf("test database connection: %w", err)
	}

	if autoMigrate {
		return models.Migrate(db)
	}
	return models.SetupJoinTables(db)
}
