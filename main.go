package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-admin-backend/api"
	"github.com/rpupo63/blog-admin-backend/config"
	"github.com/rpupo63/blog-admin-backend/database"
	"github.com/rpupo63/blog-admin-backend/events"
	"github.com/rpupo63/blog-admin-backend/services"
	"github.com/rpupo63/blog-admin-backend/storage"
)

func main() {
	log.Info().Msg("Initializing app...")

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
		cfg = config.New()
	}

	if path := config.GetString(cfg, "SSM_PARAMETER_PATH", ""); path != "" {
		if err := loadSSM(cfg, path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Error loading SSM parameters")
		}
	}

	db, err := database.Open(database.Options{
		DSN:          config.GetString(cfg, "DATABASE_URL", ""),
		ReplicaDSNs:  config.GetList(cfg, "DATABASE_REPLICA_URLS"),
		AutoMigrate:  config.GetBool(cfg, "DB_AUTO_MIGRATE", false),
		ColumnReport: config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	currentDB := database.New(db)
	defer currentDB.Close()

	// The report was logged by Open; exit without serving
	if config.GetBool(cfg, "GENERATE_COLUMN_REPORT", false) {
		return
	}

	blobs, err := newStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing blob storage")
	}

	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to RabbitMQ")
	}
	defer closePublisher()

	postService := services.NewPostService(
		currentDB.PostRepo(),
		currentDB.TagRepo(),
		blobs,
		currentDB.Transactor(),
		publisher,
	)

	server, err := api.NewServer(cfg, api.Dependencies{
		DB:      currentDB,
		Posts:   postService,
		Storage: blobs,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func loadSSM(cfg map[string]string, path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := config.NewSSMClient(ctx, config.GetString(cfg, "AWS_REGION", ""))
	if err != nil {
		return err
	}
	n, err := config.LoadSSM(ctx, client, path, cfg)
	if err != nil {
		return err
	}
	log.Info().Int("parameters", n).Str("path", path).Msg("Loaded SSM parameters")
	return nil
}

// newStorage picks the blob store driver named by STORAGE_DRIVER
func newStorage(cfg map[string]string) (storage.Storage, error) {
	switch driver := config.GetString(cfg, "STORAGE_DRIVER", "local"); driver {
	case "s3":
		bucket := config.GetString(cfg, "S3_BUCKET", "")
		if bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		client, err := storage.NewS3Client(ctx, config.GetString(cfg, "AWS_REGION", ""), config.GetString(cfg, "S3_ENDPOINT", ""))
		if err != nil {
			return nil, err
		}
		log.Info().Str("bucket", bucket).Msg("Using S3 blob storage")
		return storage.NewS3Storage(client, bucket), nil
	case "local":
		dir := config.GetString(cfg, "LOCAL_STORAGE_DIR", "./storage-data")
		log.Info().Str("dir", dir).Msg("Using local blob storage")
		return storage.NewLocalStorage(dir)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", driver)
	}
}

// newPublisher connects to RabbitMQ when RABBITMQ_URL is set
func newPublisher(cfg map[string]string) (events.Publisher, func(), error) {
	url := config.GetString(cfg, "RABBITMQ_URL", "")
	if url == "" {
		log.Info().Msg("RABBITMQ_URL not set, post events are not published")
		return events.NoopPublisher{}, func() {}, nil
	}

	publisher, err := events.NewRabbitMQPublisher(url)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			log.Warn().Err(err).Msg("Error closing RabbitMQ publisher")
		}
	}, nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
