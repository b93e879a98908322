// Package backup uploads point-in-time copies of the ledger database to
// S3. Backups are optional and env-gated; when disabled the service is
// simply never constructed.
package backup

import (
	"context"
	"fmt"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/config"
	"github.com/greenmangroup/wheelhouse/internal/database"
	"github.com/greenmangroup/wheelhouse/internal/events"
)

// Service backs up the ledger database to an S3 bucket.
type Service struct {
	log      zerolog.Logger
	cfg      *config.BackupConfig
	db       *database.DB
	bus      *events.Bus
	uploader *manager.Uploader
}

// New creates a backup service. It loads AWS credentials from the default
// chain (env, shared config, instance role).
func New(ctx context.Context, cfg *config.BackupConfig, db *database.DB, bus *events.Bus, log zerolog.Logger) (*Service, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)

	return &Service{
		log:      log.With().Str("service", "backup").Logger(),
		cfg:      cfg,
		db:       db,
		bus:      bus,
		uploader: manager.NewUploader(client),
	}, nil
}

// Backup checkpoints the WAL and uploads the database file. The uploaded
// copy is consistent because all writes go through the same connection
// pool and the checkpoint folds the WAL into the main file.
func (s *Service) Backup(ctx context.Context) error {
	start := time.Now()

	if err := s.db.WALCheckpoint("TRUNCATE"); err != nil {
		return fmt.Errorf("failed to checkpoint before backup: %w", err)
	}

	file, err := os.Open(s.db.Path())
	if err != nil {
		return fmt.Errorf("failed to open database file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	key := s.objectKey(start)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: &s.cfg.S3Bucket,
		Key:    &key,
		Body:   file,
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	elapsed := time.Since(start)
	s.log.Info().
		Str("bucket", s.cfg.S3Bucket).
		Str("key", key).
		Int64("size_bytes", info.Size()).
		Dur("duration", elapsed).
		Msg("Backup uploaded")

	if s.bus != nil {
		s.bus.EmitData("backup", &events.BackupCompletedData{
			Bucket:     s.cfg.S3Bucket,
			Key:        key,
			SizeBytes:  info.Size(),
			DurationMS: float64(elapsed.Milliseconds()),
		})
	}

	return nil
}

// objectKey builds a timestamped, uuid-suffixed key so concurrent or
// same-second runs never overwrite each other.
func (s *Service) objectKey(t time.Time) string {
	return fmt.Sprintf("%s/%s-%s-%s.db",
		s.cfg.S3Prefix,
		s.db.Name(),
		t.UTC().Format("20060102T150405"),
		uuid.New().String()[:8],
	)
}
