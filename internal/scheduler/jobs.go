package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/greenmangroup/wheelhouse/internal/database"
)

// WALCheckpointJob truncates the WAL of each database so the log never
// grows unbounded on a long-lived single process.
type WALCheckpointJob struct {
	log       zerolog.Logger
	databases []*database.DB
}

// NewWALCheckpointJob creates a new WALCheckpointJob
func NewWALCheckpointJob(log zerolog.Logger, databases ...*database.DB) *WALCheckpointJob {
	return &WALCheckpointJob{
		log:       log.With().Str("job", "wal_checkpoint").Logger(),
		databases: databases,
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the WAL checkpoint job
func (j *WALCheckpointJob) Run() error {
	var firstErr error
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("checkpoint %s: %w", db.Name(), err)
			}
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("WAL checkpointed")
	}
	return firstErr
}

// IntegrityCheckJob runs a quick integrity check against each database.
// Corruption is logged loudly; the job itself never repairs anything.
type IntegrityCheckJob struct {
	log       zerolog.Logger
	timeout   time.Duration
	databases []*database.DB
}

// NewIntegrityCheckJob creates a new IntegrityCheckJob
func NewIntegrityCheckJob(log zerolog.Logger, databases ...*database.DB) *IntegrityCheckJob {
	return &IntegrityCheckJob{
		log:       log.With().Str("job", "integrity_check").Logger(),
		timeout:   30 * time.Second,
		databases: databases,
	}
}

// Name returns the job name
func (j *IntegrityCheckJob) Name() string {
	return "integrity_check"
}

// Run executes the integrity check job
func (j *IntegrityCheckJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	var firstErr error
	for _, db := range j.databases {
		if db == nil {
			continue
		}
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("integrity check %s: %w", db.Name(), err)
			}
			continue
		}
		j.log.Debug().Str("database", db.Name()).Msg("Integrity check passed")
	}
	return firstErr
}

// BackupJob adapts a backup runner into a scheduled job.
type BackupJob struct {
	log    zerolog.Logger
	runner BackupRunner
}

// BackupRunner uploads a backup of the ledger database.
type BackupRunner interface {
	Backup(ctx context.Context) error
}

// NewBackupJob creates a new BackupJob
func NewBackupJob(log zerolog.Logger, runner BackupRunner) *BackupJob {
	return &BackupJob{
		log:    log.With().Str("job", "backup").Logger(),
		runner: runner,
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return j.runner.Backup(ctx)
}
