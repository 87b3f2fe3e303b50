package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/custos-io/custos/internal/domain"
	"github.com/custos-io/custos/internal/infrastructure/metrics"
)

// Partitioner resolves the date-partitioned output directory for a run.
type Partitioner interface {
	Prepare(date time.Time) (string, error)
}

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Backup orchestrates one scheduled run: prepare directory, connect, back up,
// release the connection, notify. Every failure branch converges on the same
// failure notification; a run never terminates silently.
type Backup struct {
	databaseID  string
	db          domain.Database
	partitioner Partitioner
	notifiers   []domain.Notifier
	compressor  domain.Compressor
	logger      Logger
	compress    bool

	// mu is the single-flight guard: one firing, at most one attempt, and
	// never two runs at once.
	mu  sync.Mutex
	now func() time.Time
}

func NewBackup(
	databaseID string,
	db domain.Database,
	partitioner Partitioner,
	notifiers []domain.Notifier,
	compressor domain.Compressor,
	logger Logger,
	compress bool,
) *Backup {
	return &Backup{
		databaseID:  databaseID,
		db:          db,
		partitioner: partitioner,
		notifiers:   notifiers,
		compressor:  compressor,
		logger:      logger,
		compress:    compress,
		now:         time.Now,
	}
}

// Execute performs one backup run. Job-fatal errors are returned for the
// caller's log but have already been reported through the notifiers; they
// must never crash the scheduler loop.
func (uc *Backup) Execute(ctx context.Context) error {
	if !uc.mu.TryLock() {
		uc.logger.Warnf("[%s] Backup run already in progress, skipping trigger", uc.databaseID)
		return nil
	}
	defer uc.mu.Unlock()

	run := &domain.Run{TriggeredAt: uc.now()}

	uc.perform(ctx, run)
	uc.notify(ctx, run)
	uc.observe(run)

	return run.Err
}

func (uc *Backup) perform(ctx context.Context, run *domain.Run) {
	uc.logger.Infof("[%s] Starting backup run", uc.databaseID)

	dir, err := uc.partitioner.Prepare(run.TriggeredAt)
	if err != nil {
		run.Err = fmt.Errorf("prepare output directory: %w", err)
		return
	}
	run.OutputDir = dir
	uc.logger.Infof("[%s] Output directory ready: %s", uc.databaseID, dir)

	conn, err := uc.db.Connect(ctx)
	if err != nil {
		run.Err = fmt.Errorf("connect: %w", err)
		return
	}
	uc.logger.Infof("[%s] Connected to %s server", uc.databaseID, uc.db.Type())

	artifact, backupErr := conn.Backup(ctx, dir)

	// The connection is released on every exit path before the run moves on
	// to notification.
	if closeErr := conn.Close(); closeErr != nil {
		uc.logger.Warnf("[%s] Failed to release connection: %v", uc.databaseID, closeErr)
	} else {
		uc.logger.Infof("[%s] Connection released", uc.databaseID)
	}

	if backupErr != nil {
		run.Err = fmt.Errorf("backup: %w", backupErr)
		return
	}
	run.ArtifactPath = artifact
	uc.logger.Infof("[%s] Backup completed: %s", uc.databaseID, artifact)

	if uc.compress {
		run.ArtifactPath = uc.compressArtifact(artifact)
	}
}

// compressArtifact gzips the finished artifact next to itself. Compression
// failure is not a run failure: the uncompressed artifact already exists.
func (uc *Backup) compressArtifact(artifact string) string {
	compressed := artifact + ".gz"

	if err := uc.compressor.Compress(artifact, compressed); err != nil {
		uc.logger.Warnf("[%s] Compression failed, keeping raw artifact: %v", uc.databaseID, err)
		return artifact
	}
	if err := os.Remove(artifact); err != nil {
		uc.logger.Warnf("[%s] Failed to remove raw artifact after compression: %v", uc.databaseID, err)
	}

	uc.logger.Infof("[%s] Artifact compressed: %s", uc.databaseID, compressed)
	return compressed
}

// notify reports the run outcome through every configured channel, exactly
// once per run. Transport failures are logged and swallowed: a failed
// failure-notification must not take the process down.
func (uc *Backup) notify(ctx context.Context, run *domain.Run) {
	var subject, body string
	if run.Succeeded() {
		subject = fmt.Sprintf("Backup Success: %s", uc.databaseID)
		body = fmt.Sprintf("Backup of database %s completed successfully. Backup file: %s",
			uc.databaseID, run.ArtifactPath)
	} else {
		subject = fmt.Sprintf("Backup Failed: %s", uc.databaseID)
		body = fmt.Sprintf("An error occurred during the backup of database %s. Error: %v",
			uc.databaseID, run.Err)
	}

	for _, n := range uc.notifiers {
		if err := n.Send(ctx, subject, body); err != nil {
			uc.logger.Errorf("[%s] Failed to send notification via %s: %v", uc.databaseID, n.Channel(), err)
			metrics.NotifyFailures.WithLabelValues(n.Channel()).Inc()
			continue
		}
		uc.logger.Infof("[%s] Notification sent via %s", uc.databaseID, n.Channel())
	}
}

func (uc *Backup) observe(run *domain.Run) {
	elapsed := uc.now().Sub(run.TriggeredAt)

	status := "success"
	if !run.Succeeded() {
		status = "failure"
		uc.logger.Errorf("[%s] Backup run failed after %s: %v",
			uc.databaseID, elapsed.Round(time.Second), run.Err)
	} else {
		uc.logger.Infof("[%s] Backup run finished in %s",
			uc.databaseID, elapsed.Round(time.Second))
		metrics.LastSuccessTimestamp.WithLabelValues(uc.databaseID).SetToCurrentTime()
	}

	metrics.RunCount.WithLabelValues(uc.databaseID, status).Inc()
	metrics.RunDuration.WithLabelValues(uc.databaseID).Observe(elapsed.Seconds())
}
