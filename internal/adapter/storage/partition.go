package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custos-io/custos/internal/domain"
)

// PartitionedStore lays backup artifacts out under a date-partitioned
// hierarchy: baseDir/YYYY/MM/DD.
type PartitionedStore struct {
	baseDir string
}

func NewPartitioned(baseDir string) (*PartitionedStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, &domain.FilesystemError{Path: baseDir, Err: err}
	}
	return &PartitionedStore{baseDir: baseDir}, nil
}

// Prepare resolves the output directory for the given date, creating any
// missing segments. It is idempotent: calling it twice for the same date
// returns the same path without error.
func (p *PartitionedStore) Prepare(date time.Time) (string, error) {
	dir := filepath.Join(
		p.baseDir,
		fmt.Sprintf("%04d", date.Year()),
		fmt.Sprintf("%02d", int(date.Month())),
		fmt.Sprintf("%02d", date.Day()),
	)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &domain.FilesystemError{Path: dir, Err: err}
	}

	return dir, nil
}

// BaseDir returns the root of the partitioned hierarchy.
func (p *PartitionedStore) BaseDir() string {
	return p.baseDir
}
