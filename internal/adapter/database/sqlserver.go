package database

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

// SQLServerDatabase drives backups through sqlcmd. The server writes the
// artifact itself via BACKUP DATABASE ... TO DISK, so the target directory
// must be reachable by the server process.
type SQLServerDatabase struct {
	config *config.DatabaseConfig

	runCmd func(ctx context.Context, name string, args ...string) ([]byte, error)
	now    func() time.Time
}

func NewSQLServer(cfg *config.DatabaseConfig) *SQLServerDatabase {
	return &SQLServerDatabase{
		config: cfg,
		runCmd: runCombined,
		now:    time.Now,
	}
}

func runCombined(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

func (s *SQLServerDatabase) Name() string {
	return s.config.Name
}

func (s *SQLServerDatabase) Type() string {
	return "sqlserver"
}

func (s *SQLServerDatabase) Connect(ctx context.Context) (domain.Conn, error) {
	output, err := s.runCmd(ctx, "sqlcmd", s.connArgs("SELECT 1")...)
	if err != nil {
		return nil, &domain.ConnectionError{
			Addr: s.config.Addr(),
			Err:  fmt.Errorf("sqlcmd probe failed: %w, output: %s", err, string(output)),
		}
	}

	return &sqlserverConn{parent: s}, nil
}

func (s *SQLServerDatabase) connArgs(query string) []string {
	return []string{
		"-S", fmt.Sprintf("%s,%d", s.config.Host, s.config.Port),
		"-U", s.config.Username,
		"-P", s.config.Password,
		"-C",
		"-b",
		"-Q", query,
	}
}

type sqlserverConn struct {
	parent *SQLServerDatabase
}

func (c *sqlserverConn) Backup(ctx context.Context, targetDir string) (string, error) {
	s := c.parent
	artifact := filepath.Join(targetDir, artifactName(s.config.Database, s.now(), ".bak"))

	output, err := s.runCmd(ctx, "sqlcmd", s.connArgs(backupStatement(s.config.Database, artifact))...)
	if err != nil {
		return "", &domain.BackupExecutionError{
			Database: s.config.Database,
			Err:      fmt.Errorf("backup statement failed: %w, output: %s", err, string(output)),
		}
	}

	return artifact, nil
}

// Close is a no-op: sqlcmd holds no session between invocations.
func (c *sqlserverConn) Close() error {
	return nil
}

func backupStatement(database, artifactPath string) string {
	return fmt.Sprintf(
		"BACKUP DATABASE [%s] TO DISK = N'%s' WITH NOFORMAT, NOINIT, NAME = N'%s-Full Database Backup', SKIP, NOREWIND, NOUNLOAD, STATS = 10",
		database, artifactPath, database,
	)
}
