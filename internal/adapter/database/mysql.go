package database

import (
	"context"
	"database/sql"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

type MySQLDatabase struct {
	config *config.DatabaseConfig

	// openDB is swapped out in tests.
	openDB func(driverName, dsn string) (*sql.DB, error)
	now    func() time.Time
}

func NewMySQL(cfg *config.DatabaseConfig) *MySQLDatabase {
	return &MySQLDatabase{
		config: cfg,
		openDB: sql.Open,
		now:    time.Now,
	}
}

func (m *MySQLDatabase) Name() string {
	return m.config.Name
}

func (m *MySQLDatabase) Type() string {
	return "mysql"
}

func (m *MySQLDatabase) Connect(ctx context.Context) (domain.Conn, error) {
	db, err := m.openDB("mysql", mysqlDSN(m.config))
	if err != nil {
		return nil, &domain.ConnectionError{Addr: m.config.Addr(), Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Addr: m.config.Addr(), Err: err}
	}

	return &mysqlConn{db: db, config: m.config, now: m.now}, nil
}

func mysqlDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?timeout=10s",
		cfg.Username, cfg.Password, cfg.Addr(), cfg.Database)
}

type mysqlConn struct {
	db     *sql.DB
	config *config.DatabaseConfig
	now    func() time.Time
}

func (c *mysqlConn) Backup(ctx context.Context, targetDir string) (string, error) {
	artifact := filepath.Join(targetDir, artifactName(c.config.Database, c.now(), ".sql"))

	args := []string{
		fmt.Sprintf("--host=%s", c.config.Host),
		fmt.Sprintf("--port=%d", c.config.Port),
		fmt.Sprintf("--user=%s", c.config.Username),
		fmt.Sprintf("--password=%s", c.config.Password),
		"--single-transaction",
		"--quick",
		"--lock-tables=false",
		"--routines",
		"--triggers",
		"--events",
		fmt.Sprintf("--result-file=%s", artifact),
		c.config.Database,
	}

	cmd := exec.CommandContext(ctx, "mysqldump", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &domain.BackupExecutionError{
			Database: c.config.Database,
			Err:      fmt.Errorf("mysqldump failed: %w, output: %s", err, string(output)),
		}
	}

	return artifact, nil
}

func (c *mysqlConn) Close() error {
	return c.db.Close()
}
