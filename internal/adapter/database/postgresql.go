package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"

	"github.com/custos-io/custos/internal/config"
	"github.com/custos-io/custos/internal/domain"
)

type PostgreSQLDatabase struct {
	config *config.DatabaseConfig

	openDB func(driverName, dsn string) (*sql.DB, error)
	now    func() time.Time
}

func NewPostgreSQL(cfg *config.DatabaseConfig) *PostgreSQLDatabase {
	return &PostgreSQLDatabase{
		config: cfg,
		openDB: sql.Open,
		now:    time.Now,
	}
}

func (p *PostgreSQLDatabase) Name() string {
	return p.config.Name
}

func (p *PostgreSQLDatabase) Type() string {
	return "postgresql"
}

func (p *PostgreSQLDatabase) Connect(ctx context.Context) (domain.Conn, error) {
	db, err := p.openDB("postgres", postgresDSN(p.config))
	if err != nil {
		return nil, &domain.ConnectionError{Addr: p.config.Addr(), Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.ConnectionError{Addr: p.config.Addr(), Err: err}
	}

	return &postgresConn{db: db, config: p.config, now: p.now}, nil
}

func postgresDSN(cfg *config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=10",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database, sslMode)
}

type postgresConn struct {
	db     *sql.DB
	config *config.DatabaseConfig
	now    func() time.Time
}

func (c *postgresConn) Backup(ctx context.Context, targetDir string) (string, error) {
	artifact := filepath.Join(targetDir, artifactName(c.config.Database, c.now(), ".dump"))

	cmd := exec.CommandContext(ctx, "pg_dump",
		fmt.Sprintf("--host=%s", c.config.Host),
		fmt.Sprintf("--port=%d", c.config.Port),
		fmt.Sprintf("--username=%s", c.config.Username),
		"--format=custom",
		fmt.Sprintf("--file=%s", artifact),
		c.config.Database,
	)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PGPASSWORD=%s", c.config.Password))

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &domain.BackupExecutionError{
			Database: c.config.Database,
			Err:      fmt.Errorf("pg_dump failed: %w, output: %s", err, string(output)),
		}
	}

	return artifact, nil
}

func (c *postgresConn) Close() error {
	return c.db.Close()
}
