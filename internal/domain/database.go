package domain

import "context"

// Database opens connections to one configured database server.
// Connect returns a *ConnectionError when the server is unreachable or
// authentication fails.
type Database interface {
	Connect(ctx context.Context) (Conn, error)
	Name() string
	Type() string
}

// Conn is a live session against the database server. Backup issues a full
// backup instruction targeting targetDir and returns the artifact path; it
// returns a *BackupExecutionError if the instruction fails. Close must be
// called on every exit path, success or error, before the run moves on.
type Conn interface {
	Backup(ctx context.Context, targetDir string) (string, error)
	Close() error
}
