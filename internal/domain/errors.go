package domain

import "fmt"

// FilesystemError marks a failure to prepare the backup directory tree.
// Fatal to the current run.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error at %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ConnectionError marks a failure to reach or authenticate to the database
// server. Fatal to the current run.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// BackupExecutionError marks a failure of the backup instruction itself
// (disk full, permission denied, database offline). Fatal to the current run.
type BackupExecutionError struct {
	Database string
	Err      error
}

func (e *BackupExecutionError) Error() string {
	return fmt.Sprintf("backup of %s failed: %v", e.Database, e.Err)
}

func (e *BackupExecutionError) Unwrap() error { return e.Err }

// TransportError marks a notification delivery failure. It is logged and
// discarded by the job, never re-raised.
type TransportError struct {
	Channel string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("notification via %s failed: %v", e.Channel, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
