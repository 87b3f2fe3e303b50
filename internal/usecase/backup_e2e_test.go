package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/custos-io/custos/internal/adapter/storage"
	"github.com/custos-io/custos/internal/domain"
)

// writingConn plays a backup executor that actually writes an artifact file
// into the directory it is handed, like the real executors would.
type writingConn struct {
	journal *journal
	fail    error
}

func (c *writingConn) Backup(ctx context.Context, targetDir string) (string, error) {
	if c.fail != nil {
		return "", c.fail
	}
	artifact := filepath.Join(targetDir, "orders_backup_20260306_080000.bak")
	if err := os.WriteFile(artifact, []byte("backup payload"), 0644); err != nil {
		return "", err
	}
	return artifact, nil
}

func (c *writingConn) Close() error {
	c.journal.add("close")
	return nil
}

func TestBackupRunEndToEnd(t *testing.T) {
	Convey("Given a backup job against a real partitioned directory", t, func() {
		ctx := context.Background()
		baseDir := t.TempDir()

		store, err := storage.NewPartitioned(baseDir)
		So(err, ShouldBeNil)

		j := &journal{}
		notifier := &fakeNotifier{journal: j}
		triggeredAt := time.Date(2026, time.March, 6, 8, 0, 0, 0, time.Local)

		newJob := func(db domain.Database) *Backup {
			job := NewBackup("orders", db, store, []domain.Notifier{notifier}, nil, nopLogger{}, false)
			job.now = func() time.Time { return triggeredAt }
			return job
		}

		expectedDir := filepath.Join(baseDir, "2026", "03", "06")

		Convey("When the trigger fires and everything is reachable", func() {
			conn := &writingConn{journal: j}
			db := &fakeDatabase{}
			job := newJob(wrapDatabase(db, conn))

			err := job.Execute(ctx)

			Convey("One artifact should appear at the partitioned path", func() {
				So(err, ShouldBeNil)

				entries, err := os.ReadDir(expectedDir)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Name(), ShouldEqual, "orders_backup_20260306_080000.bak")
			})

			Convey("One success notification should go out", func() {
				So(notifier.sent, ShouldHaveLength, 1)
				So(notifier.sent[0].subject, ShouldEqual, "Backup Success: orders")
				So(notifier.sent[0].body, ShouldContainSubstring, expectedDir)
			})
		})

		Convey("When the database connection fails", func() {
			db := &fakeDatabase{connectErr: &domain.ConnectionError{
				Addr: "db.internal:1433",
				Err:  errors.New("login timeout expired"),
			}}
			job := newJob(db)

			err := job.Execute(ctx)

			Convey("No artifact should be created", func() {
				So(err, ShouldNotBeNil)

				entries, readErr := os.ReadDir(expectedDir)
				So(readErr, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})

			Convey("One failure notification should carry the connection error text", func() {
				So(notifier.sent, ShouldHaveLength, 1)
				So(notifier.sent[0].subject, ShouldEqual, "Backup Failed: orders")
				So(notifier.sent[0].body, ShouldContainSubstring, "login timeout expired")
			})
		})

		Convey("When the backup succeeds but the transport is unreachable", func() {
			notifier.err = &domain.TransportError{Channel: "fake", Err: errors.New("relay down")}
			conn := &writingConn{journal: j}
			job := newJob(wrapDatabase(&fakeDatabase{}, conn))

			err := job.Execute(ctx)

			Convey("The artifact should still exist and the run should complete", func() {
				So(err, ShouldBeNil)

				entries, readErr := os.ReadDir(expectedDir)
				So(readErr, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
			})
		})
	})
}

// wrapDatabase lets the e2e tests hand out a writingConn through the
// fakeDatabase connect bookkeeping.
type wrappedDatabase struct {
	inner *fakeDatabase
	conn  domain.Conn
}

func wrapDatabase(inner *fakeDatabase, conn domain.Conn) *wrappedDatabase {
	return &wrappedDatabase{inner: inner, conn: conn}
}

func (d *wrappedDatabase) Connect(ctx context.Context) (domain.Conn, error) {
	d.inner.connects.Add(1)
	if d.inner.connectErr != nil {
		return nil, d.inner.connectErr
	}
	return d.conn, nil
}

func (d *wrappedDatabase) Name() string { return d.inner.Name() }
func (d *wrappedDatabase) Type() string { return d.inner.Type() }
