package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the Logger package", t, func() {
		Convey("New function", func() {
			Convey("When creating a console-only logger", func() {
				log, err := New("info", "")

				Convey("It should create a working logger", func() {
					So(err, ShouldBeNil)
					So(log, ShouldNotBeNil)
					So(func() { log.Infof("run %d", 1) }, ShouldNotPanic)
				})
			})

			Convey("When a log file is configured", func() {
				tempDir := t.TempDir()
				logFile := filepath.Join(tempDir, "logs", "custos.log")

				log, err := New("debug", logFile)

				Convey("It should create the directory and write to the file", func() {
					So(err, ShouldBeNil)
					So(log, ShouldNotBeNil)

					log.Debugf("scheduled backup for %s", "orders")
					log.Close()

					_, err := os.Stat(logFile)
					So(err, ShouldBeNil)
				})
			})

			Convey("When the log level is unknown", func() {
				log, err := New("loud", "")

				Convey("It should fall back to info level", func() {
					So(err, ShouldBeNil)
					So(log, ShouldNotBeNil)
					So(func() { log.Info("still works") }, ShouldNotPanic)
				})
			})

			Convey("When the log directory cannot be created", func() {
				log, err := New("info", "/proc/custos/forbidden/test.log")

				Convey("It should return an error", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create log directory")
					So(log, ShouldBeNil)
				})
			})
		})

		Convey("Nop function", func() {
			log := Nop()

			Convey("It should swallow all output", func() {
				So(log, ShouldNotBeNil)
				So(func() { log.Errorf("discarded: %v", "x") }, ShouldNotPanic)
			})
		})

		Convey("Close method", func() {
			log, err := New("info", "")
			So(err, ShouldBeNil)

			Convey("It should not panic", func() {
				So(func() { log.Close() }, ShouldNotPanic)
			})
		})
	})
}
