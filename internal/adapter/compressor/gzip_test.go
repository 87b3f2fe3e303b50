package compressor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGzipCompressor(t *testing.T) {
	Convey("Given a GzipCompressor", t, func() {
		compressor := NewGzip()
		dir := t.TempDir()

		Convey("When compressing and decompressing an artifact", func() {
			artifact := filepath.Join(dir, "orders_backup_20260307_080000.bak")
			content := []byte("full database backup payload")
			So(os.WriteFile(artifact, content, 0644), ShouldBeNil)

			compressed := artifact + ".gz"
			restored := filepath.Join(dir, "restored.bak")

			Convey("It should round-trip the content", func() {
				So(compressor.Compress(artifact, compressed), ShouldBeNil)
				So(compressor.Decompress(compressed, restored), ShouldBeNil)

				got, err := os.ReadFile(restored)
				So(err, ShouldBeNil)
				So(got, ShouldResemble, content)
			})

			Convey("It should leave the source artifact in place", func() {
				So(compressor.Compress(artifact, compressed), ShouldBeNil)

				_, err := os.Stat(artifact)
				So(err, ShouldBeNil)
			})

			Convey("It should produce a valid gzip stream", func() {
				So(compressor.Compress(artifact, compressed), ShouldBeNil)

				f, err := os.Open(compressed)
				So(err, ShouldBeNil)
				defer f.Close()

				r, err := gzip.NewReader(f)
				So(err, ShouldBeNil)
				r.Close()
			})
		})

		Convey("When the source file does not exist", func() {
			err := compressor.Compress(filepath.Join(dir, "missing.bak"), filepath.Join(dir, "out.gz"))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to open source file")
			})
		})

		Convey("When the destination cannot be created", func() {
			artifact := filepath.Join(dir, "a.bak")
			So(os.WriteFile(artifact, []byte("x"), 0644), ShouldBeNil)

			err := compressor.Compress(artifact, filepath.Join(dir, "no", "such", "dir", "out.gz"))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create dest file")
			})
		})

		Convey("When decompressing a file that is not gzip", func() {
			plain := filepath.Join(dir, "plain.txt")
			So(os.WriteFile(plain, []byte("not gzip"), 0644), ShouldBeNil)

			err := compressor.Decompress(plain, filepath.Join(dir, "out.txt"))

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create gzip reader")
			})
		})
	})
}
