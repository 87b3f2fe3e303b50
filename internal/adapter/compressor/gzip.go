package compressor

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// GzipCompressor shrinks finished backup artifacts in place. The source file
// is left untouched; callers decide whether to remove it.
type GzipCompressor struct {
	level int
}

func NewGzip() *GzipCompressor {
	return &GzipCompressor{level: gzip.BestCompression}
}

func (g *GzipCompressor) Compress(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create dest file: %w", err)
	}
	defer destFile.Close()

	gzipWriter, err := gzip.NewWriterLevel(destFile, g.level)
	if err != nil {
		return fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := io.Copy(gzipWriter, sourceFile); err != nil {
		gzipWriter.Close()
		return fmt.Errorf("failed to compress: %w", err)
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}

	return nil
}

func (g *GzipCompressor) Decompress(sourcePath, destPath string) error {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer sourceFile.Close()

	gzipReader, err := gzip.NewReader(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create dest file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, gzipReader); err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}

	return nil
}
