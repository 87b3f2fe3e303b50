package domain

// Compressor shrinks finished artifacts and restores them for operators.
type Compressor interface {
	Compress(sourcePath, destPath string) error
	Decompress(sourcePath, destPath string) error
}
