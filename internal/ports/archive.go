package ports

// Extractor unpacks archives.
type Extractor interface {
	// ExtractZip unpacks the zip file at src into dest and returns the
	// top-level entries it created, relative to dest.
	ExtractZip(src, dest string) ([]string, error)
}
