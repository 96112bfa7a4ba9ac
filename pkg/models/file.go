package models

// ScanTarget is one file handed to the engine. It only lives for the duration
// of that file's pipeline run.
type ScanTarget struct {
	Name    string
	Content []byte
}

// FileInfo contains basic file information without content
type FileInfo struct {
	Path         string // Full file path
	RelativePath string // Path relative to the walked root
	Size         int64  // File size in bytes
	IsDir        bool
}
