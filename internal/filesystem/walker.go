package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaweraJamal/PowerScan/internal/config"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	ignore "github.com/sabhiram/go-gitignore"
	"go.uber.org/zap"
)

// Walker walks the filesystem and finds files to scan
type Walker struct {
	config  *config.Config
	logger  *zap.Logger
	maxSize int64
}

// NewWalker creates a new filesystem walker
func NewWalker(cfg *config.Config, logger *zap.Logger) *Walker {
	return &Walker{
		config:  cfg,
		logger:  logger,
		maxSize: ParseSize(cfg.MaxSize),
	}
}

// matcherFor compiles the configured exclude patterns plus the root .gitignore
func (w *Walker) matcherFor(root string) *ignore.GitIgnore {
	patterns := append([]string{}, w.config.Exclude...)

	gitignorePath := filepath.Join(root, ".gitignore")
	if content, err := os.ReadFile(gitignorePath); err == nil {
		patterns = append(patterns, strings.Split(string(content), "\n")...)
		w.logger.Debug("Using .gitignore", zap.String("path", gitignorePath))
	}

	return ignore.CompileIgnoreLines(patterns...)
}

// Walk recursively walks the directory tree in lexical order and calls
// callback for every file that passes the exclude, extension and size filters
func (w *Walker) Walk(root string, callback func(*models.FileInfo) error) error {
	matcher := w.matcherFor(root)

	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("Error accessing path", zap.String("path", path), zap.Error(err))
			return nil // Continue walking
		}

		// Get relative path
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			relPath = path
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if matcher.MatchesPath(relPath) || matcher.MatchesPath(relPath+"/") {
				w.logger.Debug("Skipping excluded directory", zap.String("path", relPath))
				return filepath.SkipDir
			}
			return nil
		}

		if matcher.MatchesPath(relPath) {
			w.logger.Debug("Skipping excluded file", zap.String("path", relPath))
			return nil
		}
		if !w.config.ShouldScanFile(GetExtension(path)) {
			return nil
		}
		if !w.withinSize(info.Size()) {
			w.logger.Debug("Skipping large file", zap.String("path", relPath), zap.Int64("size", info.Size()))
			return nil
		}

		return callback(&models.FileInfo{
			Path:         path,
			RelativePath: relPath,
			Size:         info.Size(),
		})
	})
}

// Collect expands the given files and directories into the files to scan, in
// argument order. Explicit files skip the extension filter but not the size limit.
func (w *Walker) Collect(paths []string) ([]*models.FileInfo, error) {
	var files []*models.FileInfo
	seen := make(map[string]bool)

	add := func(fi *models.FileInfo) {
		if !seen[fi.Path] {
			seen[fi.Path] = true
			files = append(files, fi)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}

		if !info.IsDir() {
			if !w.withinSize(info.Size()) {
				w.logger.Warn("Skipping large file", zap.String("path", p), zap.Int64("size", info.Size()))
				continue
			}
			add(&models.FileInfo{Path: p, RelativePath: filepath.ToSlash(p), Size: info.Size()})
			continue
		}

		if err := w.Walk(p, func(fi *models.FileInfo) error {
			add(fi)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	return files, nil
}

func (w *Walker) withinSize(size int64) bool {
	return w.maxSize <= 0 || size <= w.maxSize
}

// GetExtension returns the file extension without dot
func GetExtension(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}
	return ext
}
