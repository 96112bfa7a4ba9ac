package filesystem

import (
	"fmt"
	"os"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// ReadTarget reads a file into a scan target named by its relative path
func ReadTarget(fileInfo *models.FileInfo) (models.ScanTarget, error) {
	content, err := os.ReadFile(fileInfo.Path)
	if err != nil {
		return models.ScanTarget{}, fmt.Errorf("failed to read file: %w", err)
	}

	name := fileInfo.RelativePath
	if name == "" {
		name = fileInfo.Path
	}

	return models.ScanTarget{
		Name:    name,
		Content: content,
	}, nil
}

// ReadTargets reads every file in order
func ReadTargets(files []*models.FileInfo) ([]models.ScanTarget, error) {
	targets := make([]models.ScanTarget, 0, len(files))
	for _, fi := range files {
		t, err := ReadTarget(fi)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// ParseSize parses size string (e.g., "650K", "1M") to bytes
func ParseSize(sizeStr string) int64 {
	if len(sizeStr) == 0 {
		return 0
	}

	// Get last character (unit)
	last := sizeStr[len(sizeStr)-1]
	var multiplier int64 = 1

	switch last {
	case 'K', 'k':
		multiplier = 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'M', 'm':
		multiplier = 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	case 'G', 'g':
		multiplier = 1024 * 1024 * 1024
		sizeStr = sizeStr[:len(sizeStr)-1]
	}

	// Parse number
	var size int64
	fmt.Sscanf(sizeStr, "%d", &size)

	return size * multiplier
}
