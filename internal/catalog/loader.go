package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaweraJamal/PowerScan/internal/match"
	"github.com/SaweraJamal/PowerScan/pkg/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BuiltinSource names the catalog compiled into the binary
const BuiltinSource = "builtin"

//go:embed builtin/web-features.yaml
var builtinCatalog []byte

// Loader loads a detector catalog from YAML or JSON files
type Loader struct {
	path   string
	logger *zap.Logger
}

// NewLoader creates a catalog loader. An empty path selects the builtin catalog.
func NewLoader(path string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		path:   path,
		logger: logger,
	}
}

// Load reads a catalog from a file, a directory of catalog files, or the builtin
// catalog when source is empty
func Load(source string) (*Catalog, error) {
	return NewLoader(source, nil).Load()
}

// LoadDefault returns the builtin catalog
func LoadDefault() (*Catalog, error) {
	return Parse(BuiltinSource, builtinCatalog)
}

// record is one detector entry as written in a catalog file
type record struct {
	ID          string                      `yaml:"id" json:"id"`
	Name        string                      `yaml:"name" json:"name"`
	Pattern     string                      `yaml:"pattern" json:"pattern"`
	Regex       string                      `yaml:"regex" json:"regex"`
	Structural  *models.StructuralPredicate `yaml:"structural" json:"structural"`
	Description string                      `yaml:"description" json:"description"`
	Severity    string                      `yaml:"severity" json:"severity"`
	Group       string                      `yaml:"group" json:"group"`
}

// catalogFile is the mapping form of a catalog document
type catalogFile struct {
	Detectors []record `yaml:"detectors" json:"detectors"`
}

// Load loads and compiles all detectors from the configured path
func (l *Loader) Load() (*Catalog, error) {
	if l.path == "" {
		c, err := LoadDefault()
		if err == nil {
			l.logCatalog(c)
		}
		return c, err
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, &CatalogLoadError{Source: l.path, Err: err}
	}

	var files []string
	if info.IsDir() {
		// WalkDir visits entries in lexical order
		err = filepath.WalkDir(l.path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isCatalogFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, &CatalogLoadError{Source: l.path, Err: err}
		}
	} else {
		files = []string{l.path}
	}

	var records []record
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &CatalogLoadError{Source: path, Err: err}
		}
		recs, err := parseRecords(data)
		if err != nil {
			return nil, &CatalogLoadError{Source: path, Err: err}
		}
		l.logger.Debug("Loaded catalog file", zap.String("file", path), zap.Int("detectors", len(recs)))
		records = append(records, recs...)
	}

	c, err := build(l.path, records)
	if err != nil {
		return nil, err
	}
	l.logCatalog(c)
	return c, nil
}

func (l *Loader) logCatalog(c *Catalog) {
	for _, d := range c.Invalid() {
		l.logger.Warn("Detector marked invalid",
			zap.String("detector", d.ID),
			zap.String("error", d.CompileError))
	}
	l.logger.Info("Catalog loaded",
		zap.String("source", c.Source()),
		zap.Int("detectors", c.Len()),
		zap.Int("invalid", len(c.Invalid())))
}

// Parse builds a catalog from a single YAML or JSON document
func Parse(source string, data []byte) (*Catalog, error) {
	records, err := parseRecords(data)
	if err != nil {
		return nil, &CatalogLoadError{Source: source, Err: err}
	}
	return build(source, records)
}

// parseRecords accepts either a top-level list of records or a mapping with a
// "detectors" list, written as JSON or YAML
func parseRecords(data []byte) ([]record, error) {
	// JSON escapes such as \/ are not valid YAML
	if json.Valid(data) {
		return parseJSONRecords(data)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var records []record
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	case yaml.MappingNode:
		var file catalogFile
		if err := root.Decode(&file); err != nil {
			return nil, err
		}
		return file.Detectors, nil
	default:
		return nil, fmt.Errorf("line %d: expected a list of detectors or a detectors mapping", root.Line)
	}
}

func parseJSONRecords(data []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(data)
	switch trimmed[0] {
	case '[':
		var records []record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	case '{':
		var file catalogFile
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, err
		}
		return file.Detectors, nil
	case 'n':
		return nil, nil
	default:
		return nil, errors.New("expected a list of detectors or a detectors mapping")
	}
}

func build(source string, records []record) (*Catalog, error) {
	if len(records) == 0 {
		return nil, &CatalogLoadError{Source: source, Err: errors.New("catalog contains no detectors")}
	}

	detectors := make([]*models.Detector, 0, len(records))
	for i, rec := range records {
		d, err := rec.toDetector()
		if err != nil {
			return nil, &CatalogLoadError{Source: source, Err: fmt.Errorf("record %d: %w", i+1, err)}
		}

		// A compile failure only invalidates this detector
		if err := match.Compile(d); err != nil {
			d.Invalid = true
			d.CompileError = err.Error()
		}
		detectors = append(detectors, d)
	}

	c, err := New(source, detectors)
	if err != nil {
		return nil, &CatalogLoadError{Source: source, Err: err}
	}
	return c, nil
}

func (r record) toDetector() (*models.Detector, error) {
	id := strings.TrimSpace(r.ID)
	if id == "" {
		return nil, errors.New("missing id")
	}

	pattern := r.Pattern
	if pattern == "" {
		pattern = r.Regex
	}
	if r.Pattern != "" && r.Regex != "" {
		return nil, fmt.Errorf("detector %s: both pattern and regex set", id)
	}
	if pattern != "" && r.Structural != nil {
		return nil, fmt.Errorf("detector %s: pattern and structural are mutually exclusive", id)
	}
	if pattern == "" && r.Structural == nil {
		return nil, fmt.Errorf("detector %s: missing pattern or structural", id)
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = id
	}

	severity := models.SeverityMinor
	if r.Severity != "" {
		s, ok := models.ParseSeverity(r.Severity)
		if !ok {
			return nil, fmt.Errorf("detector %s: unknown severity %q", id, r.Severity)
		}
		severity = s
	}

	group := models.GroupJS
	if r.Structural != nil {
		group = models.GroupHTML
	}
	if r.Group != "" {
		g, ok := models.ParseGroup(r.Group)
		if !ok {
			return nil, fmt.Errorf("detector %s: unknown group %q", id, r.Group)
		}
		group = g
	}

	d := &models.Detector{
		ID:          id,
		Name:        name,
		Description: strings.TrimSpace(r.Description),
		Severity:    severity,
		Group:       group,
		Pattern:     pattern,
	}
	if r.Structural != nil {
		p := *r.Structural
		d.Structural = &p
	}
	return d, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
