package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/SaweraJamal/PowerScan/internal/match"
	"github.com/SaweraJamal/PowerScan/pkg/models"
)

const testCatalog = `
detectors:
  - id: fetch_api
    name: Fetch API
    regex: 'fetch\('
    severity: major
    group: js
  - id: css_has
    name: ":has() selector"
    pattern: ':has\('
    severity: MAJOR
    group: CSS
  - id: bad
    regex: '('
  - id: html_dialog
    name: Dialog element
    structural: {tag: dialog}
    severity: minor
  - id: js_clipboard
    name: Async Clipboard API
    pattern: 'navigator\.clipboard'
    severity: minor
    group: js
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yaml", testCatalog)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	wantIDs := []string{"fetch_api", "css_has", "bad", "html_dialog", "js_clipboard"}
	if got := c.IDs(); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("IDs() = %v, want %v", got, wantIDs)
	}

	has, _ := c.Get("css_has")
	if has.Severity != models.SeverityMajor || has.Group != models.GroupCSS {
		t.Errorf("css_has severity/group = %s/%s, want major/css", has.Severity, has.Group)
	}

	dialog, _ := c.Get("html_dialog")
	if dialog.Kind() != models.MatcherStructural || dialog.Group != models.GroupHTML {
		t.Errorf("html_dialog kind/group = %s/%s, want structural/html", dialog.Kind(), dialog.Group)
	}

	if c.Position("js_clipboard") != 4 || c.Position("missing") != -1 {
		t.Errorf("Position() returned unexpected values")
	}
}

func TestLoad_UnbalancedPatternIsInvalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yaml", testCatalog)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() should succeed with an invalid detector, got %v", err)
	}

	bad, ok := c.Get("bad")
	if !ok {
		t.Fatal("invalid detector should stay in the catalog")
	}
	if !bad.Invalid || bad.CompileError == "" {
		t.Errorf("bad detector Invalid = %v, CompileError = %q", bad.Invalid, bad.CompileError)
	}
	if bad.Matcher != nil {
		t.Error("invalid detector should have no matcher")
	}
	if bad.Name != "bad" {
		t.Errorf("Name should default to id, got %q", bad.Name)
	}

	for _, d := range c.Effective(c.IDs(), models.Severities) {
		if d.ID == "bad" {
			t.Fatal("invalid detector appeared in effective set")
		}
	}

	invalid := c.InvalidAmong([]string{"bad", "fetch_api"})
	if len(invalid) != 1 || invalid[0].DetectorID != "bad" {
		t.Errorf("InvalidAmong() = %v, want only bad", invalid)
	}
	if got := c.InvalidAmong([]string{"fetch_api"}); len(got) != 0 {
		t.Errorf("InvalidAmong() for valid ids = %v, want empty", got)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Duplicate id", "- {id: a, pattern: x}\n- {id: a, pattern: y}\n"},
		{"Unknown severity", "- {id: a, pattern: x, severity: critical}\n"},
		{"Unknown group", "- {id: a, pattern: x, group: php}\n"},
		{"Missing id", "- {name: A, pattern: x}\n"},
		{"Missing matcher", "- {id: a, name: A}\n"},
		{"Both matchers", "- {id: a, pattern: x, structural: {tag: p}}\n"},
		{"Malformed document", "detectors: [\n"},
		{"Scalar document", "just text\n"},
		{"Empty catalog", "detectors: []\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "catalog.yaml", tt.content)

			_, err := Load(path)
			var cle *CatalogLoadError
			if !errors.As(err, &cle) {
				t.Fatalf("Load() error = %v, want *CatalogLoadError", err)
			}
			if cle.Source != path {
				t.Errorf("CatalogLoadError.Source = %q, want %q", cle.Source, path)
			}
		})
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var cle *CatalogLoadError
	if !errors.As(err, &cle) {
		t.Fatalf("Load() error = %v, want *CatalogLoadError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("CatalogLoadError should wrap os.ErrNotExist, got %v", err)
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yml", "- {id: second, pattern: b}\n- {id: third, pattern: c}\n")
	writeFile(t, dir, "a.json", `[{"id": "first", "pattern": "a\\(", "severity": "major"}]`)
	writeFile(t, dir, "notes.txt", "ignored")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"first", "second", "third"}
	if got := c.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}

	first, _ := c.Get("first")
	if first.Pattern != `a\(` {
		t.Errorf("JSON pattern = %q, want %q", first.Pattern, `a\(`)
	}
}

func TestParse_JSON(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		id      string
		pattern string
	}{
		{
			name:    "Escaped slash",
			data:    `{"detectors": [{"id": "dialog_close", "pattern": "<\/dialog>\\s*x", "severity": "MAJOR", "group": "HTML"}]}`,
			id:      "dialog_close",
			pattern: `</dialog>\s*x`,
		},
		{
			name:    "Top-level list",
			data:    `[{"id": "a", "pattern": "\u003cslot"}]`,
			id:      "a",
			pattern: "<slot",
		},
		{
			name:    "Duplicate key keeps last",
			data:    `[{"id": "a", "pattern": "x", "pattern": "y"}]`,
			id:      "a",
			pattern: "y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse("catalog.json", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			d, ok := c.Get(tt.id)
			if !ok {
				t.Fatalf("detector %s not loaded", tt.id)
			}
			if d.Pattern != tt.pattern || d.Invalid {
				t.Errorf("pattern = %q (invalid %v), want %q", d.Pattern, d.Invalid, tt.pattern)
			}
		})
	}

	c, err := Parse("catalog.json", []byte(tests[0].data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	d, _ := c.Get("dialog_close")
	if d.Severity != models.SeverityMajor || d.Group != models.GroupHTML {
		t.Errorf("severity/group = %s/%s, want major/html", d.Severity, d.Group)
	}
	if _, err := Parse("catalog.json", []byte(`"text"`)); err == nil {
		t.Error("Parse() accepted a JSON scalar")
	}
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "- {id: same, pattern: a}\n")
	writeFile(t, dir, "b.yaml", "- {id: same, pattern: b}\n")

	if _, err := Load(dir); err == nil {
		t.Fatal("Load() should fail on duplicate ids across files")
	}
}

func TestLoadDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if c.Source() != BuiltinSource {
		t.Errorf("Source() = %q, want %q", c.Source(), BuiltinSource)
	}

	for _, d := range c.Detectors() {
		if d.Invalid {
			t.Errorf("builtin detector %s is invalid: %s", d.ID, d.CompileError)
		}
	}

	fetch, ok := c.Get("fetch_api")
	if !ok {
		t.Fatal("builtin catalog should contain fetch_api")
	}
	if fetch.Name != "Fetch API" || fetch.Severity != models.SeverityMajor || fetch.Group != models.GroupJS {
		t.Errorf("fetch_api = %+v", fetch)
	}

	groups := map[models.Group]int{}
	for _, d := range c.Detectors() {
		groups[d.Group]++
	}
	for _, g := range []models.Group{models.GroupHTML, models.GroupCSS, models.GroupJS} {
		if groups[g] == 0 {
			t.Errorf("builtin catalog has no %s detectors", g)
		}
	}
}

func TestBuiltinDetectors_Match(t *testing.T) {
	c, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}

	tests := []struct {
		id      string
		content string
		want    int
	}{
		{"fetch_api", "fetch(\"/x\");\nfetch(\"/y\");", 2},
		{"css_has", "a:has(> img) { }", 1},
		{"css_container_queries", "@container sidebar (min-width: 400px) {}", 1},
		{"css_nesting", ".card {\n  &:hover { color: red; }\n  & > p {}\n}", 2},
		{"js_module_import", "import a from 'a';\nconst s = 'import x';\n  import('b');", 2},
		{"js_logical_assignment", "a ??= 1; b ||= 2; c &&= 3; d = e || f;", 3},
		{"js_set_methods", "a.union(b); a.isSubsetOf(b);", 2},
		{"html_popover", "<div popover>x</div><button popovertarget=\"x\">", 1},
		{"html_inline_style", "<p style=\"x\"></p><style>p{}</style>", 1},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			d, ok := c.Get(tt.id)
			if !ok {
				t.Fatalf("detector %s not found", tt.id)
			}
			if got := len(d.Matcher.FindAll(tt.content)); got != tt.want {
				t.Errorf("%s matched %d times, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestEffective(t *testing.T) {
	path := writeFile(t, t.TempDir(), "catalog.yaml", testCatalog)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	ids := func(ds []*models.Detector) []string {
		out := []string{}
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	tests := []struct {
		name       string
		selected   []string
		severities []models.Severity
		want       []string
	}{
		{
			name:       "Catalog order regardless of selection order",
			selected:   []string{"js_clipboard", "fetch_api", "html_dialog"},
			severities: models.Severities,
			want:       []string{"fetch_api", "html_dialog", "js_clipboard"},
		},
		{
			name:       "Severity filter",
			selected:   c.IDs(),
			severities: []models.Severity{models.SeverityMajor},
			want:       []string{"fetch_api", "css_has"},
		},
		{
			name:       "Unknown ids ignored",
			selected:   []string{"nope", "css_has"},
			severities: models.Severities,
			want:       []string{"css_has"},
		},
		{
			name:       "Empty selection",
			selected:   nil,
			severities: models.Severities,
			want:       []string{},
		},
		{
			name:       "Empty severities",
			selected:   c.IDs(),
			severities: nil,
			want:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(c.Effective(tt.selected, tt.severities))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Effective() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_Duplicate(t *testing.T) {
	a := &models.Detector{ID: "a", Pattern: "x"}
	if err := match.Compile(a); err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if _, err := New("test", []*models.Detector{a, a}); err == nil {
		t.Error("New() should reject duplicate ids")
	}
}
