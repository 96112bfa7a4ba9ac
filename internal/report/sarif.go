package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/SaweraJamal/PowerScan/pkg/models"
)

// SARIF 2.1.0 log, reduced to the fields code scanning tools read

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Message   sarifMessage    `json:"message"`
	Level     string          `json:"level"` // error, warning, note
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// buildSARIF emits one result per finding line
func buildSARIF(doc *Document) sarifLog {
	r := doc.Report

	rules := make([]sarifRule, 0, len(r.DetectorTotals))
	for _, dt := range r.DetectorTotals {
		rules = append(rules, sarifRule{
			ID:               dt.DetectorID,
			Name:             dt.FeatureName,
			ShortDescription: sarifMessage{Text: dt.FeatureName},
		})
	}

	results := []sarifResult{}
	for _, fr := range r.FileReports {
		uri := toURI(fr.FileName)
		for _, f := range fr.Findings {
			text := strings.TrimSpace(f.FeatureName)
			if f.Description != "" {
				text = fmt.Sprintf("%s: %s", text, f.Description)
			}
			for _, line := range f.Lines {
				results = append(results, sarifResult{
					RuleID:  f.DetectorID,
					Level:   sevToLevel(f.Severity),
					Message: sarifMessage{Text: text},
					Locations: []sarifLocation{{
						PhysicalLocation: sarifPhysicalLocation{
							ArtifactLocation: sarifArtifactLocation{URI: uri},
							Region:           sarifRegion{StartLine: max(line, 1)},
						},
					}},
				})
			}
		}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    "powerscan",
				Version: doc.Meta.Version,
				Rules:   rules,
			}},
			Results: results,
		}},
	}
}

func writeSARIF(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(buildSARIF(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sarif: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func sevToLevel(s models.Severity) string {
	switch s {
	case models.SeverityMajor:
		return "error"
	case models.SeverityMinor:
		return "warning"
	default:
		return "note"
	}
}

func toURI(p string) string {
	p = strings.TrimSpace(p)
	p = filepath.ToSlash(p)
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	p = strings.TrimPrefix(p, "./")
	if p == "" {
		return "UNKNOWN"
	}
	return p
}
