package report

import (
	"encoding/json"
	"io"
)

// writeJSON writes the nested document
func writeJSON(w io.Writer, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}
