package catalog

import "fmt"

// CatalogLoadError is the only error that prevents a scan from starting:
// a missing or malformed catalog source, or a duplicate detector id.
type CatalogLoadError struct {
	Source string
	Err    error
}

func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("failed to load catalog %s: %v", e.Source, e.Err)
}

func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}
