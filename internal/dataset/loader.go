package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/statsheet/internal/artifacts"
)

// Loader reads one tabular file format into a header and raw records.
type Loader interface {
	CanLoad(filename string) bool
	Records(path string, opt Options) (header []string, records [][]string, err error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no registered loader accepts the file.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load reads path with the first loader that accepts it and infers column kinds.
// An absent or unreadable file yields a *artifacts.MissingInputError.
func Load(path string, opt Options) (*Dataset, error) {
	if err := artifacts.RequireFile("dataset", path, "check the input path"); err != nil {
		return nil, err
	}
	for _, l := range registry {
		if !l.CanLoad(path) {
			continue
		}
		header, records, err := l.Records(path, opt)
		if errors.Is(err, ErrUnsupported) {
			return nil, err
		}
		if err != nil {
			return nil, &artifacts.MissingInputError{Artifact: "dataset", Path: path, Err: err}
		}
		ds, err := FromRecords(filepath.Base(path), header, records, opt)
		if err != nil {
			return nil, &artifacts.MissingInputError{Artifact: "dataset", Path: path, Err: err}
		}
		return ds, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, strings.ToLower(filepath.Ext(path)))
}

// legacyLoader rejects binary spreadsheet formats that would otherwise be read as
// delimited text.
type legacyLoader struct{}

func (legacyLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".xls") || strings.HasSuffix(name, ".ods")
}

func (legacyLoader) Records(path string, _ Options) ([]string, [][]string, error) {
	return nil, nil, fmt.Errorf("%w: %s (save as .xlsx or .csv)", ErrUnsupported, filepath.Base(path))
}

func init() {
	Register(xlsxLoader{})
	Register(legacyLoader{})
	// Delimited text is the fallback for any other extension.
	Register(delimitedLoader{})
}
