package histogram

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/statsheet/internal/dataset"
	"github.com/KaramelBytes/statsheet/internal/utils"
)

// Store keeps one PNG per variable under Dir, keyed by the file-safe form of
// the variable name.
type Store struct {
	Dir string
}

// Path returns where the image for name is stored.
func (s Store) Path(name string) string {
	return filepath.Join(s.Dir, utils.SafeFileName(name)+".png")
}

// Save atomically writes img and returns its path.
func (s Store) Save(img *Image) (string, error) {
	if err := utils.EnsureDir(s.Dir); err != nil {
		return "", fmt.Errorf("create plots dir: %w", err)
	}
	p := s.Path(img.Name)
	if err := utils.SafeWriteFile(p, img.PNG); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

// Lookup reports whether an image exists for name.
func (s Store) Lookup(name string) (string, bool) {
	p := s.Path(name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", false
	}
	return p, true
}

// Open returns the PNG bytes stored for name. An absent image yields an error
// satisfying errors.Is(err, fs.ErrNotExist).
func (s Store) Open(name string) ([]byte, error) {
	return os.ReadFile(s.Path(name))
}

// RenderAll renders and stores an image for every numeric column of ds, in
// column order, and returns the written paths.
func RenderAll(ds *dataset.Dataset, store Store, opt Options, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cols := ds.NumericColumns()
	paths := make([]string, 0, len(cols))
	seen := make(map[string]string, len(cols))
	for _, c := range cols {
		key := utils.SafeFileName(c.Name)
		if prev, ok := seen[key]; ok {
			logger.Warn("variables share an image file; the later one wins",
				"first", prev, "second", c.Name, "file", key+".png")
		}
		seen[key] = c.Name

		img, err := Render(c.Name, c.NonMissing(), opt)
		if err != nil {
			return paths, err
		}
		p, err := store.Save(img)
		if err != nil {
			return paths, err
		}
		logger.Debug("histogram written", "variable", c.Name, "path", p,
			"bins", len(img.Bins), "placeholder", img.Placeholder)
		paths = append(paths, p)
	}
	return paths, nil
}
