package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// MissingInputError reports an absent or unreadable prerequisite: the source
// dataset, or an artifact an earlier stage should have produced. It is fatal for
// the stage that hits it, which aborts before writing any output.
type MissingInputError struct {
	// Artifact names the prerequisite, e.g. "dataset" or "summary table".
	Artifact string
	Path     string
	// Hint tells the user how to produce the prerequisite.
	Hint string
	Err  error
}

func (e *MissingInputError) Error() string {
	if e == nil {
		return "missing input"
	}
	msg := fmt.Sprintf("%s not found at %s", e.Artifact, e.Path)
	if e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist) {
		msg = fmt.Sprintf("%s unreadable at %s: %v", e.Artifact, e.Path, e.Err)
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *MissingInputError) Unwrap() error { return e.Err }

// RequireFile returns a *MissingInputError unless path names a readable regular file.
func RequireFile(artifact, path, hint string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &MissingInputError{Artifact: artifact, Path: path, Hint: hint, Err: err}
	}
	if info.IsDir() {
		return &MissingInputError{Artifact: artifact, Path: path, Hint: hint, Err: fmt.Errorf("%s is a directory", path)}
	}
	return nil
}

// IsMissingInput reports whether err is, or wraps, a *MissingInputError.
func IsMissingInput(err error) bool {
	var mi *MissingInputError
	return errors.As(err, &mi)
}
