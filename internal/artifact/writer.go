package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrDestinationUnwritable is returned when a target path cannot be created
// or written. The wrapped message carries the destination and OS error.
var ErrDestinationUnwritable = errors.New("destination is not writable")

// Capabilities enumerates which artifacts a run produces.
// Each flag corresponds to one skip flag on the CLI; a false value means
// the artifact is not attempted and reported as skipped, not failed.
type Capabilities struct {
	// HTML enables the styled HTML table.
	HTML bool

	// Workbook enables the cleaned workbook copy.
	Workbook bool

	// Plots enables the PNG chart set.
	Plots bool

	// Markdown enables the Markdown summary.
	Markdown bool
}

// AllCapabilities returns a Capabilities with every artifact enabled.
func AllCapabilities() Capabilities {
	return Capabilities{HTML: true, Workbook: true, Plots: true, Markdown: true}
}

// Writer persists artifact bytes to their destinations.
//
// Design decision: Writer is deliberately ignorant of artifact content; it
// receives bytes and a path. Keeping rendering and persistence separate is
// what makes the per-artifact isolate-and-continue policy trivial: every
// artifact goes through the same small amount of code.
type Writer struct {
	// dirPerm is the mode for created parent directories.
	dirPerm os.FileMode

	// filePerm is the mode for written artifact files.
	filePerm os.FileMode
}

// NewWriter creates a Writer with conventional permissions (0750 for
// directories, 0600 for files).
func NewWriter() *Writer {
	return &Writer{dirPerm: 0750, filePerm: 0600}
}

// Write persists data to path, creating parent directories as needed.
// Failures are wrapped in ErrDestinationUnwritable together with the path.
func (w *Writer) Write(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, w.dirPerm); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, path, err)
		}
	}

	if err := os.WriteFile(path, data, w.filePerm); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, path, err)
	}
	return nil
}

// WriteAll persists a set of named files under dir, creating it as needed.
// It stops at the first failure; the files form one artifact, and a partial
// chart set is more confusing than a reported failure.
func (w *Writer) WriteAll(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, w.dirPerm); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrDestinationUnwritable, dir, err)
	}

	for name, data := range files {
		if err := w.Write(filepath.Join(dir, name), data); err != nil {
			return err
		}
	}
	return nil
}
