// Package writer appends generated serializer code to each app's module.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

// DefaultFilename is the module created inside each app directory.
const DefaultFilename = "api_serializers_ai.py"

// Header starts every new serializer module.
const Header = "from rest_framework import serializers\n\n"

// ErrNoAppPath is returned when an app has no directory to write into.
var ErrNoAppPath = errors.New("app has no filesystem path")

// Writer appends serializer code to <app path>/<filename>.
type Writer struct {
	fs       afero.Fs
	filename string
}

// New creates a writer on fs. An empty filename selects DefaultFilename.
func New(fs afero.Fs, filename string) *Writer {
	if filename == "" {
		filename = DefaultFilename
	}
	return &Writer{fs: fs, filename: filename}
}

// NewOS creates a writer on the real filesystem.
func NewOS(filename string) *Writer {
	return New(afero.NewOsFs(), filename)
}

// Path returns the target module for app.
func (w *Writer) Path(app model.AppDescriptor) (string, error) {
	if app.Path == "" {
		return "", fmt.Errorf("%s: %w", app.Label, ErrNoAppPath)
	}
	return filepath.Join(app.Path, w.filename), nil
}

// Append writes code to the app's serializer module, creating it with Header
// first if needed. The code is terminated with a newline and followed by a
// blank-line separator.
func (w *Writer) Append(app model.AppDescriptor, code string) (string, error) {
	path, err := w.Path(app)
	if err != nil {
		return "", err
	}
	if err := w.ensureHeader(path); err != nil {
		return "", err
	}

	f, err := w.fs.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString(code)
	if !strings.HasSuffix(code, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("\n\n")

	if _, err := f.WriteString(b.String()); err != nil {
		return "", fmt.Errorf("append to %s: %w", path, err)
	}
	return path, nil
}

func (w *Writer) ensureHeader(path string) error {
	exists, err := afero.Exists(w.fs, path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if exists {
		return nil
	}
	if err := afero.WriteFile(w.fs, path, []byte(Header), 0o644); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}
