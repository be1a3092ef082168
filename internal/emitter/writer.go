package emitter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var (
	// ErrOutsideRoot is returned for inputs that do not live under the root folder.
	ErrOutsideRoot = errors.New("input is outside the root folder")

	// ErrOverwritesInput is returned when an output path is the input itself.
	ErrOverwritesInput = errors.New("output path is the input file")

	// ErrCleanContainsRoot is returned when cleaning would remove the root folder.
	ErrCleanContainsRoot = errors.New("output root contains the root folder")
)

// Writer writes rendered files to the output tree, mirroring their path
// relative to the root folder.
type Writer struct {
	fs         afero.Fs
	rootDir    string
	outputRoot string
}

// NewWriter creates a writer for inputs under rootDir.
func NewWriter(fs afero.Fs, rootDir, outputRoot string) *Writer {
	return &Writer{
		fs:         fs,
		rootDir:    filepath.Clean(rootDir),
		outputRoot: filepath.Clean(outputRoot),
	}
}

// OutputRoot returns the directory outputs are written under.
func (w *Writer) OutputRoot() string {
	return w.outputRoot
}

// Path returns the output path of input.
func (w *Writer) Path(input string) (string, error) {
	rel, err := filepath.Rel(w.rootDir, filepath.Clean(input))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, input)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, input)
	}
	return filepath.Join(w.outputRoot, rel), nil
}

// Write writes content to the output path of input, creating parent
// directories as needed, and returns that path.
func (w *Writer) Write(input string, content []byte) (string, error) {
	out, err := w.Path(input)
	if err != nil {
		return "", err
	}
	if out == filepath.Clean(input) {
		return "", fmt.Errorf("%w: %s", ErrOverwritesInput, input)
	}

	if err := w.fs.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := afero.WriteFile(w.fs, out, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", out, err)
	}

	return out, nil
}

// Clean removes the output root and everything below it. It refuses to
// run when the output root is the root folder or one of its ancestors.
func (w *Writer) Clean() error {
	rel, err := filepath.Rel(w.outputRoot, w.rootDir)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrCleanContainsRoot, w.outputRoot)
	}

	if err := w.fs.RemoveAll(w.outputRoot); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	return nil
}
