package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyRoot indicates a missing root folder
	ErrEmptyRoot = errors.New("empty root folder")

	// ErrEmptyOutput indicates a missing output directory
	ErrEmptyOutput = errors.New("empty output directory")

	// ErrNoIncludePatterns indicates that no source file pattern is configured
	ErrNoIncludePatterns = errors.New("no include patterns")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidIndent indicates a non-positive indentation width
	ErrInvalidIndent = errors.New("invalid indent")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidCacheCapacity indicates a non-positive parse cache capacity
	ErrInvalidCacheCapacity = errors.New("invalid cache capacity")

	// ErrOutputInsideSource indicates an output directory inside the scanned
	// tree, which would feed outputs back in as sources
	ErrOutputInsideSource = errors.New("output directory inside source directory")

	// ErrOutputContainsSource indicates an output directory that is the
	// source directory or one of its ancestors, so outputs would land on
	// the sources themselves
	ErrOutputContainsSource = errors.New("output directory contains source directory")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if err := validateOutput(cfg); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if cfg.Cache.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidCacheCapacity, cfg.Cache.Capacity))
	}

	return joinErrors(errs)
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Root) == "" {
		errs = append(errs, fmt.Errorf("%w: root is required", ErrEmptyRoot))
	}

	if len(cfg.Include) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one include pattern required", ErrNoIncludePatterns))
	}

	for _, pattern := range append(append([]string{}, cfg.Include...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

func validateOutput(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Output.Dir) == "" {
		errs = append(errs, fmt.Errorf("%w: output dir is required", ErrEmptyOutput))
	} else if strings.TrimSpace(cfg.Paths.Root) != "" {
		source, output := cfg.SourceDir(), cfg.OutputDir()
		switch {
		case within(output, source):
			errs = append(errs, fmt.Errorf("%w: %s contains %s", ErrOutputContainsSource, output, source))
		case within(source, output):
			errs = append(errs, fmt.Errorf("%w: %s is inside %s", ErrOutputInsideSource, output, source))
		}
	}

	if cfg.Output.Indent <= 0 {
		errs = append(errs, fmt.Errorf("%w: indent must be positive, got %d", ErrInvalidIndent, cfg.Output.Indent))
	}

	return joinErrors(errs)
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// validationErrors keeps every underlying error reachable through errors.Is.
type validationErrors []error

func (v validationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, err := range v {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (v validationErrors) Unwrap() []error {
	return v
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	var flat validationErrors
	for _, err := range errs {
		var nested validationErrors
		if errors.As(err, &nested) {
			flat = append(flat, nested...)
			continue
		}
		flat = append(flat, err)
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return flat
}
