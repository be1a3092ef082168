package extractor

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files at the top of the tree for `**/` patterns.
	rootGlob glob.Glob
}

// FileDiscovery finds source files under a directory using include and
// ignore glob patterns. Patterns are matched against slash-separated paths
// relative to the directory.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	ignorePatterns  []compiledPattern
}

// NewFileDiscovery creates a new file discovery instance.
func NewFileDiscovery(rootDir string, includePatterns, ignorePatterns []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(includePatterns); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compilePatterns(ignorePatterns); err != nil {
		return nil, err
	}

	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		// "**/*.ts" should match both "a.ts" and "models/a.ts".
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			if cp.rootGlob, err = glob.Compile(simplified, '/'); err != nil {
				return nil, err
			}
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// RootDir returns the directory files are discovered under.
func (fd *FileDiscovery) RootDir() string {
	return fd.rootDir
}

// Discover walks the directory tree and returns the matching files in
// lexical order. Ignored directories are not descended into.
func (fd *FileDiscovery) Discover() ([]string, error) {
	files := []string{}

	err := filepath.WalkDir(fd.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if !fd.shouldIgnore(relPath) && fd.matchesAnyPattern(relPath, fd.includePatterns) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// Matches reports whether path, absolute or relative to the working
// directory, is a file Discover would return.
func (fd *FileDiscovery) Matches(path string) bool {
	relPath, err := filepath.Rel(fd.rootDir, path)
	if err != nil || relPath == "." || strings.HasPrefix(relPath, "..") {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	// Any ignored ancestor directory excludes the file.
	parts := strings.Split(relPath, "/")
	for i := 1; i < len(parts); i++ {
		if fd.shouldIgnore(strings.Join(parts[:i], "/")) {
			return false
		}
	}

	return !fd.shouldIgnore(relPath) && fd.matchesAnyPattern(relPath, fd.includePatterns)
}

// shouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if fd.matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return fd.matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
func (fd *FileDiscovery) matchesAnyPattern(path string, patterns []compiledPattern) bool {
	atRoot := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if atRoot && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
