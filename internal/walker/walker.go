package walker

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is read from the root of every walked directory.
const IgnoreFile = ".grepowskiignore"

// maxFileSize is the largest file picked up from a directory walk (1 MB).
// Files named explicitly on the command line are never size-filtered.
const maxFileSize = 1 << 20

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

// defaultIgnores are used when a directory has no ignore file.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	"vendor",
	"__pycache__",
	".idea",
	".vscode",
	"dist",
	"build",
}

// Expand resolves the given paths into an ordered list of files. Plain file
// arguments are kept as given. Directories are replaced by the text files
// below them in lexical order, skipping ignored directories, symlinks
// found inside them, and empty, oversized or binary files. The returned error wraps the
// *fs.PathError of the first path that could not be inspected.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		found, err := walkDir(p)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

// walkDir lists the files below root. A symlinked root is followed; reported
// paths keep the root as given. Symlinks below the root are skipped.
func walkDir(root string) ([]string, error) {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, err
	}
	ignores := loadIgnorePatterns(resolved)

	var files []string
	err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, _ := filepath.Rel(resolved, path)
		if d.IsDir() {
			if path == resolved {
				return nil
			}
			if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
			return nil
		}

		if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxFileSize || info.Size() == 0 {
			return nil
		}

		binary, err := looksBinary(path)
		if err != nil {
			return err
		}
		if !binary {
			files = append(files, filepath.Join(root, rel))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

// looksBinary reports whether the head of the file contains a NUL byte.
func looksBinary(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return bytes.IndexByte(buf[:n], 0) >= 0, nil
}

// loadIgnorePatterns reads the ignore file from root, falling back to the
// defaults when it is missing or empty.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return defaultIgnores
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return defaultIgnores
	}
	return patterns
}

// matchesIgnore checks if a name or relative path matches any ignore pattern.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		// Exact name match (e.g. "node_modules", ".git").
		if name == p {
			return true
		}
		// Path prefix match (e.g. "third_party/vendor").
		if relPath == p || strings.HasPrefix(relPath, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
