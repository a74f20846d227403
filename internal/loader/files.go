package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// definitionGlob selects definition documents under a directory.
const definitionGlob = "**/*.{cue,yaml,yml}"

// ExpandFiles resolves each pattern to definition files.
//
// A directory stands for every definition document below it; a pattern with
// glob characters (including **) is expanded with doublestar; anything else
// must be an existing file. Results keep pattern order, are sorted within a
// pattern and never repeat a file.
func ExpandFiles(patterns ...string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		matches, err := resolvePattern(pattern)
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no definition files match %s", strings.Join(patterns, ", "))}
	}
	return files, nil
}

func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, &LoadError{File: pattern, Code: ErrCodeNotFound, Message: err.Error()}
		}
		if !info.IsDir() {
			return []string{filepath.Clean(pattern)}, nil
		}
		pattern = filepath.Join(pattern, definitionGlob)
	}

	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, &LoadError{File: pattern, Code: ErrCodeNotFound, Message: fmt.Sprintf("glob error: %v", err)}
	}
	return matches, nil
}

func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
