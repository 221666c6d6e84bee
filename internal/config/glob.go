package config

import (
	"path/filepath"
	"strings"
)

// MatchesGlob reports whether a file path matches any of the include
// patterns and none of the exclude patterns.
func MatchesGlob(filePath string, includePatterns []string, excludePatterns []string) bool {
	if len(includePatterns) == 0 {
		return false
	}

	filePath = filepath.ToSlash(filePath)

	for _, pattern := range excludePatterns {
		if globMatch(filePath, filepath.ToSlash(pattern)) {
			return false
		}
	}

	for _, pattern := range includePatterns {
		if globMatch(filePath, filepath.ToSlash(pattern)) {
			return true
		}
	}

	return false
}

// globMatch matches a path against a glob pattern with ** support.
// Matching is done against suffixes of the path, so "src/**/*.ts" matches
// any file under a "src/" directory whose name matches "*.ts".
func globMatch(filePath, pattern string) bool {
	if matched, _ := filepath.Match(pattern, filePath); matched {
		return true
	}

	if !strings.Contains(pattern, "**") {
		// No ** means the pattern names a single path level; fall back to
		// matching the basename so "foo.ts" works from any directory.
		matched, _ := filepath.Match(filepath.Base(pattern), filepath.Base(filePath))
		return matched
	}

	parts := strings.SplitN(pattern, "**", 2)
	prefix := strings.TrimSuffix(parts[0], "/")
	suffix := strings.TrimPrefix(parts[1], "/")

	if prefix == "" {
		if suffix == "" {
			return true
		}
		matched, _ := filepath.Match(suffix, filepath.Base(filePath))
		return matched
	}

	var remaining string
	if strings.HasPrefix(filePath, prefix+"/") {
		remaining = filePath[len(prefix)+1:]
	} else if idx := strings.Index(filePath, "/"+prefix+"/"); idx >= 0 {
		remaining = filePath[idx+len(prefix)+2:]
	} else {
		return false
	}
	if suffix == "" {
		return true
	}
	if matched, _ := filepath.Match(suffix, filepath.Base(remaining)); matched {
		return true
	}
	matched, _ := filepath.Match(suffix, remaining)
	return matched
}
