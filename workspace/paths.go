// Package workspace handles on-disk layout for pipeline runs: safe
// directory names derived from topics and collision-free run folders.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const maxNameLen = 50

var illegalChars = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// SanitizeName turns an arbitrary topic string into a filesystem-safe
// directory name. Illegal characters and whitespace collapse to single
// underscores, the result is capped at 50 characters, and an empty
// result becomes "untitled".
func SanitizeName(name string) string {
	s := illegalChars.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if len(s) > maxNameLen {
		s = s[:maxNameLen]
		s = strings.TrimRight(s, "_")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// UniqueDir creates and returns a directory under base named after name,
// appending _2, _3, ... when the plain name is taken. Probing stops after
// 1000 attempts.
func UniqueDir(base, name string) (string, error) {
	clean := SanitizeName(name)
	if err := os.MkdirAll(base, 0755); err != nil {
		return "", fmt.Errorf("create run base: %w", err)
	}
	for i := 1; i <= 1000; i++ {
		candidate := clean
		if i > 1 {
			candidate = fmt.Sprintf("%s_%d", clean, i)
		}
		dir := filepath.Join(base, candidate)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return dir, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create run dir: %w", err)
		}
	}
	return "", fmt.Errorf("create run dir: no free name for %q under %s", clean, base)
}
