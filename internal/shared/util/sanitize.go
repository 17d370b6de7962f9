package util

import (
	"errors"
	"strings"
	"unicode"
)

const maxFileNameBytes = 255

var errInvalidFileName = errors.New("invalid file name")

// SanitizeFileName cleans an uploaded résumé's file name: path separators become
// underscores, control characters are dropped, and traversal or oversized names
// are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errInvalidFileName
	}
	s := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		default:
			return r
		}
	}, strings.TrimSpace(name))
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxFileNameBytes {
		return "", errInvalidFileName
	}
	return s, nil
}
