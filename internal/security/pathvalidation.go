// Package security guards output paths built from dataset-supplied tokens
// and filenames, so a crafted record cannot write outside the output root.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// JoinWithin joins name onto root and rejects the result if it escapes root.
// The check is lexical so it also applies to in-memory filesystems.
func JoinWithin(root, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty output name under %s", root)
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("absolute output name %q not allowed under %s", name, root)
	}

	cleanRoot := filepath.Clean(root)
	joined := filepath.Join(cleanRoot, name)

	rel, err := filepath.Rel(cleanRoot, joined)
	if err != nil {
		return "", fmt.Errorf("path is outside output directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %s attempts to escape %s", name, root)
	}
	return joined, nil
}

// SanitizeFilename makes a safe filename from an arbitrary token. Characters
// other than ASCII letters, digits, dot, underscore or dash become a single
// underscore, and the result is capped at 128 bytes.
func SanitizeFilename(s string) string {
	if s == "" {
		return "unknown"
	}
	var b strings.Builder
	const maxLen = 128
	lastUnderscore := false
	for _, r := range s {
		if b.Len() >= maxLen {
			break
		}
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
