package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"govbrief/internal/core"
)

// WriteNewsletter writes a generated newsletter to outputDir as a markdown
// file and returns the path written.
func WriteNewsletter(n core.Newsletter, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "newsletters"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filename := fmt.Sprintf("newsletter_%s_%s.md", sanitize(n.UserID), n.GeneratedAt.UTC().Format("2006-01-02"))
	filePath := filepath.Join(outputDir, filename)

	if err := os.WriteFile(filePath, []byte(n.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write newsletter file %s: %w", filePath, err)
	}

	return filePath, nil
}

// sanitize keeps user-supplied IDs safe inside a filename.
func sanitize(s string) string {
	if s == "" {
		return "anonymous"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return b.String()
}
