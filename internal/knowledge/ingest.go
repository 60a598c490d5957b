package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// ChunkText splits text into fixed-size overlapping windows. Window size and
// overlap are configuration, not derived from content; whitespace-only
// windows are skipped.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for i := 0; i < len(text); i += step {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		chunk := text[i:end]
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}

// ReadManualFile loads a manual source file as plain text. HTML exports are
// converted to markdown first; anything else is taken verbatim.
func ReadManualFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read manual file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		md, err := htmltomarkdown.ConvertString(string(data))
		if err != nil {
			return "", fmt.Errorf("convert manual html: %w", err)
		}
		return md, nil
	default:
		return string(data), nil
	}
}
