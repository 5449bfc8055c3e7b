// Package transcribe turns normalized answer audio into a cleaned transcript.
package transcribe

import (
	"context"
	"regexp"
	"strings"
)

// Transcriber returns the cleaned transcript for a normalized wav. An empty
// string means no speech was detected and is not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

var (
	timestampRe = regexp.MustCompile(`\[\d{2}:\d{2}(?::\d{2})?[.,]\d{3}\s*-->\s*\d{2}:\d{2}(?::\d{2})?[.,]\d{3}\]`)
	// [BLANK_AUDIO], [MUSIC PLAYING], (silence), (inaudible) ...
	markerRe = regexp.MustCompile(`\[[A-Za-z _-]+\]|\((?i:silence|inaudible|music|noise|blank_audio|applause|laughter)[^)]*\)`)
	spaceRe  = regexp.MustCompile(`\s+`)
	logLine  = []string{"whisper_", "main:", "system_info:", "output_", "ggml_", "progress =", "load_backend:"}
)

// Clean removes engine decoration from raw engine output and collapses
// whitespace.
func Clean(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || isLogLine(trimmed) {
			continue
		}
		kept = append(kept, trimmed)
	}
	text := strings.Join(kept, " ")
	text = timestampRe.ReplaceAllString(text, " ")
	text = markerRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func isLogLine(line string) bool {
	for _, p := range logLine {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}
