package emotion

import "strings"

// Split breaks text into sentences ending at runs of '.', '!' or '?'. The
// punctuation stays with its sentence and a trailing fragment without
// punctuation is a sentence of its own. Results are trimmed; empty ones are
// dropped.
func Split(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text); i++ {
		if !isTerminal(text[i]) {
			continue
		}
		for i+1 < len(text) && isTerminal(text[i+1]) {
			i++
		}
		out = appendSentence(out, text[start:i+1])
		start = i + 1
	}
	return appendSentence(out, text[start:])
}

func isTerminal(b byte) bool { return b == '.' || b == '!' || b == '?' }

func appendSentence(out []string, s string) []string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return out
	case strings.Trim(s, ".!?") == "" && len(out) > 0:
		// stray punctuation as in "Yes. ." belongs to the previous sentence
		out[len(out)-1] += s
		return out
	}
	return append(out, s)
}
