package htmlutil

import (
	"regexp"
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts an HTML fragment to plain text, decoding entities and
// dropping tags.
func ToText(s string) string {
	return strings.TrimSpace(html2text.HTML2Text(s))
}

var blockEnd = regexp.MustCompile(`(?i)</(p|h[1-6]|div|li)>`)

// Paragraphs splits an HTML fragment at the end of each block element and
// returns the non-empty text of every block.
func Paragraphs(s string) []string {
	var out []string
	for _, chunk := range blockEnd.Split(s, -1) {
		if text := ToText(chunk); text != "" {
			out = append(out, text)
		}
	}
	return out
}
