// Package parser extracts identifiers, titles, tags, and link targets from
// Markdown and Org note files.
package parser

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/zettelgraph/internal/apperr"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[(.*?)\]\]`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// Result holds the output of parsing a note file.
type Result struct {
	Frontmatter map[string]interface{}
	ID          string
	Body        string
	Links       []string
	Tags        []string
	Title       string
}

// Format identifies the markup a note file is written in.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatOrg      Format = "org"
)

var extFormats = map[string]Format{
	".md":       FormatMarkdown,
	".markdown": FormatMarkdown,
	".org":      FormatOrg,
}

// SupportedExtensions lists the file extensions Parse understands.
func SupportedExtensions() []string {
	return []string{".md", ".markdown", ".org"}
}

// FormatOf returns the format for path based on its extension.
func FormatOf(path string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Parse extracts id, title, tags, body, and link targets from raw note bytes.
// The format is chosen from the extension of path.
func Parse(path string, data []byte) (*Result, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("parser: %s: %w", path, apperr.ErrUnsupportedFormat)
	}
	switch format {
	case FormatOrg:
		return parseOrg(data), nil
	default:
		return parseMarkdown(data)
	}
}

// extractWikilinks returns deduplicated wikilink targets, normalising aliases.
func extractWikilinks(body string) []string {
	matches := wikilinkRe.FindAllStringSubmatch(body, -1)
	var out []string
	for _, m := range matches {
		target := m[1]
		// [[Target|Alias]] → Target.
		if i := strings.Index(target, "|"); i >= 0 {
			target = target[:i]
		}
		target = strings.TrimPrefix(strings.TrimSpace(target), "id:")
		out = append(out, target)
	}
	return out
}

// dedupe trims items, drops empties and keeps the first occurrence of each.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, s := range items {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
