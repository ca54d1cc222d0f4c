package parser

import (
	"regexp"
	"strings"
)

var (
	orgIDLinkRe   = regexp.MustCompile(`\[\[id:([^\]]+)\](?:\[[^\]]*\])?\]`)
	orgPropertyRe = regexp.MustCompile(`^:([A-Za-z0-9_-]+):\s*(.*)$`)
)

// parseOrg reads an org-roam style file: the file-level property drawer
// supplies the ID, #+title and #+filetags supply title and tags.
func parseOrg(data []byte) *Result {
	lines := strings.Split(string(data), "\n")

	res := &Result{}
	body := make([]string, 0, len(lines))
	inDrawer := false
	seenHeading := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(line, "*") && strings.HasPrefix(strings.TrimLeft(line, "*"), " ") {
			seenHeading = true
		}

		if !seenHeading {
			upper := strings.ToUpper(trimmed)
			switch {
			case upper == ":PROPERTIES:":
				inDrawer = true
				continue
			case inDrawer && upper == ":END:":
				inDrawer = false
				continue
			case inDrawer:
				if m := orgPropertyRe.FindStringSubmatch(trimmed); m != nil && strings.EqualFold(m[1], "ID") {
					res.ID = strings.TrimSpace(m[2])
				}
				continue
			}

			if key, value, ok := orgKeyword(trimmed); ok {
				switch key {
				case "TITLE":
					res.Title = value
				case "FILETAGS":
					res.Tags = append(res.Tags, splitOrgTags(value)...)
				}
			}
		}

		body = append(body, line)
	}

	res.Body = strings.Join(body, "\n")
	res.Tags = dedupe(res.Tags)

	var links []string
	for _, m := range orgIDLinkRe.FindAllStringSubmatch(res.Body, -1) {
		links = append(links, m[1])
	}
	res.Links = dedupe(links)

	return res
}

// orgKeyword parses "#+KEY: value" lines.
func orgKeyword(line string) (string, string, bool) {
	if !strings.HasPrefix(line, "#+") {
		return "", "", false
	}
	key, value, ok := strings.Cut(line[2:], ":")
	if !ok {
		return "", "", false
	}
	return strings.ToUpper(strings.TrimSpace(key)), strings.TrimSpace(value), true
}

// splitOrgTags splits ":a:b:" or "a b" tag lists.
func splitOrgTags(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ':' || r == ' ' || r == '\t'
	})
}
