package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

func parseMarkdown(data []byte) (*Result, error) {
	meta, fm, body := splitFrontmatter(data)

	doc := walkMarkdown([]byte(body))
	title := doc.title
	if t := scalarField(meta, "title"); t != "" {
		title = t
	}

	links := append(extractWikilinks(body), doc.links...)
	tags := append(frontmatterTags(meta), doc.tags...)

	return &Result{
		Frontmatter: fm,
		ID:          scalarField(meta, "id"),
		Body:        body,
		Links:       dedupe(links),
		Tags:        dedupe(tags),
		Title:       title,
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
// The frontmatter is returned both as its mapping node, which keeps scalars as
// written, and decoded into a map.
func splitFrontmatter(data []byte) (*yaml.Node, map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	// Invalid YAML: the whole file is body and the note has no id.
	var root yaml.Node
	if err := yaml.Unmarshal(yamlBlock, &root); err != nil {
		return nil, nil, string(data)
	}
	var fm map[string]interface{}
	if err := root.Decode(&fm); err != nil {
		return nil, nil, string(data)
	}

	var meta *yaml.Node
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 && root.Content[0].Kind == yaml.MappingNode {
		meta = root.Content[0]
	}
	return meta, fm, body
}

// fieldNode returns the value node of key in the mapping node meta.
func fieldNode(meta *yaml.Node, key string) *yaml.Node {
	if meta == nil {
		return nil
	}
	for i := 0; i+1 < len(meta.Content); i += 2 {
		if meta.Content[i].Value == key {
			return meta.Content[i+1]
		}
	}
	return nil
}

// scalarField returns the text of a scalar field exactly as written, so ids
// such as 0123 or 2023-01-01 are not reformatted as numbers or timestamps.
func scalarField(meta *yaml.Node, key string) string {
	return scalarText(fieldNode(meta, key))
}

func scalarText(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

// frontmatterTags reads the "tags" field: a list, or a string of tags
// separated by commas or spaces.
func frontmatterTags(meta *yaml.Node) []string {
	n := fieldNode(meta, "tags")
	if n == nil {
		return nil
	}
	var tags []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			tags = append(tags, scalarText(item))
		}
	case yaml.ScalarNode:
		tags = strings.FieldsFunc(scalarText(n), func(r rune) bool {
			return r == ',' || r == ' '
		})
	}
	return tags
}

// markdownDoc is what walkMarkdown collects from the body.
type markdownDoc struct {
	title string
	links []string
	tags  []string
}

// walkMarkdown returns the first H1 heading, the destinations of inline
// Markdown links that are not external URLs or in-page anchors, and the
// inline #tags of prose text. Code spans and code blocks carry no tags.
func walkMarkdown(src []byte) markdownDoc {
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out markdownDoc
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			if v.Level == 1 && out.title == "" {
				out.title = strings.TrimSpace(nodeText(v, src, false))
			}
			out.tags = append(out.tags, inlineTags(nodeText(v, src, true))...)
		case *ast.Paragraph, *ast.TextBlock:
			out.tags = append(out.tags, inlineTags(nodeText(v, src, true))...)
		case *ast.Link:
			if dest := localDestination(string(v.Destination)); dest != "" {
				out.links = append(out.links, dest)
			}
		}
		return ast.WalkContinue, nil
	})
	return out
}

// nodeText concatenates the inline text under n. With prose set, code spans,
// raw HTML and autolinks are replaced by a space.
func nodeText(n ast.Node, src []byte, prose bool) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		case *ast.CodeSpan, *ast.RawHTML, *ast.AutoLink:
			if prose {
				b.WriteByte(' ')
			} else {
				b.WriteString(nodeText(c, src, prose))
			}
		default:
			b.WriteString(nodeText(c, src, prose))
		}
	}
	return b.String()
}

func inlineTags(s string) []string {
	var tags []string
	for _, m := range tagRe.FindAllStringSubmatch(s, -1) {
		tags = append(tags, m[1])
	}
	return tags
}

func localDestination(dest string) string {
	dest = strings.TrimSpace(dest)
	switch {
	case dest == "", strings.HasPrefix(dest, "#"), strings.Contains(dest, "://"), strings.HasPrefix(dest, "mailto:"):
		return ""
	}
	dest = strings.TrimPrefix(dest, "id:")
	return strings.TrimSuffix(dest, ".md")
}
