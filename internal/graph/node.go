package graph

import (
	"regexp"
	"sort"
)

// Node is one note in a Graph. Nodes are immutable once built and may be
// shared between a graph and the graphs derived from it.
type Node struct {
	id      string
	title   string
	file    string
	tags    map[string]struct{}
	linksTo map[string]struct{}
}

// NewNode builds a node; duplicate tags and links collapse.
func NewNode(id, title, file string, tags, linksTo []string) *Node {
	return &Node{
		id:      id,
		title:   title,
		file:    file,
		tags:    toSet(tags),
		linksTo: toSet(linksTo),
	}
}

// ID returns the note identifier.
func (n *Node) ID() string { return n.id }

// Title returns the display title, possibly empty.
func (n *Node) Title() string { return n.title }

// File returns the source path the note was read from. Diagnostics only.
func (n *Node) File() string { return n.file }

// Tags returns the tag set, sorted.
func (n *Node) Tags() []string { return sortedKeys(n.tags) }

// LinksTo returns the outbound link-target ids, sorted.
func (n *Node) LinksTo() []string { return sortedKeys(n.linksTo) }

// HasTag reports whether the node carries any of candidates.
func (n *Node) HasTag(candidates []string) bool {
	for _, c := range candidates {
		if _, ok := n.tags[c]; ok {
			return true
		}
	}
	return false
}

// HasRegexTag reports whether any tag matches any pattern at its start.
func (n *Node) HasRegexTag(patterns []*regexp.Regexp) bool {
	for tag := range n.tags {
		for _, re := range patterns {
			if loc := re.FindStringIndex(tag); loc != nil && loc[0] == 0 {
				return true
			}
		}
	}
	return false
}

// Links reports whether n points at other. When directed is false a link in
// either direction counts.
func (n *Node) Links(other *Node, directed bool) bool {
	if _, ok := n.linksTo[other.id]; ok {
		return true
	}
	if directed {
		return false
	}
	_, ok := other.linksTo[n.id]
	return ok
}

// IsOrphan reports whether n has no outbound links and no node in others
// links to it.
func (n *Node) IsOrphan(others []*Node) bool {
	if len(n.linksTo) > 0 {
		return false
	}
	for _, o := range others {
		if _, ok := o.linksTo[n.id]; ok {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
