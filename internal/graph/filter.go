package graph

import (
	"fmt"
	"regexp"

	"github.com/starford/zettelgraph/internal/apperr"
)

// FilterTags returns the graph of nodes carrying any of tags. With regex set,
// tags are patterns matched at the start of each tag. With exclude set the
// selection is inverted. An empty tag list is an error, not "match all".
func (g *Graph) FilterTags(tags []string, exclude, regex bool) (*Graph, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("graph: filter tags: %w: empty tag list", apperr.ErrInvalidArgument)
	}

	match := func(n *Node) bool { return n.HasTag(tags) }
	if regex {
		patterns := make([]*regexp.Regexp, 0, len(tags))
		for _, t := range tags {
			re, err := regexp.Compile(t)
			if err != nil {
				return nil, fmt.Errorf("graph: filter tags: %w: %w", apperr.ErrInvalidArgument, err)
			}
			patterns = append(patterns, re)
		}
		match = func(n *Node) bool { return n.HasRegexTag(patterns) }
	}

	return g.derive(func(n *Node) bool { return match(n) != exclude }), nil
}
