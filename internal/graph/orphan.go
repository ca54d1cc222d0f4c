package graph

// RemoveOrphans returns the graph without nodes that neither link to nor
// are linked from any node of g.
func (g *Graph) RemoveOrphans() *Graph {
	return g.derive(func(n *Node) bool { return !n.IsOrphan(g.nodes) })
}

// Orphans returns the nodes RemoveOrphans would drop, in matrix order.
func (g *Graph) Orphans() []*Node {
	return g.derive(func(n *Node) bool { return n.IsOrphan(g.nodes) }).nodes
}
