package report

// Node is the rendered counterpart of one spec section. The tree of nodes
// always has the same shape as the spec's section tree, whatever happened
// during component execution.
type Node struct {
	Title    string    `json:"title"`
	Desc     string    `json:"desc,omitempty"`
	Artifact *Artifact `json:"artifact,omitempty"`
	Children []*Node   `json:"children,omitempty"`
}

// Walk visits the node and its descendants in declaration order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// CountSections returns the number of nodes in the subtree.
func (n *Node) CountSections() int {
	count := 0
	n.Walk(func(*Node) { count++ })
	return count
}

// CountFailures returns the number of degraded artifacts in the subtree.
func (n *Node) CountFailures() int {
	count := 0
	n.Walk(func(node *Node) {
		if node.Artifact.Failed() {
			count++
		}
	})
	return count
}
