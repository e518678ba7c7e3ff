package compile

import "github.com/packerman/pcg/pkg/scene"

// flatScene is the node tree in index-addressable form. Node i is the i-th
// node of a pre-order walk; children holds the child indices of each node.
type flatScene struct {
	nodes    []*scene.Node
	children [][]int
	roots    []int
}

func flatten(s *scene.Scene) flatScene {
	f := flatScene{nodes: s.AllNodes()}
	index := make(map[*scene.Node]int, len(f.nodes))
	for i, n := range f.nodes {
		index[n] = i
	}

	f.children = make([][]int, len(f.nodes))
	for i, n := range f.nodes {
		for _, child := range n.Children {
			f.children[i] = append(f.children[i], index[child])
		}
	}
	for _, root := range s.Roots {
		f.roots = append(f.roots, index[root])
	}
	return f
}
