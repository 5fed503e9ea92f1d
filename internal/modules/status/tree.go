package status

import (
	"github.com/nfrund/remora/internal/module"
)

// TreeNode is one module in a tree snapshot.
type TreeNode struct {
	Name     string     `json:"name"`
	Started  bool       `json:"started"`
	Prefix   string     `json:"prefix,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// Snapshot walks the module tree from root and returns it as plain data.
// Modules not built on a Node have no inspectable state and show up as
// stopped leaves.
func Snapshot(root module.Module) TreeNode {
	node := TreeNode{Name: root.Name()}

	if s, ok := root.(interface{ Started() bool }); ok {
		node.Started = s.Started()
	}
	if c, ok := root.(interface{ Config() module.Config }); ok {
		node.Prefix = c.Config().RouterPrefix
	}
	if p, ok := root.(interface{ Children() []module.Module }); ok {
		for _, child := range p.Children() {
			node.Children = append(node.Children, Snapshot(child))
		}
	}
	return node
}
