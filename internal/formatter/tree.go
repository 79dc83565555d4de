package formatter

import (
	"path"
	"sort"
	"strings"

	"github.com/jadenpxrk/remix/internal/types"
)

// Node represents an entry in the directory tree.
type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Size     uint64
	Children []*Node
}

// BuildTree constructs a tree from the packed files. Intermediate
// directories are created as needed; rootName labels the root node.
func BuildTree(files []types.TransformedFile, rootName string) *Node {
	root := &Node{Name: rootName, Path: ".", IsDir: true}
	dirs := map[string]*Node{".": root}

	var ensureDir func(p string) *Node
	ensureDir = func(p string) *Node {
		if n, ok := dirs[p]; ok {
			return n
		}
		parent := ensureDir(path.Dir(p))
		n := &Node{Name: path.Base(p), Path: p, IsDir: true}
		parent.Children = append(parent.Children, n)
		dirs[p] = n
		return n
	}

	for _, f := range files {
		parent := ensureDir(path.Dir(f.RelativePath))
		parent.Children = append(parent.Children, &Node{
			Name: path.Base(f.RelativePath),
			Path: f.RelativePath,
			Size: f.Size,
		})
	}

	sortChildren(root)
	return root
}

// sortChildren orders directories before files, then by name.
func sortChildren(node *Node) {
	if !node.IsDir || len(node.Children) == 0 {
		return
	}

	sort.Slice(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})

	for _, child := range node.Children {
		sortChildren(child)
	}
}

// String renders the tree with box-drawing connectors.
func (n *Node) String() string {
	var builder strings.Builder
	builder.WriteString(n.Name)
	if n.IsDir && n.Path != "." {
		builder.WriteString("/")
	}
	builder.WriteString("\n")
	printNode(&builder, n.Children, "")
	return builder.String()
}

func printNode(builder *strings.Builder, children []*Node, prefix string) {
	for i, node := range children {
		connector := "├── "
		newPrefix := prefix + "│   "
		if i == len(children)-1 {
			connector = "└── "
			newPrefix = prefix + "    "
		}

		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(node.Name)
		if node.IsDir {
			builder.WriteString("/")
		}
		builder.WriteString("\n")

		if node.IsDir && len(node.Children) > 0 {
			printNode(builder, node.Children, newPrefix)
		}
	}
}
