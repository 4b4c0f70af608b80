package tree

import "errors"

// Root is the parent reference for top-level nodes.
const Root = "#"

// NodeType is the display type of a node.
type NodeType int

const (
	NodeDefault NodeType = iota
	NodeWinOpen
	NodeWinEphemeral
	NodeWinClosed
	NodeTab
)

func (t NodeType) String() string {
	switch t {
	case NodeWinOpen:
		return "win_open"
	case NodeWinEphemeral:
		return "win_ephemeral"
	case NodeWinClosed:
		return "win_closed"
	case NodeTab:
		return "tab"
	default:
		return "default"
	}
}

// IsWindow reports whether t is one of the window types.
func (t NodeType) IsWindow() bool {
	return t == NodeWinOpen || t == NodeWinEphemeral || t == NodeWinClosed
}

var (
	ErrNotFound       = errors.New("node not found")
	ErrParentNotFound = errors.New("parent node not found")
)

// Ref identifies a node: a node id string or a *Node.
type Ref any

// Node is one entry in the tree.
type Node struct {
	ID       string
	Parent   string
	Children []string
	Text     string
	Icon     string
	Type     NodeType
	Opened   bool
}

// NodeData describes a node to create.
type NodeData struct {
	Text   string
	Opened bool
}

// Tree is the set of tree operations the glue layer relies on.
type Tree interface {
	// GetNode resolves ref to a live node.
	GetNode(ref Ref) (*Node, bool)
	// CreateNode appends a child of parent and returns its id.
	CreateNode(parent Ref, data NodeData) (string, error)
	RenameNode(ref Ref, text string) error
	SetIcon(ref Ref, icon string) error
	SetType(ref Ref, ty NodeType) error
}

// Deleter is implemented by trees that can remove nodes.
type Deleter interface {
	// DeleteNode removes ref and its descendants, returning their ids.
	DeleteNode(ref Ref) ([]string, error)
}

// Walker is implemented by trees that can enumerate children.
type Walker interface {
	// Children returns the child ids of ref in order. Root lists top-level nodes.
	Children(ref Ref) []string
}
