package tree

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
)

// Option configures a MemTree.
type Option func(*MemTree)

// WithIDFunc replaces the node id generator.
func WithIDFunc(fn func() string) Option {
	return func(t *MemTree) {
		t.newID = fn
	}
}

// WithSequentialIDs numbers nodes n1, n2, ... which keeps output stable.
func WithSequentialIDs() Option {
	return func(t *MemTree) {
		n := 0
		t.newID = func() string {
			n++
			return "n" + strconv.Itoa(n)
		}
	}
}

// MemTree is an in-memory Tree. It is not safe for concurrent use.
type MemTree struct {
	nodes map[string]*Node
	root  *Node
	newID func() string
}

// NewMemTree returns an empty tree. Node ids are UUIDs unless overridden.
func NewMemTree(opts ...Option) *MemTree {
	t := &MemTree{
		nodes: make(map[string]*Node),
		root:  &Node{ID: Root, Opened: true},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *MemTree) resolve(ref Ref) *Node {
	switch r := ref.(type) {
	case string:
		if r == Root {
			return t.root
		}
		return t.nodes[r]
	case *Node:
		if r == nil {
			return nil
		}
		if r.ID == Root {
			return t.root
		}
		if n, ok := t.nodes[r.ID]; ok && n == r {
			return n
		}
	}
	return nil
}

// GetNode resolves ref. The root is not returned as a node.
func (t *MemTree) GetNode(ref Ref) (*Node, bool) {
	n := t.resolve(ref)
	if n == nil || n == t.root {
		return nil, false
	}
	return n, true
}

func (t *MemTree) CreateNode(parent Ref, data NodeData) (string, error) {
	p := t.resolve(parent)
	if p == nil {
		return "", fmt.Errorf("create node under %v: %w", parent, ErrParentNotFound)
	}
	id := t.newID()
	if _, exists := t.nodes[id]; exists || id == "" || id == Root {
		return "", fmt.Errorf("create node: unusable id %q", id)
	}
	t.nodes[id] = &Node{ID: id, Parent: p.ID, Text: data.Text, Opened: data.Opened}
	p.Children = append(p.Children, id)
	return id, nil
}

func (t *MemTree) RenameNode(ref Ref, text string) error {
	n, ok := t.GetNode(ref)
	if !ok {
		return ErrNotFound
	}
	n.Text = text
	return nil
}

func (t *MemTree) SetIcon(ref Ref, icon string) error {
	n, ok := t.GetNode(ref)
	if !ok {
		return ErrNotFound
	}
	n.Icon = icon
	return nil
}

func (t *MemTree) SetType(ref Ref, ty NodeType) error {
	n, ok := t.GetNode(ref)
	if !ok {
		return ErrNotFound
	}
	n.Type = ty
	return nil
}

// DeleteNode removes a node and its subtree. Ids are returned parent first.
func (t *MemTree) DeleteNode(ref Ref) ([]string, error) {
	n, ok := t.GetNode(ref)
	if !ok {
		return nil, ErrNotFound
	}
	if p := t.resolve(n.Parent); p != nil {
		p.Children = slices.DeleteFunc(p.Children, func(id string) bool { return id == n.ID })
	}
	var removed []string
	var drop func(*Node)
	drop = func(n *Node) {
		removed = append(removed, n.ID)
		delete(t.nodes, n.ID)
		for _, c := range n.Children {
			if child := t.nodes[c]; child != nil {
				drop(child)
			}
		}
	}
	drop(n)
	return removed, nil
}

func (t *MemTree) Children(ref Ref) []string {
	n := t.resolve(ref)
	if n == nil {
		return nil
	}
	return slices.Clone(n.Children)
}

// Len returns the number of nodes, excluding the root.
func (t *MemTree) Len() int { return len(t.nodes) }
