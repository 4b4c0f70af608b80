// Package glue keeps tree nodes and model values in step.
//
// Except during a call into this package, every node in the tree has exactly
// one value in the model and every value has exactly one node. Glue is the
// only code that should create or rebind that correspondence. It is not safe
// for concurrent use.
package glue

import (
	"errors"
	"fmt"
	"log"

	"github.com/asheshgoplani/ferndeck/internal/browser"
	"github.com/asheshgoplani/ferndeck/internal/logging"
	"github.com/asheshgoplani/ferndeck/internal/model"
	"github.com/asheshgoplani/ferndeck/internal/tree"
)

// DefaultPageIcon is the icon for tabs without a favicon.
const DefaultPageIcon = "fff-page"

// Placeholder node texts, replaced once the value exists.
const (
	windowPlaceholder = "Window"
	tabPlaceholder    = "Tab"
)

// Glue mediates between a Tree and a model Store.
type Glue struct {
	tree     tree.Tree
	model    *model.Store
	log      *log.Logger
	pageIcon string
}

// Option configures a Glue.
type Option func(*Glue)

// WithLogger sets the logger used for refused operations.
func WithLogger(l *log.Logger) Option {
	return func(g *Glue) {
		g.log = l
	}
}

// WithPageIcon sets the icon used for tabs without a favicon.
func WithPageIcon(icon string) Option {
	return func(g *Glue) {
		if icon != "" {
			g.pageIcon = icon
		}
	}
}

// New returns a Glue over t and m.
func New(t tree.Tree, m *model.Store, opts ...Option) *Glue {
	g := &Glue{
		tree:     t,
		model:    m,
		log:      logging.New("glue"),
		pageIcon: DefaultPageIcon,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tree returns the tree Glue writes to.
func (g *Glue) Tree() tree.Tree { return g.tree }

// Model returns the store Glue writes to.
func (g *Glue) Model() *model.Store { return g.model }

// WindowItem is a fern node and its value.
type WindowItem struct {
	NodeID string
	Val    *model.WindowValue
}

// TabItem is a tab node and its value.
type TabItem struct {
	NodeID string
	Val    *model.TabValue
}

// GetNodeVal finds a node's value regardless of kind. A string ref is taken
// as a node id; anything else is resolved through the tree first. The entry
// type is model.ItemNone if nothing is mapped.
func (g *Glue) GetNodeVal(ref tree.Ref) model.Entry {
	if id, ok := ref.(string); ok {
		return g.model.GetNodeVal(id)
	}
	n, ok := g.tree.GetNode(ref)
	if !ok {
		return model.Entry{}
	}
	return g.model.GetNodeVal(n.ID)
}

// BindTabToTree maps an existing node to an open browser tab and returns the
// node id. It refuses a tab that is already mapped.
func (g *Glue) BindTabToTree(tab *browser.Tab, ref tree.Ref) (string, error) {
	if tab == nil {
		return "", fmt.Errorf("bind tab: %w", ErrNoEntity)
	}
	if tab.ID < 0 {
		return "", fmt.Errorf("bind tab %d: invalid id: %w", tab.ID, ErrNoEntity)
	}
	tabID := model.BrowserID(tab.ID)
	if existing := g.model.ByTabID(tabID); existing != nil {
		g.log.Printf("refusing to map node for existing tab %d, already at node %s", tab.ID, existing.NodeID)
		return "", fmt.Errorf("bind tab %d (node %s): %w", tab.ID, existing.NodeID, ErrDuplicateBinding)
	}

	node, ok := g.tree.GetNode(ref)
	if !ok {
		return "", fmt.Errorf("bind tab %d: %w", tab.ID, ErrNodeNotFound)
	}
	switch e := g.model.GetNodeVal(node.ID); e.Type {
	case model.ItemWindow:
		return "", fmt.Errorf("bind tab %d to node %s: %w", tab.ID, node.ID, ErrWrongKind)
	case model.ItemTab:
		if old := e.Tab.TabID; old != model.NoBrowserID {
			g.log.Printf("node %s: displacing tab %d with tab %d", node.ID, old, tab.ID)
		}
	}

	if _, err := g.model.AddTab(tabFields(node.ID, tab)); err != nil {
		return "", fmt.Errorf("bind tab %d: %w", tab.ID, err)
	}
	g.bestEffort(g.tree.RenameNode(node.ID, escape(tab.Title)))
	g.bestEffort(g.tree.SetIcon(node.ID, g.iconFor(tab)))

	return node.ID, nil
}

// BindWindowToTree maps an existing fern to an open browser window and
// returns the node id. It refuses a window that is already mapped. A fern
// that already has a value keeps its title and keep flag; otherwise the
// window is bound as kept.
func (g *Glue) BindWindowToTree(win *browser.Window, ref tree.Ref) (string, error) {
	if win == nil {
		return "", fmt.Errorf("bind window: %w", ErrNoEntity)
	}
	if win.ID < 0 {
		return "", fmt.Errorf("bind window %d: invalid id: %w", win.ID, ErrNoEntity)
	}
	winID := model.BrowserID(win.ID)
	if existing := g.model.ByWinID(winID); existing != nil {
		g.log.Printf("refusing to map node for existing window %d, already at node %s", win.ID, existing.NodeID)
		return "", fmt.Errorf("bind window %d (node %s): %w", win.ID, existing.NodeID, ErrDuplicateBinding)
	}

	node, ok := g.tree.GetNode(ref)
	if !ok {
		return "", fmt.Errorf("bind window %d: %w", win.ID, ErrNodeNotFound)
	}

	fields := model.WindowValue{
		WinID:  winID,
		NodeID: node.ID,
		Window: win,
		IsOpen: true,
		Keep:   model.WinKeep,
	}
	switch e := g.model.GetNodeVal(node.ID); e.Type {
	case model.ItemTab:
		return "", fmt.Errorf("bind window %d to node %s: %w", win.ID, node.ID, ErrWrongKind)
	case model.ItemWindow:
		fields.RawTitle = e.Window.RawTitle
		fields.Keep = e.Window.Keep
		// The node's previous window loses its tabs along with the node.
		if old := e.Window.WinID; old != model.NoBrowserID {
			g.log.Printf("node %s: displacing window %d with window %d", node.ID, old, win.ID)
			for _, tabNode := range g.tabNodes(e.Window) {
				g.model.Detach(tabNode)
			}
		}
	}

	val, err := g.model.AddWindow(fields)
	if err != nil {
		return "", fmt.Errorf("bind window %d: %w", win.ID, err)
	}
	g.bestEffort(g.tree.SetType(node.ID, windowType(true, val.Keep)))
	g.bestEffort(g.tree.RenameNode(node.ID, GetSafeText(val)))

	return node.ID, nil
}

// MakeItemForWindow creates a fern and its value. A nil win makes a closed
// fern, which is always kept; otherwise keep picks an open or ephemeral fern.
// Tabs are not populated.
func (g *Glue) MakeItemForWindow(win *browser.Window, keep bool) (WindowItem, error) {
	if win == nil {
		keep = true
	}
	k := model.KeepFrom(keep)

	winID := model.NoBrowserID
	if win != nil {
		if win.ID < 0 {
			return WindowItem{}, fmt.Errorf("make window item %d: invalid id: %w", win.ID, ErrNoEntity)
		}
		winID = model.BrowserID(win.ID)
		if existing := g.model.ByWinID(winID); existing != nil {
			g.log.Printf("refusing to create fern for existing window %d, already at node %s", win.ID, existing.NodeID)
			return WindowItem{}, fmt.Errorf("make window item %d: %w", win.ID, ErrDuplicateBinding)
		}
	}

	nodeID, err := g.tree.CreateNode(tree.Root, tree.NodeData{Text: windowPlaceholder, Opened: win != nil})
	if err != nil {
		return WindowItem{}, fmt.Errorf("make window item: %w: %w", ErrCreateFailed, err)
	}
	g.bestEffort(g.tree.SetType(nodeID, windowType(win != nil, k)))

	g.log.Printf("adding node %s for window %s", nodeID, describeWinID(winID))
	val, err := g.model.AddWindow(model.WindowValue{
		WinID:  winID,
		NodeID: nodeID,
		Window: win,
		IsOpen: win != nil,
		Keep:   k,
	})
	if err != nil {
		g.discard(nodeID)
		return WindowItem{}, fmt.Errorf("make window item: %w", err)
	}

	g.bestEffort(g.tree.RenameNode(nodeID, GetSafeText(val)))
	return WindowItem{NodeID: nodeID, Val: val}, nil
}

// MakeItemForTab creates a tab node under parentID and its value. With a nil
// tab the value is built from rawURL and rawTitle and marked closed.
func (g *Glue) MakeItemForTab(parentID string, tab *browser.Tab, rawURL, rawTitle string) (TabItem, error) {
	if parentID == "" {
		return TabItem{}, fmt.Errorf("make tab item: %w", ErrNoParent)
	}
	if tab != nil {
		if tab.ID < 0 {
			return TabItem{}, fmt.Errorf("make tab item %d: invalid id: %w", tab.ID, ErrNoEntity)
		}
		if existing := g.model.ByTabID(model.BrowserID(tab.ID)); existing != nil {
			g.log.Printf("refusing to create node for existing tab %d, already at node %s", tab.ID, existing.NodeID)
			return TabItem{}, fmt.Errorf("make tab item %d: %w", tab.ID, ErrDuplicateBinding)
		}
	}

	nodeID, err := g.tree.CreateNode(parentID, tree.NodeData{Text: tabPlaceholder, Opened: tab != nil})
	if err != nil {
		return TabItem{}, fmt.Errorf("make tab item under %s: %w: %w", parentID, ErrCreateFailed, err)
	}
	g.bestEffort(g.tree.SetType(nodeID, tree.NodeTab))

	fields := model.TabValue{
		TabID:    model.NoBrowserID,
		NodeID:   nodeID,
		WinID:    model.NoBrowserID,
		Index:    model.NoIndex,
		RawURL:   rawURL,
		RawTitle: rawTitle,
	}
	if tab != nil {
		fields = tabFields(nodeID, tab)
	}
	val, err := g.model.AddTab(fields)
	if err != nil {
		g.discard(nodeID)
		return TabItem{}, fmt.Errorf("make tab item: %w", err)
	}

	g.bestEffort(g.tree.RenameNode(nodeID, GetSafeText(val)))
	g.bestEffort(g.tree.SetIcon(nodeID, g.iconFor(tab)))
	return TabItem{NodeID: nodeID, Val: val}, nil
}

// RenameWindow sets a fern's raw title; nil restores the default name.
func (g *Glue) RenameWindow(ref tree.Ref, title *string) error {
	e := g.GetNodeVal(ref)
	switch e.Type {
	case model.ItemNone:
		return fmt.Errorf("rename window: %w", ErrNodeNotFound)
	case model.ItemTab:
		return fmt.Errorf("rename window %s: %w", e.Tab.NodeID, ErrWrongKind)
	}
	if title != nil {
		t := *title
		title = &t
	}
	e.Window.RawTitle = title
	return g.tree.RenameNode(e.Window.NodeID, GetSafeText(e.Window))
}

// UnbindWindow handles a browser window going away. A kept fern becomes a
// closed fern whose values no longer reference browser ids; an unkept fern
// is removed with its tabs. It returns the fern's node id.
func (g *Glue) UnbindWindow(winID model.BrowserID) (string, error) {
	val := g.model.ByWinID(winID)
	if val == nil {
		return "", fmt.Errorf("unbind window %d: %w", winID, ErrNotBound)
	}
	nodeID := val.NodeID

	if !val.Kept() {
		if err := g.RemoveItem(nodeID); err != nil {
			return "", fmt.Errorf("unbind window %d: %w", winID, err)
		}
		return nodeID, nil
	}

	for _, tabNode := range g.tabNodes(val) {
		g.model.Detach(tabNode)
	}
	g.model.Detach(nodeID)
	g.bestEffort(g.tree.SetType(nodeID, tree.NodeWinClosed))
	g.bestEffort(g.tree.RenameNode(nodeID, GetSafeText(val)))
	return nodeID, nil
}

// RemoveItem deletes a node, its descendants and all of their values.
func (g *Glue) RemoveItem(ref tree.Ref) error {
	d, ok := g.tree.(tree.Deleter)
	if !ok {
		return fmt.Errorf("remove item: %w", ErrUnsupported)
	}
	node, ok := g.tree.GetNode(ref)
	if !ok {
		return fmt.Errorf("remove item: %w", ErrNodeNotFound)
	}
	removed, err := d.DeleteNode(node.ID)
	if err != nil {
		return fmt.Errorf("remove item %s: %w", node.ID, err)
	}
	for _, id := range removed {
		g.model.Remove(id)
	}
	return nil
}

// Check verifies the node/value correspondence. Every value must sit on a
// live node; when the tree is a Walker, every node must also have a value.
func (g *Glue) Check() error {
	var errs []error
	for _, id := range g.model.NodeIDs() {
		if _, ok := g.tree.GetNode(id); !ok {
			errs = append(errs, fmt.Errorf("value for missing node %s", id))
		}
	}

	if w, ok := g.tree.(tree.Walker); ok {
		nodes := 0
		var walk func(string)
		walk = func(id string) {
			for _, c := range w.Children(id) {
				nodes++
				if !g.model.GetNodeVal(c).Found() {
					errs = append(errs, fmt.Errorf("node %s has no value", c))
				}
				walk(c)
			}
		}
		walk(tree.Root)
		if nodes != g.model.Len() {
			errs = append(errs, fmt.Errorf("%d nodes but %d values", nodes, g.model.Len()))
		}
	}
	return errors.Join(errs...)
}

// tabNodes lists the tab node ids that belong to a fern.
func (g *Glue) tabNodes(val *model.WindowValue) []string {
	seen := make(map[string]bool)
	var ids []string
	if w, ok := g.tree.(tree.Walker); ok {
		for _, c := range w.Children(val.NodeID) {
			if g.model.GetNodeVal(c).Type == model.ItemTab && !seen[c] {
				seen[c] = true
				ids = append(ids, c)
			}
		}
	}
	for _, t := range g.model.TabsInWindow(val.WinID) {
		if !seen[t.NodeID] {
			seen[t.NodeID] = true
			ids = append(ids, t.NodeID)
		}
	}
	return ids
}

// discard removes a node whose value could not be recorded.
func (g *Glue) discard(nodeID string) {
	d, ok := g.tree.(tree.Deleter)
	if !ok {
		g.log.Printf("node %s left without a value: tree cannot delete nodes", nodeID)
		return
	}
	if _, err := d.DeleteNode(nodeID); err != nil {
		g.log.Printf("discard node %s: %v", nodeID, err)
	}
}

func (g *Glue) bestEffort(err error) {
	if err != nil {
		g.log.Printf("tree update failed: %v", err)
	}
}

func (g *Glue) iconFor(tab *browser.Tab) string {
	if tab != nil && tab.FavIconURL != "" {
		return encodeURI(tab.FavIconURL)
	}
	return g.pageIcon
}

func tabFields(nodeID string, tab *browser.Tab) model.TabValue {
	return model.TabValue{
		TabID:    model.BrowserID(tab.ID),
		NodeID:   nodeID,
		WinID:    model.BrowserID(tab.WindowID),
		Index:    tab.Index,
		Tab:      tab,
		RawURL:   tab.URL,
		RawTitle: tab.Title,
		IsOpen:   true,
	}
}

func windowType(open bool, keep model.Keep) tree.NodeType {
	switch {
	case !open:
		return tree.NodeWinClosed
	case keep.Kept():
		return tree.NodeWinOpen
	default:
		return tree.NodeWinEphemeral
	}
}

func describeWinID(id model.BrowserID) string {
	if id == model.NoBrowserID {
		return "none"
	}
	return fmt.Sprint(int(id))
}
