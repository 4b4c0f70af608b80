package glue

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asheshgoplani/ferndeck/internal/browser"
	"github.com/asheshgoplani/ferndeck/internal/model"
	"github.com/asheshgoplani/ferndeck/internal/tree"
)

func newTestGlue(t *testing.T) (*Glue, *tree.MemTree, *model.Store) {
	t.Helper()
	tr := tree.NewMemTree(tree.WithSequentialIDs())
	m := model.NewStore()
	return New(tr, m), tr, m
}

// failingTree refuses to create nodes.
type failingTree struct {
	*tree.MemTree
}

func (failingTree) CreateNode(tree.Ref, tree.NodeData) (string, error) {
	return "", errors.New("tree is read-only")
}

// plainTree exposes only the required capabilities.
type plainTree struct {
	tree.Tree
}

func liveTab(id, winID, index int) *browser.Tab {
	return &browser.Tab{
		ID:       id,
		WindowID: winID,
		Index:    index,
		URL:      "https://example.com/" + string(rune('a'+index)),
		Title:    "Example",
	}
}

func TestGetNodeValResolvesRefs(t *testing.T) {
	g, tr, _ := newTestGlue(t)
	item, err := g.MakeItemForWindow(nil, false)
	require.NoError(t, err)

	byID := g.GetNodeVal(item.NodeID)
	assert.Equal(t, model.ItemWindow, byID.Type)
	assert.Same(t, item.Val, byID.Window)

	node, ok := tr.GetNode(item.NodeID)
	require.True(t, ok)
	byNode := g.GetNodeVal(node)
	assert.Same(t, item.Val, byNode.Window)

	assert.Equal(t, model.ItemNone, g.GetNodeVal("missing").Type)
	assert.Equal(t, model.ItemNone, g.GetNodeVal(&tree.Node{ID: "missing"}).Type)
	assert.Equal(t, model.ItemNone, g.GetNodeVal(nil).Type)
}

func TestMakeItemForWindowTypes(t *testing.T) {
	tests := []struct {
		name     string
		win      *browser.Window
		keep     bool
		wantType tree.NodeType
		wantKeep model.Keep
		wantText string
	}{
		{"open kept", &browser.Window{ID: 1}, true, tree.NodeWinOpen, model.WinKeep, "Saved tabs"},
		{"open ephemeral", &browser.Window{ID: 2}, false, tree.NodeWinEphemeral, model.WinNoKeep, "Unsaved"},
		{"closed forces keep", nil, false, tree.NodeWinClosed, model.WinKeep, "Saved tabs"},
		{"closed kept", nil, true, tree.NodeWinClosed, model.WinKeep, "Saved tabs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, tr, _ := newTestGlue(t)

			item, err := g.MakeItemForWindow(tt.win, tt.keep)
			require.NoError(t, err)

			node, ok := tr.GetNode(item.NodeID)
			require.True(t, ok)
			assert.Equal(t, tt.wantType, node.Type)
			assert.Equal(t, tt.wantText, node.Text)
			assert.Equal(t, tt.win != nil, node.Opened)
			assert.Equal(t, tree.Root, node.Parent)

			assert.Equal(t, item.NodeID, item.Val.NodeID)
			assert.Equal(t, tt.wantKeep, item.Val.Keep)
			assert.Equal(t, tt.win != nil, item.Val.IsOpen)
			assert.Nil(t, item.Val.RawTitle)
			if tt.win == nil {
				assert.Equal(t, model.NoBrowserID, item.Val.WinID)
			} else {
				assert.Equal(t, model.BrowserID(tt.win.ID), item.Val.WinID)
				assert.Same(t, tt.win, item.Val.Window)
			}
		})
	}
}

func TestMakeItemForWindowCreateFailureAddsNothing(t *testing.T) {
	m := model.NewStore()
	g := New(failingTree{tree.NewMemTree()}, m)

	item, err := g.MakeItemForWindow(&browser.Window{ID: 1}, true)
	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.Empty(t, item.NodeID)
	assert.Nil(t, item.Val)
	assert.Equal(t, 0, m.Len())
}

func TestMakeItemForWindowRefusesBoundWindow(t *testing.T) {
	g, tr, m := newTestGlue(t)
	win := &browser.Window{ID: 3}
	_, err := g.MakeItemForWindow(win, true)
	require.NoError(t, err)

	_, err = g.MakeItemForWindow(win, true)
	assert.ErrorIs(t, err, ErrDuplicateBinding)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, tr.Len())
}

func TestMakeItemForTabRequiresParent(t *testing.T) {
	g, tr, m := newTestGlue(t)

	_, err := g.MakeItemForTab("", liveTab(1, 1, 0), "", "")
	assert.ErrorIs(t, err, ErrNoParent)
	assert.Equal(t, 0, tr.Len())
	assert.Equal(t, 0, m.Len())
}

func TestMakeItemForTabUnknownParent(t *testing.T) {
	g, _, m := newTestGlue(t)

	_, err := g.MakeItemForTab("n99", nil, "https://example.com", "Example")
	assert.ErrorIs(t, err, ErrCreateFailed)
	assert.ErrorIs(t, err, tree.ErrParentNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestMakeItemForTabLive(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(&browser.Window{ID: 10}, true)
	require.NoError(t, err)

	tab := liveTab(100, 10, 0)
	tab.Title = "<Docs>"
	tab.FavIconURL = "https://example.com/icon 1.png"
	item, err := g.MakeItemForTab(fern.NodeID, tab, "ignored", "ignored")
	require.NoError(t, err)

	node, ok := tr.GetNode(item.NodeID)
	require.True(t, ok)
	assert.Equal(t, fern.NodeID, node.Parent)
	assert.Equal(t, tree.NodeTab, node.Type)
	assert.Equal(t, "&lt;Docs&gt;", node.Text)
	assert.Equal(t, "https://example.com/icon%201.png", node.Icon)

	val := item.Val
	assert.Equal(t, model.BrowserID(100), val.TabID)
	assert.Equal(t, model.BrowserID(10), val.WinID)
	assert.Equal(t, 0, val.Index)
	assert.Equal(t, tab.URL, val.RawURL)
	assert.Equal(t, "<Docs>", val.RawTitle)
	assert.True(t, val.IsOpen)
	assert.Same(t, val, m.ByTabID(100))
}

func TestMakeItemForTabFallback(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)

	item, err := g.MakeItemForTab(fern.NodeID, nil, "https://example.org", "Saved page")
	require.NoError(t, err)

	val := item.Val
	assert.Equal(t, model.NoBrowserID, val.TabID)
	assert.Equal(t, model.NoBrowserID, val.WinID)
	assert.Equal(t, model.NoIndex, val.Index)
	assert.Equal(t, "https://example.org", val.RawURL)
	assert.Equal(t, "Saved page", val.RawTitle)
	assert.False(t, val.IsOpen)
	assert.Nil(t, val.Tab)

	node, _ := tr.GetNode(item.NodeID)
	assert.Equal(t, DefaultPageIcon, node.Icon)
	assert.Equal(t, "Saved page", node.Text)
	assert.Equal(t, 2, m.Len())
}

func TestBindTabToTree(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	saved, err := g.MakeItemForTab(fern.NodeID, nil, "https://example.com/a", "A")
	require.NoError(t, err)

	tab := liveTab(7, 2, 0)
	tab.Title = "A & B"
	nodeID, err := g.BindTabToTree(tab, saved.NodeID)
	require.NoError(t, err)
	assert.Equal(t, saved.NodeID, nodeID)

	val := m.ByTabID(7)
	require.NotNil(t, val)
	assert.Same(t, saved.Val, val, "existing value is updated in place")
	assert.True(t, val.IsOpen)
	assert.Equal(t, model.BrowserID(2), val.WinID)
	assert.Equal(t, "A & B", val.RawTitle)

	node, _ := tr.GetNode(nodeID)
	assert.Equal(t, "A &amp; B", node.Text)
	assert.Equal(t, DefaultPageIcon, node.Icon)
	assert.Equal(t, 2, m.Len())
}

func TestBindTabToTreeRefusesDuplicate(t *testing.T) {
	var logs bytes.Buffer
	tr := tree.NewMemTree(tree.WithSequentialIDs())
	m := model.NewStore()
	g := New(tr, m, WithLogger(log.New(&logs, "", 0)))

	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	first, err := g.MakeItemForTab(fern.NodeID, nil, "u1", "t1")
	require.NoError(t, err)
	second, err := g.MakeItemForTab(fern.NodeID, nil, "u2", "t2")
	require.NoError(t, err)

	tab := liveTab(5, 1, 0)
	_, err = g.BindTabToTree(tab, first.NodeID)
	require.NoError(t, err)
	before := m.Len()

	nodeID, err := g.BindTabToTree(tab, second.NodeID)
	assert.ErrorIs(t, err, ErrDuplicateBinding)
	assert.Empty(t, nodeID)
	assert.Equal(t, before, m.Len())
	assert.Equal(t, first.NodeID, m.ByTabID(5).NodeID)
	assert.False(t, second.Val.IsOpen, "refused bind must not touch the target")
	assert.Contains(t, logs.String(), "refusing to map node for existing tab 5")
}

func TestBindRefusesInvalidBrowserIDs(t *testing.T) {
	g, _, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	a, err := g.MakeItemForTab(fern.NodeID, nil, "u1", "t1")
	require.NoError(t, err)
	b, err := g.MakeItemForTab(fern.NodeID, nil, "u2", "t2")
	require.NoError(t, err)
	before := m.Len()

	_, err = g.BindTabToTree(&browser.Tab{ID: -1}, a.NodeID)
	assert.ErrorIs(t, err, ErrNoEntity)
	_, err = g.BindTabToTree(&browser.Tab{ID: -1}, b.NodeID)
	assert.ErrorIs(t, err, ErrNoEntity)
	assert.False(t, a.Val.IsOpen)
	assert.False(t, b.Val.IsOpen)

	_, err = g.BindWindowToTree(&browser.Window{ID: -1}, fern.NodeID)
	assert.ErrorIs(t, err, ErrNoEntity)
	assert.False(t, fern.Val.IsOpen)

	_, err = g.MakeItemForWindow(&browser.Window{ID: -1}, true)
	assert.ErrorIs(t, err, ErrNoEntity)
	_, err = g.MakeItemForTab(fern.NodeID, &browser.Tab{ID: -7}, "", "")
	assert.ErrorIs(t, err, ErrNoEntity)

	assert.Equal(t, before, m.Len())
	require.NoError(t, g.Check())
}

func TestBindTabToTreeDisplacesBoundTab(t *testing.T) {
	var logs bytes.Buffer
	g := New(tree.NewMemTree(tree.WithSequentialIDs()), model.NewStore(), WithLogger(log.New(&logs, "", 0)))
	m := g.Model()

	fern, err := g.MakeItemForWindow(&browser.Window{ID: 1}, true)
	require.NoError(t, err)
	item, err := g.MakeItemForTab(fern.NodeID, liveTab(5, 1, 0), "", "")
	require.NoError(t, err)

	nodeID, err := g.BindTabToTree(liveTab(6, 1, 0), item.NodeID)
	require.NoError(t, err)
	assert.Equal(t, item.NodeID, nodeID)
	assert.Nil(t, m.ByTabID(5))
	assert.Equal(t, item.NodeID, m.ByTabID(6).NodeID)
	assert.Contains(t, logs.String(), "displacing tab 5 with tab 6")
}

func TestBindTabToTreeUnresolvedNode(t *testing.T) {
	g, _, m := newTestGlue(t)

	_, err := g.BindTabToTree(liveTab(1, 1, 0), "nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Equal(t, 0, m.Len())

	_, err = g.BindTabToTree(nil, "nope")
	assert.ErrorIs(t, err, ErrNoEntity)
}

func TestBindTabToTreeRefusesWindowNode(t *testing.T) {
	g, _, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)

	_, err = g.BindTabToTree(liveTab(1, 1, 0), fern.NodeID)
	assert.ErrorIs(t, err, ErrWrongKind)
	assert.Nil(t, m.ByTabID(1))
}

func TestBindWindowToTreeRestoresSavedFern(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	require.NoError(t, g.RenameWindow(fern.NodeID, strPtr("Research")))

	win := &browser.Window{ID: 44}
	nodeID, err := g.BindWindowToTree(win, fern.NodeID)
	require.NoError(t, err)
	assert.Equal(t, fern.NodeID, nodeID)

	val := m.ByWinID(44)
	require.NotNil(t, val)
	assert.Same(t, fern.Val, val)
	assert.True(t, val.IsOpen)
	assert.Equal(t, model.WinKeep, val.Keep)
	require.NotNil(t, val.RawTitle)
	assert.Equal(t, "Research", *val.RawTitle)

	node, _ := tr.GetNode(nodeID)
	assert.Equal(t, tree.NodeWinOpen, node.Type)
	assert.Equal(t, "Research", node.Text)
	assert.Equal(t, 1, m.Len())
}

func TestBindWindowToTreeRefusals(t *testing.T) {
	g, tr, m := newTestGlue(t)
	win := &browser.Window{ID: 1}
	fern, err := g.MakeItemForWindow(win, false)
	require.NoError(t, err)
	other, err := tr.CreateNode(tree.Root, tree.NodeData{})
	require.NoError(t, err)

	_, err = g.BindWindowToTree(win, other)
	assert.ErrorIs(t, err, ErrDuplicateBinding)
	assert.Equal(t, fern.NodeID, m.ByWinID(1).NodeID)

	_, err = g.BindWindowToTree(&browser.Window{ID: 2}, "nope")
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = g.BindWindowToTree(nil, other)
	assert.ErrorIs(t, err, ErrNoEntity)

	tab, err := g.MakeItemForTab(fern.NodeID, nil, "u", "t")
	require.NoError(t, err)
	_, err = g.BindWindowToTree(&browser.Window{ID: 3}, tab.NodeID)
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestBindWindowToTreeDisplacesBoundWindow(t *testing.T) {
	var logs bytes.Buffer
	g := New(tree.NewMemTree(tree.WithSequentialIDs()), model.NewStore(), WithLogger(log.New(&logs, "", 0)))
	m := g.Model()

	fern, err := g.MakeItemForWindow(&browser.Window{ID: 1}, true)
	require.NoError(t, err)
	tab, err := g.MakeItemForTab(fern.NodeID, liveTab(11, 1, 0), "", "")
	require.NoError(t, err)

	nodeID, err := g.BindWindowToTree(&browser.Window{ID: 2}, fern.NodeID)
	require.NoError(t, err)
	assert.Equal(t, fern.NodeID, nodeID)
	assert.Nil(t, m.ByWinID(1))
	assert.Equal(t, fern.NodeID, m.ByWinID(2).NodeID)
	assert.Contains(t, logs.String(), "displacing window 1 with window 2")

	// The old window's tabs no longer claim it.
	assert.Nil(t, m.ByTabID(11))
	assert.Empty(t, m.TabsInWindow(1))
	assert.Equal(t, model.NoBrowserID, tab.Val.WinID)
	assert.False(t, tab.Val.IsOpen)

	_, err = g.UnbindWindow(1)
	assert.ErrorIs(t, err, ErrNotBound)
	require.NoError(t, g.Check())
}

func TestBindWindowToTreeBareNode(t *testing.T) {
	g, tr, m := newTestGlue(t)
	nodeID, err := tr.CreateNode(tree.Root, tree.NodeData{Text: "Window"})
	require.NoError(t, err)

	got, err := g.BindWindowToTree(&browser.Window{ID: 8}, nodeID)
	require.NoError(t, err)
	assert.Equal(t, nodeID, got)

	val := m.ByWinID(8)
	require.NotNil(t, val)
	assert.True(t, val.IsOpen)
	assert.Equal(t, model.WinKeep, val.Keep)
	assert.Nil(t, val.RawTitle)
	require.NoError(t, g.Check())
}

func TestRenameWindow(t *testing.T) {
	g, tr, _ := newTestGlue(t)
	fern, err := g.MakeItemForWindow(&browser.Window{ID: 1}, false)
	require.NoError(t, err)

	require.NoError(t, g.RenameWindow(fern.NodeID, strPtr("<Work>")))
	node, _ := tr.GetNode(fern.NodeID)
	assert.Equal(t, "&lt;Work&gt;", node.Text)

	require.NoError(t, g.RenameWindow(fern.NodeID, nil))
	assert.Equal(t, "Unsaved", node.Text)

	tab, err := g.MakeItemForTab(fern.NodeID, nil, "u", "t")
	require.NoError(t, err)
	assert.ErrorIs(t, g.RenameWindow(tab.NodeID, strPtr("x")), ErrWrongKind)
	assert.ErrorIs(t, g.RenameWindow("nope", strPtr("x")), ErrNodeNotFound)
}

func TestUnbindKeptWindowClosesFern(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(&browser.Window{ID: 1}, true)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := g.MakeItemForTab(fern.NodeID, liveTab(10+i, 1, i), "", "")
		require.NoError(t, err)
	}

	nodeID, err := g.UnbindWindow(1)
	require.NoError(t, err)
	assert.Equal(t, fern.NodeID, nodeID)

	assert.Nil(t, m.ByWinID(1))
	assert.Empty(t, m.TabsInWindow(1))
	assert.False(t, fern.Val.IsOpen)
	assert.Equal(t, model.NoBrowserID, fern.Val.WinID)
	assert.Equal(t, 4, m.Len())

	node, _ := tr.GetNode(nodeID)
	assert.Equal(t, tree.NodeWinClosed, node.Type)
	for _, c := range tr.Children(nodeID) {
		val := m.GetNodeVal(c).Tab
		require.NotNil(t, val)
		assert.False(t, val.IsOpen)
		assert.Equal(t, model.NoBrowserID, val.TabID)
	}
	require.NoError(t, g.Check())

	// The closed fern can be bound again.
	_, err = g.BindWindowToTree(&browser.Window{ID: 2}, nodeID)
	require.NoError(t, err)
}

func TestUnbindEphemeralWindowRemovesFern(t *testing.T) {
	g, tr, m := newTestGlue(t)
	fern, err := g.MakeItemForWindow(&browser.Window{ID: 1}, false)
	require.NoError(t, err)
	_, err = g.MakeItemForTab(fern.NodeID, liveTab(10, 1, 0), "", "")
	require.NoError(t, err)

	_, err = g.UnbindWindow(1)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 0, tr.Len())

	_, err = g.UnbindWindow(1)
	assert.ErrorIs(t, err, ErrNotBound)
}

func TestRemoveItem(t *testing.T) {
	g, tr, m := newTestGlue(t)
	keep, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	drop, err := g.MakeItemForWindow(&browser.Window{ID: 4}, true)
	require.NoError(t, err)
	_, err = g.MakeItemForTab(drop.NodeID, liveTab(40, 4, 0), "", "")
	require.NoError(t, err)

	require.NoError(t, g.RemoveItem(drop.NodeID))
	assert.Equal(t, 1, m.Len())
	assert.Nil(t, m.ByTabID(40))
	assert.Equal(t, []string{keep.NodeID}, tr.Children(tree.Root))

	assert.ErrorIs(t, g.RemoveItem(drop.NodeID), ErrNodeNotFound)
	require.NoError(t, g.Check())
}

func TestRemoveItemNeedsDeleter(t *testing.T) {
	g := New(plainTree{tree.NewMemTree()}, model.NewStore())
	item, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)

	assert.ErrorIs(t, g.RemoveItem(item.NodeID), ErrUnsupported)
}

func TestCheckReportsOrphans(t *testing.T) {
	g, tr, m := newTestGlue(t)
	_, err := g.MakeItemForWindow(nil, true)
	require.NoError(t, err)
	require.NoError(t, g.Check())

	_, err = tr.CreateNode(tree.Root, tree.NodeData{Text: "stray"})
	require.NoError(t, err)
	assert.Error(t, g.Check(), "node without a value")

	_, err = m.AddTab(model.TabValue{TabID: model.NoBrowserID, NodeID: "ghost"})
	require.NoError(t, err)
	assert.ErrorContains(t, g.Check(), "value for missing node ghost")
}
