// Package outline flattens a fern tree and its values into an ordered list
// for printing and lookup.
package outline

import (
	"fmt"
	"time"

	"github.com/asheshgoplani/ferndeck/internal/glue"
	"github.com/asheshgoplani/ferndeck/internal/model"
	"github.com/asheshgoplani/ferndeck/internal/tree"
)

const (
	ItemTypeWindow = "window"
	ItemTypeTab    = "tab"
)

// Snapshot is a flattened, ordered representation of the tree.
type Snapshot struct {
	GeneratedAt  time.Time `json:"generatedAt"`
	TotalWindows int       `json:"totalWindows"`
	TotalTabs    int       `json:"totalTabs"`
	OpenWindows  int       `json:"openWindows"`
	OpenTabs     int       `json:"openTabs"`
	Items        []Item    `json:"items"`
}

// Item is one row of the outline.
type Item struct {
	Index          int         `json:"index"`
	Type           string      `json:"type"`
	Level          int         `json:"level"`
	NodeID         string      `json:"nodeId"`
	NodeType       string      `json:"nodeType"`
	Icon           string      `json:"icon,omitempty"`
	Title          string      `json:"title"`
	Window         *WindowInfo `json:"window,omitempty"`
	Tab            *TabInfo    `json:"tab,omitempty"`
	IsLastInWindow bool        `json:"isLastInWindow,omitempty"`
}

// WindowInfo carries fern metadata.
type WindowInfo struct {
	WinID    int  `json:"winId"`
	Open     bool `json:"open"`
	Keep     bool `json:"keep"`
	TabCount int  `json:"tabCount"`
}

// TabInfo carries tab metadata.
type TabInfo struct {
	TabID int    `json:"tabId"`
	WinID int    `json:"winId"`
	Index int    `json:"index"`
	URL   string `json:"url"`
	Open  bool   `json:"open"`
}

// Loader builds snapshots from a Glue whose tree can be walked.
type Loader struct {
	glue *glue.Glue
	now  func() time.Time
}

// NewLoader returns a Loader over g.
func NewLoader(g *glue.Glue) *Loader {
	return &Loader{glue: g, now: time.Now}
}

// Load walks the tree depth first and returns the outline. Titles are the
// unescaped display text of each value.
func (l *Loader) Load() (*Snapshot, error) {
	if l == nil || l.glue == nil {
		return nil, fmt.Errorf("outline loader is not configured")
	}
	t := l.glue.Tree()
	w, ok := t.(tree.Walker)
	if !ok {
		return nil, fmt.Errorf("outline: tree cannot be walked")
	}

	snap := &Snapshot{GeneratedAt: l.now().UTC(), Items: []Item{}}
	var walk func(parent string, level int) error
	walk = func(parent string, level int) error {
		children := w.Children(parent)
		for i, id := range children {
			node, ok := t.GetNode(id)
			if !ok {
				return fmt.Errorf("outline: node %s vanished", id)
			}
			e := l.glue.GetNodeVal(id)
			if !e.Found() {
				return fmt.Errorf("outline: node %s has no value", id)
			}

			item := Item{
				Index:    len(snap.Items),
				Level:    level,
				NodeID:   id,
				NodeType: node.Type.String(),
				Icon:     node.Icon,
				Title:    glue.GetCurrRawText(e.Value()),
			}
			switch e.Type {
			case model.ItemWindow:
				item.Type = ItemTypeWindow
				item.Window = &WindowInfo{
					WinID:    int(e.Window.WinID),
					Open:     e.Window.IsOpen,
					Keep:     e.Window.Kept(),
					TabCount: len(w.Children(id)),
				}
				snap.TotalWindows++
				if e.Window.IsOpen {
					snap.OpenWindows++
				}
			case model.ItemTab:
				item.Type = ItemTypeTab
				item.IsLastInWindow = i == len(children)-1
				item.Tab = &TabInfo{
					TabID: int(e.Tab.TabID),
					WinID: int(e.Tab.WinID),
					Index: e.Tab.Index,
					URL:   e.Tab.RawURL,
					Open:  e.Tab.IsOpen,
				}
				snap.TotalTabs++
				if e.Tab.IsOpen {
					snap.OpenTabs++
				}
			}
			snap.Items = append(snap.Items, item)

			if err := walk(id, level+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(tree.Root, 0); err != nil {
		return nil, err
	}
	return snap, nil
}
