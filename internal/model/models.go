package model

import "github.com/asheshgoplani/ferndeck/internal/browser"

// BrowserID is a browser-assigned window or tab id.
type BrowserID int

// NoBrowserID marks a value that is not bound to a live browser entity.
const NoBrowserID BrowserID = -1

// NoIndex is the tab index of a value without a live tab.
const NoIndex = -1

// Keep says whether a window's tabs persist after the window closes.
type Keep int

const (
	WinNoKeep Keep = iota
	WinKeep
)

// Kept reports whether k is WinKeep.
func (k Keep) Kept() bool { return k == WinKeep }

func (k Keep) String() string {
	if k == WinKeep {
		return "keep"
	}
	return "nokeep"
}

// KeepFrom regularizes a boolean into a Keep.
func KeepFrom(keep bool) Keep {
	if keep {
		return WinKeep
	}
	return WinNoKeep
}

// ItemType tags the kind of value mapped to a node.
type ItemType int

const (
	ItemNone ItemType = iota // node not found
	ItemWindow
	ItemTab
)

func (t ItemType) String() string {
	switch t {
	case ItemWindow:
		return "window"
	case ItemTab:
		return "tab"
	default:
		return "none"
	}
}

// Value is the part of a window or tab value needed to compute its title.
type Value interface {
	// Title returns the raw title, or false if none has been set.
	Title() (string, bool)
	Kept() bool
}

// WindowValue is the model record for a fern.
type WindowValue struct {
	WinID    BrowserID
	NodeID   string
	Window   *browser.Window
	RawTitle *string // nil means "use the default name"
	IsOpen   bool
	Keep     Keep
}

func (v *WindowValue) Title() (string, bool) {
	if v.RawTitle == nil {
		return "", false
	}
	return *v.RawTitle, true
}

func (v *WindowValue) Kept() bool { return v.Keep.Kept() }

// TabValue is the model record for a tab node.
type TabValue struct {
	TabID    BrowserID
	NodeID   string
	WinID    BrowserID
	Index    int
	Tab      *browser.Tab
	RawURL   string
	RawTitle string
	IsOpen   bool
}

func (v *TabValue) Title() (string, bool) { return v.RawTitle, true }

// Tabs are never "kept" on their own; keep is a window property.
func (v *TabValue) Kept() bool { return false }

// Entry is the tagged result of a node lookup.
type Entry struct {
	Type   ItemType
	Window *WindowValue
	Tab    *TabValue
}

// Found reports whether the lookup resolved to a value.
func (e Entry) Found() bool { return e.Type != ItemNone }

// Value returns the entry's value, or nil when nothing was found.
func (e Entry) Value() Value {
	switch e.Type {
	case ItemWindow:
		return e.Window
	case ItemTab:
		return e.Tab
	default:
		return nil
	}
}

// NodeID returns the node id the entry's value is mapped to.
func (e Entry) NodeID() string {
	switch e.Type {
	case ItemWindow:
		return e.Window.NodeID
	case ItemTab:
		return e.Tab.NodeID
	default:
		return ""
	}
}
