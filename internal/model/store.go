package model

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoNodeID is returned when a value is added without a node id.
	ErrNoNodeID = errors.New("value has no node id")
	// ErrIDInUse is returned when a browser id is already mapped to another node.
	ErrIDInUse = errors.New("browser id already mapped")
)

type record struct {
	window *WindowValue
	tab    *TabValue
}

// Store holds window and tab values keyed by node id, with secondary indices
// by browser window id and browser tab id.
//
// Store is not safe for concurrent use.
type Store struct {
	byNode  map[string]record
	byWinID map[BrowserID]*WindowValue
	byTabID map[BrowserID]*TabValue
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		byNode:  make(map[string]record),
		byWinID: make(map[BrowserID]*WindowValue),
		byTabID: make(map[BrowserID]*TabValue),
	}
}

// AddWindow records a window value for fields.NodeID and returns the stored
// value. If the node already has a window value, that value is updated in
// place and returned; a tab value on the same node is replaced.
func (s *Store) AddWindow(fields WindowValue) (*WindowValue, error) {
	if fields.NodeID == "" {
		return nil, ErrNoNodeID
	}
	if fields.WinID != NoBrowserID {
		if other, ok := s.byWinID[fields.WinID]; ok && other.NodeID != fields.NodeID {
			return nil, fmt.Errorf("window %d at node %s: %w", fields.WinID, other.NodeID, ErrIDInUse)
		}
	}

	rec := s.byNode[fields.NodeID]
	if rec.tab != nil {
		s.unindexTab(rec.tab)
	}
	val := rec.window
	if val != nil {
		s.unindexWindow(val)
		*val = fields
	} else {
		val = &WindowValue{}
		*val = fields
	}
	s.byNode[val.NodeID] = record{window: val}
	if val.WinID != NoBrowserID {
		s.byWinID[val.WinID] = val
	}
	return val, nil
}

// AddTab records a tab value for fields.NodeID and returns the stored value.
// Same update-in-place rules as AddWindow.
func (s *Store) AddTab(fields TabValue) (*TabValue, error) {
	if fields.NodeID == "" {
		return nil, ErrNoNodeID
	}
	if fields.TabID != NoBrowserID {
		if other, ok := s.byTabID[fields.TabID]; ok && other.NodeID != fields.NodeID {
			return nil, fmt.Errorf("tab %d at node %s: %w", fields.TabID, other.NodeID, ErrIDInUse)
		}
	}

	rec := s.byNode[fields.NodeID]
	if rec.window != nil {
		s.unindexWindow(rec.window)
	}
	val := rec.tab
	if val != nil {
		s.unindexTab(val)
		*val = fields
	} else {
		val = &TabValue{}
		*val = fields
	}
	s.byNode[val.NodeID] = record{tab: val}
	if val.TabID != NoBrowserID {
		s.byTabID[val.TabID] = val
	}
	return val, nil
}

// GetNodeVal returns the value mapped to nodeID.
func (s *Store) GetNodeVal(nodeID string) Entry {
	rec, ok := s.byNode[nodeID]
	switch {
	case !ok:
		return Entry{}
	case rec.window != nil:
		return Entry{Type: ItemWindow, Window: rec.window}
	default:
		return Entry{Type: ItemTab, Tab: rec.tab}
	}
}

// ByWinID returns the window value bound to a browser window, or nil.
func (s *Store) ByWinID(id BrowserID) *WindowValue {
	if id == NoBrowserID {
		return nil
	}
	return s.byWinID[id]
}

// ByTabID returns the tab value bound to a browser tab, or nil.
func (s *Store) ByTabID(id BrowserID) *TabValue {
	if id == NoBrowserID {
		return nil
	}
	return s.byTabID[id]
}

// TabsInWindow returns the open tab values of a browser window ordered by index.
func (s *Store) TabsInWindow(id BrowserID) []*TabValue {
	if id == NoBrowserID {
		return nil
	}
	var tabs []*TabValue
	for _, t := range s.byTabID {
		if t.WinID == id {
			tabs = append(tabs, t)
		}
	}
	sort.Slice(tabs, func(i, j int) bool { return tabs[i].Index < tabs[j].Index })
	return tabs
}

// Detach clears the browser ids of the value at nodeID and marks it closed.
// It reports whether a value was found.
func (s *Store) Detach(nodeID string) bool {
	rec, ok := s.byNode[nodeID]
	if !ok {
		return false
	}
	if w := rec.window; w != nil {
		s.unindexWindow(w)
		w.WinID = NoBrowserID
		w.Window = nil
		w.IsOpen = false
	}
	if t := rec.tab; t != nil {
		s.unindexTab(t)
		t.TabID = NoBrowserID
		t.WinID = NoBrowserID
		t.Index = NoIndex
		t.Tab = nil
		t.IsOpen = false
	}
	return true
}

// Remove deletes the value mapped to nodeID. It reports whether one existed.
func (s *Store) Remove(nodeID string) bool {
	rec, ok := s.byNode[nodeID]
	if !ok {
		return false
	}
	if rec.window != nil {
		s.unindexWindow(rec.window)
	}
	if rec.tab != nil {
		s.unindexTab(rec.tab)
	}
	delete(s.byNode, nodeID)
	return true
}

// Len returns the number of values in the store.
func (s *Store) Len() int { return len(s.byNode) }

// NodeIDs returns every mapped node id, sorted.
func (s *Store) NodeIDs() []string {
	ids := make([]string, 0, len(s.byNode))
	for id := range s.byNode {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) unindexWindow(v *WindowValue) {
	if cur, ok := s.byWinID[v.WinID]; ok && cur == v {
		delete(s.byWinID, v.WinID)
	}
}

func (s *Store) unindexTab(v *TabValue) {
	if cur, ok := s.byTabID[v.TabID]; ok && cur == v {
		delete(s.byTabID, v.TabID)
	}
}
