package browser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Snapshot is a point-in-time description of browser state plus the
// windows saved from earlier sessions.
type Snapshot struct {
	Windows []*LiveWindow  `yaml:"windows"`
	Saved   []*SavedWindow `yaml:"saved"`
}

// LiveWindow is an open browser window in a snapshot.
type LiveWindow struct {
	Window `yaml:",inline"`

	// Keep marks the window as saved rather than ephemeral.
	Keep bool `yaml:"keep,omitempty"`
	// Restore names the saved window this one was opened from.
	Restore string `yaml:"restore,omitempty"`
}

// SavedWindow is a closed window remembered from an earlier session.
type SavedWindow struct {
	Title string      `yaml:"title,omitempty"`
	Tabs  []*SavedTab `yaml:"tabs"`
}

// SavedTab is a tab of a saved window.
type SavedTab struct {
	URL   string `yaml:"url"`
	Title string `yaml:"title"`
}

// LoadSnapshot reads a YAML snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return ParseSnapshot(data)
}

// ParseSnapshot decodes and validates a YAML snapshot. Tabs inherit their
// window id and, when no index is given, their position as index.
func ParseSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	if err := snap.normalize(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// UnmarshalYAML decodes a tab and notes whether it carried an index, so an
// explicit index of 0 survives normalization.
func (t *Tab) UnmarshalYAML(value *yaml.Node) error {
	type plain Tab
	if err := value.Decode((*plain)(t)); err != nil {
		return err
	}
	var explicit struct {
		Index *int `yaml:"index"`
	}
	if err := value.Decode(&explicit); err != nil {
		return err
	}
	t.hasIndex = explicit.Index != nil
	return nil
}

func (s *Snapshot) normalize() error {
	winIDs := make(map[int]bool)
	tabIDs := make(map[int]bool)
	saved := make(map[string]bool)

	for _, sw := range s.Saved {
		if sw == nil {
			return fmt.Errorf("snapshot: empty saved window entry")
		}
		if sw.Title != "" {
			saved[sw.Title] = true
		}
	}

	for i, w := range s.Windows {
		if w == nil {
			return fmt.Errorf("snapshot: empty window entry %d", i)
		}
		if w.ID < 0 {
			return fmt.Errorf("snapshot: window %d has negative id", i)
		}
		if winIDs[w.ID] {
			return fmt.Errorf("snapshot: duplicate window id %d", w.ID)
		}
		winIDs[w.ID] = true
		if w.Restore != "" && !saved[w.Restore] {
			return fmt.Errorf("snapshot: window %d restores unknown saved window %q", w.ID, w.Restore)
		}

		indexes := make(map[int]bool, len(w.Tabs))
		for j, t := range w.Tabs {
			if t == nil {
				return fmt.Errorf("snapshot: window %d has empty tab entry %d", w.ID, j)
			}
			if t.ID < 0 {
				return fmt.Errorf("snapshot: window %d tab %d has negative id", w.ID, j)
			}
			if tabIDs[t.ID] {
				return fmt.Errorf("snapshot: duplicate tab id %d", t.ID)
			}
			tabIDs[t.ID] = true
			t.WindowID = w.ID
			if !t.hasIndex {
				t.Index = j
			}
			if t.Index < 0 {
				return fmt.Errorf("snapshot: window %d tab %d has negative index", w.ID, t.ID)
			}
			if indexes[t.Index] {
				return fmt.Errorf("snapshot: window %d has two tabs at index %d", w.ID, t.Index)
			}
			indexes[t.Index] = true
		}
	}
	return nil
}
