// Package replay rebuilds a fern tree from a browser snapshot. Saved windows
// become closed ferns first; open windows are then either bound onto the
// saved fern they were restored from or given new ferns.
package replay

import (
	"fmt"
	"log"

	"github.com/asheshgoplani/ferndeck/internal/browser"
	"github.com/asheshgoplani/ferndeck/internal/glue"
	"github.com/asheshgoplani/ferndeck/internal/logging"
)

// Result summarizes a replay.
type Result struct {
	Windows  int // ferns created
	Tabs     int // tab nodes created or bound
	Restored int // open windows bound onto saved ferns
	Problems []error
}

type savedFern struct {
	nodeID   string
	tabNodes []string
	taken    bool
}

// Builder replays snapshots through a Glue.
type Builder struct {
	glue *glue.Glue
	log  *log.Logger
}

// NewBuilder returns a Builder writing through g.
func NewBuilder(g *glue.Glue) *Builder {
	return &Builder{glue: g, log: logging.New("replay")}
}

// Build applies snap. Individual refusals are collected in Result.Problems
// and do not stop the replay; an error is returned only if the resulting
// tree fails its consistency check.
func (b *Builder) Build(snap *browser.Snapshot) (*Result, error) {
	res := &Result{}
	saved := make(map[string][]*savedFern)

	for _, sw := range snap.Saved {
		sf, err := b.addSaved(sw, res)
		if err != nil {
			b.problem(res, err)
			continue
		}
		if sw.Title != "" {
			saved[sw.Title] = append(saved[sw.Title], sf)
		}
	}

	for _, lw := range snap.Windows {
		if lw.Restore != "" {
			if sf := claim(saved[lw.Restore]); sf != nil {
				b.restore(lw, sf, res)
				continue
			}
			b.log.Printf("window %d: saved window %q already restored, creating a new fern", lw.ID, lw.Restore)
		}
		b.addLive(lw, res)
	}

	if err := b.glue.Check(); err != nil {
		return res, fmt.Errorf("replay left an inconsistent tree: %w", err)
	}
	b.log.Printf("replay complete: %d ferns, %d tabs, %d restored, %d problems",
		res.Windows, res.Tabs, res.Restored, len(res.Problems))
	return res, nil
}

func (b *Builder) addSaved(sw *browser.SavedWindow, res *Result) (*savedFern, error) {
	item, err := b.glue.MakeItemForWindow(nil, true)
	if err != nil {
		return nil, fmt.Errorf("saved window %q: %w", sw.Title, err)
	}
	res.Windows++
	if sw.Title != "" {
		title := sw.Title
		if err := b.glue.RenameWindow(item.NodeID, &title); err != nil {
			b.problem(res, fmt.Errorf("saved window %q: %w", sw.Title, err))
		}
	}

	sf := &savedFern{nodeID: item.NodeID}
	for _, st := range sw.Tabs {
		tab, err := b.glue.MakeItemForTab(item.NodeID, nil, st.URL, st.Title)
		if err != nil {
			b.problem(res, fmt.Errorf("saved window %q tab %q: %w", sw.Title, st.URL, err))
			continue
		}
		res.Tabs++
		sf.tabNodes = append(sf.tabNodes, tab.NodeID)
	}
	return sf, nil
}

func (b *Builder) restore(lw *browser.LiveWindow, sf *savedFern, res *Result) {
	nodeID, err := b.glue.BindWindowToTree(&lw.Window, sf.nodeID)
	if err != nil {
		b.problem(res, fmt.Errorf("restore window %d: %w", lw.ID, err))
		return
	}
	res.Restored++

	for i, tab := range lw.Tabs {
		if i < len(sf.tabNodes) {
			if _, err := b.glue.BindTabToTree(tab, sf.tabNodes[i]); err != nil {
				b.problem(res, fmt.Errorf("restore window %d tab %d: %w", lw.ID, tab.ID, err))
			} else {
				res.Tabs++
			}
			continue
		}
		if _, err := b.glue.MakeItemForTab(nodeID, tab, "", ""); err != nil {
			b.problem(res, fmt.Errorf("restore window %d tab %d: %w", lw.ID, tab.ID, err))
			continue
		}
		res.Tabs++
	}
}

func (b *Builder) addLive(lw *browser.LiveWindow, res *Result) {
	item, err := b.glue.MakeItemForWindow(&lw.Window, lw.Keep)
	if err != nil {
		b.problem(res, fmt.Errorf("window %d: %w", lw.ID, err))
		return
	}
	res.Windows++

	for _, tab := range lw.Tabs {
		if _, err := b.glue.MakeItemForTab(item.NodeID, tab, "", ""); err != nil {
			b.problem(res, fmt.Errorf("window %d tab %d: %w", lw.ID, tab.ID, err))
			continue
		}
		res.Tabs++
	}
}

func (b *Builder) problem(res *Result, err error) {
	b.log.Print(err)
	res.Problems = append(res.Problems, err)
}

// claim returns the first unclaimed fern and marks it taken.
func claim(ferns []*savedFern) *savedFern {
	for _, sf := range ferns {
		if !sf.taken {
			sf.taken = true
			return sf
		}
	}
	return nil
}
