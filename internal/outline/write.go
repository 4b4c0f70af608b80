package outline

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultTitleWidth is the display width titles are cut to.
const DefaultTitleWidth = 48

// WriteText prints the outline as an indented list. Titles are truncated to
// width display cells; width <= 0 uses DefaultTitleWidth.
func WriteText(w io.Writer, snap *Snapshot, width int) error {
	if width <= 0 {
		width = DefaultTitleWidth
	}
	for _, item := range snap.Items {
		title := runewidth.Truncate(item.Title, width, "...")
		var line string
		switch item.Type {
		case ItemTypeWindow:
			line = fmt.Sprintf("%s %s  [%s] %d tabs", windowMark(item.Window), title, item.NodeType, item.Window.TabCount)
		default:
			branch := "├─"
			if item.IsLastInWindow {
				branch = "└─"
			}
			state := " "
			if item.Tab.Open {
				state = "*"
			}
			line = fmt.Sprintf("%s%s %s %s  %s", strings.Repeat("  ", item.Level), branch, state, title, item.Tab.URL)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d windows (%d open), %d tabs (%d open)\n",
		snap.TotalWindows, snap.OpenWindows, snap.TotalTabs, snap.OpenTabs)
	return err
}

func windowMark(info *WindowInfo) string {
	switch {
	case info.Open && info.Keep:
		return "[+]"
	case info.Open:
		return "[~]"
	default:
		return "[-]"
	}
}
