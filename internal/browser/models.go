package browser

// Window is a browser window record as reported by the browser.
type Window struct {
	ID      int    `json:"id" yaml:"id"`
	Focused bool   `json:"focused,omitempty" yaml:"focused,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty"` // "normal" | "popup" | ...
	Tabs    []*Tab `json:"tabs,omitempty" yaml:"tabs,omitempty"`
}

// Tab is a browser tab record as reported by the browser.
type Tab struct {
	ID         int    `json:"id" yaml:"id"`
	WindowID   int    `json:"windowId" yaml:"windowId"`
	Index      int    `json:"index" yaml:"index"`
	URL        string `json:"url" yaml:"url"`
	Title      string `json:"title" yaml:"title"`
	FavIconURL string `json:"favIconUrl,omitempty" yaml:"favIconUrl,omitempty"`

	hasIndex bool // index was present in the decoded document
}
