package glue

import (
	"html"
	"strings"

	"github.com/asheshgoplani/ferndeck/internal/model"
)

// Default window names, used until a window is given a title. Kept windows
// show SavedTabsText and ephemeral ones UnsavedText.
const (
	SavedTabsText = "Saved tabs"
	UnsavedText   = "Unsaved"
)

// GetCurrRawText returns the display text of a value before escaping.
func GetCurrRawText(v model.Value) string {
	if title, ok := v.Title(); ok {
		return title
	}
	if v.Kept() {
		return SavedTabsText
	}
	return UnsavedText
}

// GetSafeText returns the HTML-escaped display text of a value.
func GetSafeText(v model.Value) string {
	return escape(GetCurrRawText(v))
}

func escape(s string) string { return html.EscapeString(s) }

// uriKeep holds the bytes encodeURI leaves alone besides ASCII alphanumerics.
const uriKeep = ";,/?:@&=+$-_.!~*'()#"

// encodeURI percent-encodes s the way browsers encode a full URI: reserved
// characters survive, everything else outside the unreserved set is escaped.
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
			b.WriteByte(c)
		case strings.IndexByte(uriKeep, c) >= 0:
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&0x0f])
		}
	}
	return b.String()
}
