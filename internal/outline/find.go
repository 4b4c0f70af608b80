package outline

import "github.com/sahilm/fuzzy"

// Match is an outline item that matched a query.
type Match struct {
	Item  Item `json:"item"`
	Score int  `json:"score"`
}

type titleSource []Item

func (s titleSource) String(i int) string { return s[i].Title }
func (s titleSource) Len() int            { return len(s) }

// Find fuzzy-matches query against item titles, best match first.
func Find(snap *Snapshot, query string) []Match {
	if snap == nil || query == "" {
		return nil
	}
	found := fuzzy.FindFrom(query, titleSource(snap.Items))
	matches := make([]Match, 0, len(found))
	for _, f := range found {
		matches = append(matches, Match{Item: snap.Items[f.Index], Score: f.Score})
	}
	return matches
}
