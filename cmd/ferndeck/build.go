package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/asheshgoplani/ferndeck/internal/browser"
	"github.com/asheshgoplani/ferndeck/internal/config"
	"github.com/asheshgoplani/ferndeck/internal/glue"
	"github.com/asheshgoplani/ferndeck/internal/model"
	"github.com/asheshgoplani/ferndeck/internal/outline"
	"github.com/asheshgoplani/ferndeck/internal/replay"
	"github.com/asheshgoplani/ferndeck/internal/tree"
)

// buildOutline replays the snapshot at path into a fresh tree and returns
// its outline.
func buildOutline(cfg *config.Config, path string) (*outline.Snapshot, *replay.Result, error) {
	snap, err := browser.LoadSnapshot(path)
	if err != nil {
		return nil, nil, err
	}

	var opts []tree.Option
	if cfg.Tree.NodeIDs == config.NodeIDsSeq {
		opts = append(opts, tree.WithSequentialIDs())
	}
	g := glue.New(tree.NewMemTree(opts...), model.NewStore(), glue.WithPageIcon(cfg.Tree.PageIcon))

	res, err := replay.NewBuilder(g).Build(snap)
	if err != nil {
		return nil, res, err
	}
	out, err := outline.NewLoader(g).Load()
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func reportProblems(w io.Writer, res *replay.Result) {
	if res == nil {
		return
	}
	for _, p := range res.Problems {
		fmt.Fprintf(w, "Warning: %v\n", p)
	}
}
