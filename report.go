package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/showreel/pkg/catalog"
	"gitlab.com/tinyland/lab/showreel/pkg/media"
)

// printCatalog writes the catalog grouped by section, or as JSON.
func printCatalog(w io.Writer, cat *catalog.Catalog, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Document())
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", cat.Studio().Name)
	for _, sec := range []catalog.Section{catalog.Upcoming, catalog.Past} {
		items := cat.Section(sec)
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(tw, "\n%s\n", sec.Title())
		for _, it := range items {
			link := "-"
			if it.HasLink() {
				link = it.ExternalLink.String()
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%d images\t%s\n",
				it.ID, it.Title, it.Year, max(len(it.Gallery), 1), link)
		}
	}
	return tw.Flush()
}

// runPreload loads every ref with at most workers in flight and prints one
// line per ref. It returns the number of refs that failed.
func runPreload(ctx context.Context, w io.Writer, cache *media.Cache, refs []media.Ref, workers int) (int, error) {
	errs := make([]error, len(refs))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, ref := range refs {
		g.Go(func() error {
			_, errs[i] = cache.EnsureLoaded(ctx, ref, media.Low)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	failed := 0
	for i, ref := range refs {
		state := cache.State(ref)
		detail := ""
		if h, ok := cache.Get(ref); ok {
			b := h.Bounds()
			detail = fmt.Sprintf("%dx%d %s %s", b.Dx(), b.Dy(), h.Format, humanize.Bytes(uint64(h.Size)))
		}
		if errs[i] != nil {
			failed++
			detail = firstLine(errs[i].Error())
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", state, ref, detail)
	}

	st := cache.Stats()
	fmt.Fprintf(tw, "\n%d loaded, %d failed, %s\n", st.Loaded, failed, humanize.Bytes(uint64(max(st.Bytes, 0))))
	return failed, tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
