package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/benedict2310/siteindex/internal/release"
	"github.com/benedict2310/siteindex/pkg/model"
)

// WriteGenerateReport prints the outputs of a generation run.
func WriteGenerateReport(w io.Writer, format Format, res release.Result) error {
	return Write(w, format, res, func(w io.Writer) error {
		rows := make([][]string, 0, len(res.Outputs))
		for _, o := range res.Outputs {
			rows = append(rows, []string{o.Path, HumanBytes(o.Bytes), o.Digest})
		}
		if err := WriteTable(w, []string{"OUTPUT", "SIZE", "XXHASH"}, rows); err != nil {
			return err
		}
		verb := "Generated"
		if res.DryRun {
			verb = "Rendered (dry run)"
		}
		run := res.RunID
		if started, ok := release.RunTime(res.RunID); ok {
			run += " at " + started.Format(time.RFC3339)
		}
		_, err := fmt.Fprintf(w, "\n%s %d outputs for %d pages in %d folders; changed in latest commit: %s (run %s)\n",
			verb, len(res.Outputs), res.Pages, res.Folders, OrNone(strings.Join(res.Changed, ", ")), run)
		return err
	})
}

type treeRow struct {
	Kind  string `json:"kind" yaml:"kind"`
	Path  string `json:"path" yaml:"path"`
	Depth int    `json:"depth" yaml:"depth"`
}

// WriteTree prints the scanned folder tree. Structured formats emit the
// nested model; the table lists folders and pages in traversal order.
func WriteTree(w io.Writer, format Format, root *model.FolderNode) error {
	return Write(w, format, root, func(w io.Writer) error {
		rows := [][]string{}
		for _, r := range flattenTree(root) {
			label := r.Path
			if r.Kind == "folder" {
				label += "/"
			}
			rows = append(rows, []string{r.Kind, strconv.Itoa(r.Depth), strings.Repeat("  ", r.Depth) + label})
		}
		return WriteTable(w, []string{"KIND", "DEPTH", "PATH"}, rows)
	})
}

func flattenTree(folder *model.FolderNode) []treeRow {
	if folder == nil {
		return nil
	}
	var rows []treeRow
	if !folder.IsRoot() {
		rows = append(rows, treeRow{Kind: "folder", Path: folder.RelativePath, Depth: folder.Depth() - 1})
	}
	for _, sub := range folder.Subfolders {
		rows = append(rows, flattenTree(sub)...)
	}
	for _, page := range folder.Pages {
		rows = append(rows, treeRow{Kind: "page", Path: page.RelativePath, Depth: folder.Depth()})
	}
	return rows
}
