// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/flowtag/internal/cmd/emoji"
	"github.com/agentstation/flowtag/internal/n8n"
	"github.com/agentstation/flowtag/pkg/constants"
	"github.com/agentstation/flowtag/pkg/policy"
	"github.com/agentstation/flowtag/pkg/tagger"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align
}

// ResultToTableData converts the items of a run to table format.
// The wide form adds the source path and the applied tag ids.
func ResultToTableData(res *tagger.Result, wide bool) Data {
	headers := []string{"", "Status", "Workflow", "ID", "Labels"}
	if wide {
		headers = append(headers, "Path", "Tag IDs")
	}
	headers = append(headers, "Error")

	rows := make([][]string, 0, len(res.Items))
	for _, it := range res.Items {
		name := it.Name
		if !wide {
			name = truncate(name, constants.DisplayNameWidth)
		}
		row := []string{StatusSymbol(it.Status), string(it.Status), name, it.RemoteID, strings.Join(it.Labels, ", ")}
		if wide {
			row = append(row, it.Path, strings.Join(it.TagIDs, ", "))
		}
		row = append(row, it.Error)
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// StatusSymbol returns the marker shown next to an item state.
func StatusSymbol(s tagger.Status) string {
	switch s {
	case tagger.StatusApplied:
		return emoji.Success
	case tagger.StatusDryRun:
		return emoji.Info
	case tagger.StatusFailed:
		return emoji.Error
	case tagger.StatusSkipped:
		return emoji.Optional
	default:
		return "?"
	}
}

// TagsToTableData converts n8n tags to table format.
func TagsToTableData(tags []n8n.Tag, wide bool) Data {
	headers := []string{"ID", "Name"}
	align := []Align{AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Workflows", "Created", "Updated")
		align = append(align, AlignRight, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		row := []string{t.ID, t.Name}
		if wide {
			usage := ""
			if t.UsageCount != nil {
				usage = strconv.Itoa(*t.UsageCount)
			}
			row = append(row, usage, t.CreatedAt, t.UpdatedAt)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// LabelsToTableData shows the labels the policy derives for each path.
// The wide form adds the remote tag ids the labels resolve to.
func LabelsToTableData(p *policy.Policy, paths []string, wide bool) Data {
	headers := []string{"Path", "Labels"}
	if wide {
		headers = append(headers, "Tag IDs")
	}

	rows := make([][]string, 0, len(paths))
	for _, path := range paths {
		labels := p.LabelsFor(path)
		row := []string{path, strings.Join(labels, ", ")}
		if wide {
			row = append(row, strings.Join(p.LabelIDsFor(labels), ", "))
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows}
}

// CatalogToTableData lists label names and their remote ids, sorted by name.
func CatalogToTableData(c policy.Catalog) Data {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{name, c[name]})
	}
	return Data{Headers: []string{"Label", "Tag ID"}, Rows: rows}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
