// Package present renders search/compare/stats results in the CLI's three
// output formats. Formatting is explicitly out of the core's scope; this
// package only consumes plain data, never orchestrator internals.
package present

import (
	"encoding/csv"
	"io"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/maci0/resembl/internal/config"
)

// Row is one renderable result row (a find/compare hit, a stats line, ...).
type Row struct {
	Checksum      string
	Names         []string
	Jaccard       float64
	Levenshtein   float64
	Hybrid        float64
	CFGSimilarity float64
	SharedTokens  int
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format config.Format, rows []Row) error {
	switch format {
	case config.FormatJSON:
		return writeJSON(w, rows)
	case config.FormatCSV:
		return writeCSV(w, rows)
	default:
		return writeTable(w, rows)
	}
}

func writeJSON(w io.Writer, rows []Row) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writeCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()
	if err := cw.Write([]string{"checksum", "names", "jaccard", "levenshtein", "hybrid", "cfg_similarity", "shared_tokens"}); err != nil {
		return err
	}
	for _, r := range rows {
		namesJoined := ""
		for i, n := range r.Names {
			if i > 0 {
				namesJoined += ";"
			}
			namesJoined += n
		}
		rec := []string{
			r.Checksum,
			namesJoined,
			strconv.FormatFloat(r.Jaccard, 'f', 4, 64),
			strconv.FormatFloat(r.Levenshtein, 'f', 2, 64),
			strconv.FormatFloat(r.Hybrid, 'f', 2, 64),
			strconv.FormatFloat(r.CFGSimilarity, 'f', 4, 64),
			strconv.Itoa(r.SharedTokens),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(w io.Writer, rows []Row) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Checksum", "Names", "Jaccard", "Levenshtein", "Hybrid", "CFG", "Shared"})
	for _, r := range rows {
		t.AppendRow(table.Row{
			shortChecksum(r.Checksum),
			r.Names,
			strconv.FormatFloat(r.Jaccard, 'f', 4, 64),
			strconv.FormatFloat(r.Levenshtein, 'f', 2, 64),
			strconv.FormatFloat(r.Hybrid, 'f', 2, 64),
			strconv.FormatFloat(r.CFGSimilarity, 'f', 4, 64),
			r.SharedTokens,
		})
	}
	t.Render()
	return nil
}

func shortChecksum(cs string) string {
	if len(cs) <= 12 {
		return cs
	}
	return cs[:12]
}
