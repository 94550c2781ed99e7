package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const previewLen = 200

// ParseOutputFormat validates an --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or json)", s)
}

// WriteAnswer writes a query response to w in the given format.
func WriteAnswer(w io.Writer, resp *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "%s\n", resp.Answer)
	if resp.Refused {
		return nil
	}
	fmt.Fprintf(w, "\nSources:\n")
	for i, s := range resp.Sources {
		fmt.Fprintf(w, "  [%d] %s #%d (score %.4f)\n", i+1, s.DocName, s.ChunkIndex, s.Score)
		fmt.Fprintf(w, "      %s\n", utils.Preview(s.Content, previewLen))
	}
	return nil
}

// WriteFiles writes document names to w in the given format.
func WriteFiles(w io.Writer, files []string, format OutputFormat) error {
	if files == nil {
		files = []string{}
	}
	if format == OutputJSON {
		return writeJSON(w, files)
	}
	if len(files) == 0 {
		fmt.Fprintln(w, "No documents indexed.")
		return nil
	}
	for _, f := range files {
		fmt.Fprintln(w, f)
	}
	return nil
}

func writeIngestSummary(w io.Writer, res *ingestResult) {
	fmt.Fprintf(w, "Indexing complete:\n")
	fmt.Fprintf(w, "  Files indexed:  %d\n", res.Indexed)
	fmt.Fprintf(w, "  Files skipped:  %d (already indexed)\n", res.Skipped)
	fmt.Fprintf(w, "  Chunks created: %d\n", res.Chunks)
	if len(res.Failed) == 0 {
		return
	}
	paths := make([]string, 0, len(res.Failed))
	for p := range res.Failed {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	fmt.Fprintf(w, "\nFailed:\n")
	for _, p := range paths {
		fmt.Fprintf(w, "  - %s: %v\n", p, res.Failed[p])
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
