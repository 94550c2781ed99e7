package cli

import (
	"fmt"
	"path/filepath"

	"github.com/hyperjump/docqa/internal/ingest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type ingestResult struct {
	Indexed int
	Skipped int
	Chunks  int
	Failed  map[string]error
}

func (a *app) ingestCommand() *cobra.Command {
	var includes []string
	var force bool
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Index files or directories",
		Long: `Index .txt and .pdf files. Directories are walked and filtered with
doublestar include patterns; files named directly are always indexed.

Examples:
  docqa ingest ./docs
  docqa ingest --include '**/*.pdf' ./reports notes.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := ingest.CollectFiles(args, includes)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no matching files under %v", args)
			}
			components, err := initializeComponents(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer components.Close()

			bar := progressbar.NewOptions(len(files),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(cmd.ErrOrStderr())
				}),
			)
			res := ingestResult{Failed: make(map[string]error)}
			for _, f := range files {
				if !force && components.Service.HasDocument(filepath.Base(f)) {
					res.Skipped++
				} else if n, err := components.Service.IngestFile(cmd.Context(), f); err != nil {
					a.logger.Debug("ingest failed", zap.String("path", f), zap.Error(err))
					res.Failed[f] = err
				} else {
					res.Indexed++
					res.Chunks += n
				}
				_ = bar.Add(1)
			}
			writeIngestSummary(out(cmd), &res)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&includes, "include", ingest.DefaultIncludes, "glob patterns for files inside directories")
	cmd.Flags().BoolVar(&force, "force", false, "index files even when a document with the same name exists")
	return cmd
}
