package cli

import (
	"strings"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/qa"
	"github.com/spf13/cobra"
)

func (a *app) queryCommand() *cobra.Command {
	var topK int
	var output, serverURL string
	cmd := &cobra.Command{
		Use:   "query <question...>",
		Short: "Ask a question about the indexed documents",
		Long: `Ask a question. All arguments are joined into one question, with or without quotes.

Examples:
  docqa query What color is the sky?
  docqa query "What color is the sky?" --top-k 5 --output json
  docqa query --server http://localhost:8000 What color is the sky?`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}
			req := &models.QueryRequest{Query: buildQuery(args), TopK: topK}
			var resp *models.QueryResponse
			if serverURL != "" {
				resp, err = NewClient(serverURL).Query(cmd.Context(), req)
			} else {
				var components *Components
				components, err = initializeComponents(a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer components.Close()
				resp, err = components.Service.Query(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			return WriteAnswer(out(cmd), resp, format)
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", string(OutputText), "output format: text or json")
	cmd.Flags().StringVar(&serverURL, "server", "", "query a running server instead of the local index")
	return cmd
}

// buildQuery joins positional arguments into one question.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func (a *app) filesCommand() *cobra.Command {
	var output, serverURL string
	cmd := &cobra.Command{
		Use:   "files",
		Short: "List indexed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseOutputFormat(output)
			if err != nil {
				return err
			}
			var files []string
			if serverURL != "" {
				files, err = NewClient(serverURL).Files(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				components, err := initializeComponents(a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer components.Close()
				files = components.Service.Files()
			}
			return WriteFiles(out(cmd), files, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(OutputText), "output format: text or json")
	cmd.Flags().StringVar(&serverURL, "server", "", "list from a running server instead of the local index")
	return cmd
}

func (a *app) clearCommand() *cobra.Command {
	var serverURL string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the index, its metadata and all uploaded files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msg := ""
			if serverURL != "" {
				var err error
				msg, err = NewClient(serverURL).Clear(cmd.Context())
				if err != nil {
					return err
				}
			} else {
				components, err := initializeComponents(a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer components.Close()
				if err := components.Service.Clear(cmd.Context()); err != nil {
					return err
				}
				msg = qa.ClearedMessage
			}
			_, err := out(cmd).Write([]byte(msg + "\n"))
			return err
		},
	}
	cmd.Flags().StringVar(&serverURL, "server", "", "clear a running server instead of the local index")
	return cmd
}
