package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raysh454/rawdata/internal/model"
)

func newSummarizeCmd(opts *rootOptions) *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "summarize <history-id>",
		Short: "Ask the configured model about a stored scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			defer shutdown(a, opts.logger)

			result, err := a.Components.History.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			answer, err := a.Components.Summarizer.Summarize(cmd.Context(), result, nil, question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(answer))
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "Question to ask (default depends on the scan)")
	return cmd
}

func newAssessCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assess <history-id>",
		Short: "Judge the legitimacy of a deep-scanned GitHub repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.application()
			if err != nil {
				return err
			}
			defer shutdown(a, opts.logger)

			result, err := a.Components.History.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			var repo *model.GitHubData
			if result.DeepData != nil {
				repo, _ = result.DeepData.Data.(*model.GitHubData)
			}
			if repo == nil {
				return errors.New("scan has no GitHub repository data; rescan with --mode deep")
			}

			verdict, err := a.Components.Summarizer.AssessRepository(cmd.Context(), repo)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(verdict)
		},
	}
}
