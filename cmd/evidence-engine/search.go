// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/pipeline"
)

var searchCmd = &cobra.Command{
	Use:   "search [argument]",
	Short: "Find and rank evidence sources for an argument",
	Long: `Search runs the evidence pipeline for a debate argument: it queries the
configured news and web providers, fetches article text, deduplicates by
URL, ranks by relevance, and recommends the strongest source.

At least one provider credential (news-api-key or serper-api-key in
.secrets/) or the Google News RSS provider must be enabled.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	argument, _ := cmd.Flags().GetString("query")
	if argument == "" && len(args) > 0 {
		argument = strings.Join(args, " ")
	}

	cfg := pipelineConfig()
	if maxResults, _ := cmd.Flags().GetInt("max-results"); maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}
	if noRecommend, _ := cmd.Flags().GetBool("no-recommend"); noRecommend {
		cfg.Oracle.APIKey = ""
	}

	logger := newLogger(cmd)
	defer logger.Sync()

	engine := pipeline.New(cfg, logger)
	resp, err := engine.Search(context.Background(), argument)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return pipeline.FormatJSON(resp, os.Stdout)
	}
	pipeline.FormatTable(resp, os.Stdout)
	return nil
}

func init() {
	searchCmd.Flags().String("query", "", "the debate argument to find evidence for")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (0 = default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("no-recommend", false, "skip model-based ranking and recommendation")

	rootCmd.AddCommand(searchCmd)
}
