// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/evidence-engine/internal/pipeline"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var cutCmd = &cobra.Command{
	Use:   "cut",
	Short: "Cut an article into an evidence card",
	Long: `Cut turns one article into an evidence card: the article text with the
key sentences highlighted, a one-line tag stating what the card proves,
and an assembled citation.

Provide the article either by --url (the text is fetched) or by piping a
JSON cut request on stdin with --stdin. Cutting requires the oracle
credential (oracle-api-key in .secrets/).`,
	RunE: runCut,
}

func runCut(cmd *cobra.Command, args []string) error {
	req, err := cutRequestFromFlags(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	defer logger.Sync()

	engine := pipeline.New(pipelineConfig(), logger)
	result, err := engine.Cut(context.Background(), req)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Println(result.Tag)
	fmt.Println(result.Citation)
	fmt.Println()
	fmt.Println(result.CutContent)
	return nil
}

func cutRequestFromFlags(cmd *cobra.Command) (types.CutRequest, error) {
	if useStdin, _ := cmd.Flags().GetBool("stdin"); useStdin {
		var req types.CutRequest
		if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
			return req, fmt.Errorf("reading cut request from stdin: %w", err)
		}
		return req, nil
	}

	var req types.CutRequest
	req.URL, _ = cmd.Flags().GetString("url")
	req.Argument, _ = cmd.Flags().GetString("argument")
	req.Title, _ = cmd.Flags().GetString("title")
	req.Author, _ = cmd.Flags().GetString("author")
	req.Source, _ = cmd.Flags().GetString("source")
	req.PublishYear, _ = cmd.Flags().GetInt("year")

	if req.URL == "" {
		return req, fmt.Errorf("either --url or --stdin is required")
	}
	if req.Argument == "" {
		return req, fmt.Errorf("--argument is required")
	}
	return req, nil
}

func init() {
	cutCmd.Flags().String("url", "", "article URL to fetch and cut")
	cutCmd.Flags().String("argument", "", "the debate argument the card supports")
	cutCmd.Flags().String("title", "", "article title for the citation")
	cutCmd.Flags().String("author", "", "article author for the citation")
	cutCmd.Flags().String("source", "", "publication name for the citation")
	cutCmd.Flags().Int("year", 0, "publication year for the citation")
	cutCmd.Flags().Bool("stdin", false, "read a JSON cut request from stdin")
	cutCmd.Flags().Bool("json", false, "output the card as JSON")

	rootCmd.AddCommand(cutCmd)
}
